package alignment

import (
	"math"
	"math/rand/v2"
)

// permutationStream selects the PCG stream; changing it changes every
// assignment ever produced.
const permutationStream = 0x5eed5eed5eed5eed

// Permutation returns a permutation of [0, n) that depends only on n and seed.
func Permutation(n int, seed int64) []int {
	if n <= 0 {
		return []int{}
	}
	src := rand.NewPCG(uint64(seed), permutationStream)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := bounded(src, uint64(i)+1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// bounded draws uniformly from [0, n) by rejecting the top
// 2^64 mod n values of the generator.
func bounded(src *rand.PCG, n uint64) int {
	rem := (math.MaxUint64%n + 1) % n
	for {
		x := src.Uint64()
		if x <= math.MaxUint64-rem {
			return int(x % n)
		}
	}
}

// groupSize is round-half-even(p*n), capped by maxSize when positive.
func groupSize(p float64, n, maxSize int) int {
	size := int(math.RoundToEven(p * float64(n)))
	if size > n {
		size = n
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return size
}
