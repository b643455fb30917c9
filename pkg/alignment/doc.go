/*
Package alignment partitions a composite sampler into groups of domains
that are observed together.

	res, err := alignment.Align(ctx, s, alignment.Proportions{
		domain.NewGroupKey("v", "t"): 0.1,
		domain.NewGroupKey("v"):      1,
		domain.NewGroupKey("t"):      1,
	}, alignment.WithSeed(0), alignment.WithMaxSize(50000))

One permutation of [0, N) is drawn from the seed and every group takes a
prefix of it, so a group with a smaller proportion is a subset of every
group with a larger one. Proportions are independent and may sum above 1.

With WithStore the assignment is keyed by Fingerprint and shared between
workers; WithLocker makes sure only one of them computes it.
*/
package alignment
