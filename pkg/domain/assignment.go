package domain

// Assignment is the serializable form of a partitioning result: the ordered
// global indices assigned to every group. It is what assignment stores persist.
type Assignment struct {
	N       int              `json:"n"`
	Seed    int64            `json:"seed"`
	MaxSize int              `json:"max_size"`
	Groups  map[string][]int `json:"groups"`
}

// Indices returns the indices of a group, or nil when the group is absent.
func (a *Assignment) Indices(g GroupKey) []int {
	if a == nil {
		return nil
	}
	return a.Groups[g.String()]
}

// Matches reports whether the assignment was produced for the same reference
// size, seed and cap.
func (a *Assignment) Matches(n int, seed int64, maxSize int) bool {
	return a != nil && a.N == n && a.Seed == seed && a.MaxSize == maxSize
}
