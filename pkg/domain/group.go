package domain

import (
	"slices"
	"strings"
)

// groupSep joins domain identifiers in the textual form of a GroupKey.
const groupSep = "+"

// GroupKey is an unordered set of domain identifiers. Keys built from the
// same set compare equal regardless of the order or repetition of the input,
// which makes GroupKey usable as a map key.
type GroupKey struct {
	key string
}

// NewGroupKey builds the canonical key for the given identifiers.
// Empty identifiers are ignored.
func NewGroupKey(ids ...string) GroupKey {
	set := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set = append(set, id)
		}
	}
	slices.Sort(set)
	set = slices.Compact(set)
	return GroupKey{key: strings.Join(set, groupSep)}
}

// CheckID reports whether id can name a domain inside a GroupKey. The key
// separators and surrounding whitespace are rejected, as is the empty string.
func CheckID(id string) error {
	switch {
	case id == "":
		return &ConfigError{Key: "id", Reason: "empty domain identifier"}
	case strings.TrimSpace(id) != id:
		return &ConfigError{Domain: id, Key: "id", Reason: "identifier has surrounding whitespace"}
	case strings.ContainsAny(id, "+,"):
		return &ConfigError{Domain: id, Key: "id", Reason: `identifier contains a group separator ("+" or ",")`}
	}
	return nil
}

// ParseGroupKey parses the textual form of a key. Both "+" and "," are
// accepted as separators.
func ParseGroupKey(s string) GroupKey {
	return NewGroupKey(strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ','
	})...)
}

// Domains returns the sorted identifiers of the group.
func (g GroupKey) Domains() []string {
	if g.key == "" {
		return nil
	}
	return strings.Split(g.key, groupSep)
}

// Contains reports whether id is part of the group.
func (g GroupKey) Contains(id string) bool {
	return slices.Contains(g.Domains(), id)
}

// Len returns the number of domains in the group.
func (g GroupKey) Len() int { return len(g.Domains()) }

// IsZero reports whether the group is empty.
func (g GroupKey) IsZero() bool { return g.key == "" }

func (g GroupKey) String() string { return g.key }

// MarshalText implements encoding.TextMarshaler.
func (g GroupKey) MarshalText() ([]byte, error) { return []byte(g.key), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GroupKey) UnmarshalText(b []byte) error {
	*g = ParseGroupKey(string(b))
	return nil
}

// SortGroups orders keys by their textual form.
func SortGroups(keys []GroupKey) {
	slices.SortFunc(keys, func(a, b GroupKey) int { return strings.Compare(a.key, b.key) })
}
