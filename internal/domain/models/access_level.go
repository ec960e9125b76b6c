package models

// AccessLevel is the ordered capability attached to grants and links.
// Write satisfies both read and write; owner implies both.
type AccessLevel string

const (
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
)

// Valid reports whether the level is one of the two persisted values.
func (l AccessLevel) Valid() bool {
	return l == AccessRead || l == AccessWrite
}

// Satisfies reports whether this level grants the required one.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	if l == AccessWrite {
		return true
	}
	return l == AccessRead && required == AccessRead
}

// MatchedLevel is the level an access decision resolved to. It extends
// AccessLevel with the owner and none outcomes, which are never persisted.
type MatchedLevel string

const (
	MatchedOwner MatchedLevel = "owner"
	MatchedWrite MatchedLevel = "write"
	MatchedRead  MatchedLevel = "read"
	MatchedNone  MatchedLevel = "none"
)
