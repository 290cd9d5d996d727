package domain

// DefaultPageLimit is the default page size when none is specified.
const DefaultPageLimit = 50

// MaxPageLimit is the maximum allowed page size.
const MaxPageLimit = 500

// PageRequest holds pagination parameters for list operations.
type PageRequest struct {
	MaxResults int
	Skip       int
}

// Limit returns the effective page size, clamped to [1, MaxPageLimit].
func (p PageRequest) Limit() int {
	if p.MaxResults <= 0 {
		return DefaultPageLimit
	}
	if p.MaxResults > MaxPageLimit {
		return MaxPageLimit
	}
	return p.MaxResults
}

// Offset returns the effective row offset, never negative.
func (p PageRequest) Offset() int {
	if p.Skip < 0 {
		return 0
	}
	return p.Skip
}
