package model

import "github.com/jsphweid/tritrack/util"

type EventKind int

const (
	Placed EventKind = iota
	TruncatedIncoming
	TruncatedExisting
	Dropped
)

func (k EventKind) String() string {
	switch k {
	case Placed:
		return "placed"
	case TruncatedIncoming:
		return "truncated_incoming"
	case TruncatedExisting:
		return "truncated_existing"
	case Dropped:
		return "dropped"
	}
	return "unknown"
}

// Event describes one allocator decision.
type Event struct {
	Kind EventKind
	Note Note

	// NoRole for Dropped
	Role Role

	// set when the note landed somewhere other than its origin's preferred role
	Transfer  bool
	Preferred Role

	// for truncations: the shortened note's durations
	Truncated      Note
	BeforeDuration float64
	AfterDuration  float64
}

type Stats struct {
	Input     int
	Placed    [NumRoles]int
	Truncated [NumRoles]int
	Transfers int
	Dropped   int
}

func (s Stats) Kept() int {
	return int(util.Sum(s.Placed[:]))
}
