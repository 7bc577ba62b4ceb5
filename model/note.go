package model

// Note is a single timed sound. Times are in seconds.
type Note struct {
	Pitch    uint8
	Start    float64
	Duration float64
	Velocity uint8

	// index of the source track that produced this note
	Origin int
}

func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Truncated returns a copy of n ending at end.
func (n Note) Truncated(end float64) Note {
	n.Duration = end - n.Start
	return n
}

type Notes = []Note
