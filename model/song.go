package model

// MetaKind is the kind of a carried-through global event.
type MetaKind int

const (
	Tempo MetaKind = iota
	TimeSignature
	KeySignature
)

func (k MetaKind) String() string {
	switch k {
	case Tempo:
		return "tempo"
	case TimeSignature:
		return "time_signature"
	case KeySignature:
		return "key_signature"
	}
	return "unknown"
}

// MetaEvent is a global event copied verbatim from input to output.
type MetaEvent struct {
	Kind     MetaKind
	AbsTicks uint64

	// raw smf message bytes
	Data []byte
}

type Metadata struct {
	TicksPerBeat uint16
	Events       []MetaEvent
}

// SourceTrack is one track of the input file.
type SourceTrack struct {
	Name  string
	Notes Notes
}

type Song struct {
	Tracks   []SourceTrack
	Metadata Metadata
}

// AllNotes flattens every source track into one list.
func (s Song) AllNotes() Notes {
	var res Notes
	for _, t := range s.Tracks {
		res = append(res, t.Notes...)
	}
	return res
}
