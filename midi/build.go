package midi

import (
	"fmt"
	"sort"

	"github.com/jsphweid/tritrack/constants"
	"github.com/jsphweid/tritrack/model"
	"github.com/jsphweid/tritrack/util"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timedMessage struct {
	absTicks  uint64
	isNoteOff bool
	msg       []byte
}

// Build writes a format 1 file: a conductor track carrying meta verbatim,
// followed by one track per role in fixed order. Roles without notes still get
// a track.
func Build(out model.Output, meta model.Metadata, defaultTempo float64) (*smf.SMF, error) {
	if meta.TicksPerBeat == 0 {
		meta.TicksPerBeat = constants.DefaultTicksPerBeat
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(meta.TicksPerBeat)

	var conductor []timedMessage
	for _, evt := range meta.Events {
		conductor = append(conductor, timedMessage{absTicks: evt.AbsTicks, msg: evt.Data})
	}
	if err := s.Add(encodeTrack(conductor)); err != nil {
		return nil, fmt.Errorf("adding conductor track: %w", err)
	}

	tm := NewTempoMap(meta.TicksPerBeat, Tempos(meta), defaultTempo)
	for _, r := range model.Roles {
		if err := s.Add(buildRoleTrack(r, out[r], tm)); err != nil {
			return nil, fmt.Errorf("adding %v track: %w", r, err)
		}
	}
	return s, nil
}

func buildRoleTrack(r model.Role, notes model.Notes, tm *TempoMap) smf.Track {
	channel := uint8(r)
	msgs := []timedMessage{{msg: smf.MetaTrackSequenceName(r.String())}}
	next := nextOnTicks(notes, tm)
	for i, n := range notes {
		key := util.Clamp(n.Pitch, 0, 127)
		// a zero velocity note on would read back as a note off
		velocity := util.Clamp(n.Velocity, 1, 127)
		on := tm.Ticks(n.Start)
		off := util.Max(tm.Ticks(n.End()), on+1)
		if nextOn, ok := next[i]; ok && off > nextOn {
			// the note off may not reach past the key's next note on
			off = nextOn
		}
		if off <= on {
			// shorter than a tick and restruck on the same tick
			continue
		}
		msgs = append(msgs,
			timedMessage{absTicks: on, msg: gomidi.NoteOn(channel, key, velocity)},
			timedMessage{absTicks: off, isNoteOff: true, msg: gomidi.NoteOff(channel, key)},
		)
	}
	return encodeTrack(msgs)
}

// nextOnTicks maps each note index to the tick of the next note with the same
// key. notes must be ordered by start.
func nextOnTicks(notes model.Notes, tm *TempoMap) map[int]uint64 {
	res := make(map[int]uint64)
	seen := make(map[uint8]uint64)
	for i := len(notes) - 1; i >= 0; i-- {
		key := util.Clamp(notes[i].Pitch, 0, 127)
		if on, ok := seen[key]; ok {
			res[i] = on
		}
		seen[key] = tm.Ticks(notes[i].Start)
	}
	return res
}

// encodeTrack delta-encodes msgs. At equal ticks note offs come first so
// back to back notes of the same key stay separate.
func encodeTrack(msgs []timedMessage) smf.Track {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].absTicks != msgs[j].absTicks {
			return msgs[i].absTicks < msgs[j].absTicks
		}
		return msgs[i].isNoteOff && !msgs[j].isNoteOff
	})

	var track smf.Track
	var last uint64
	for _, m := range msgs {
		track.Add(uint32(m.absTicks-last), m.msg)
		last = m.absTicks
	}
	track.Close(0)
	return track
}
