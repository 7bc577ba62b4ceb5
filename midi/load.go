package midi

import (
	"errors"
	"sort"

	"github.com/jsphweid/tritrack/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrNoFile = errors.New("no midi file to load")

type pendingNote struct {
	absTicks uint64
	velocity uint8
}

type noteKey struct {
	channel uint8
	key     uint8
}

// TicksPerBeat returns the file's metric resolution or fallback for SMPTE
// and missing time formats.
func TicksPerBeat(s *smf.SMF, fallback uint16) uint16 {
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok && tf > 0 {
		return uint16(tf)
	}
	return fallback
}

// ReadMetadata collects the tempo, time signature and key signature events of
// every track, ordered by absolute tick.
func ReadMetadata(s *smf.SMF, fallbackTicksPerBeat uint16) model.Metadata {
	meta := model.Metadata{TicksPerBeat: TicksPerBeat(s, fallbackTicksPerBeat)}
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var kind model.MetaKind
			switch {
			case evt.Message.Is(smf.MetaTempoMsg):
				kind = model.Tempo
			case evt.Message.Is(smf.MetaTimeSigMsg):
				kind = model.TimeSignature
			case evt.Message.Is(smf.MetaKeySigMsg):
				kind = model.KeySignature
			default:
				continue
			}
			data := make([]byte, len(evt.Message))
			copy(data, evt.Message)
			meta.Events = append(meta.Events, model.MetaEvent{Kind: kind, AbsTicks: absTicks, Data: data})
		}
	}
	sort.SliceStable(meta.Events, func(i, j int) bool {
		return meta.Events[i].AbsTicks < meta.Events[j].AbsTicks
	})
	return meta
}

// Tempos extracts the tempo changes from meta.
func Tempos(meta model.Metadata) []Tempo {
	var res []Tempo
	for _, evt := range meta.Events {
		if evt.Kind != model.Tempo {
			continue
		}
		var bpm float64
		if smf.Message(evt.Data).GetMetaTempo(&bpm) {
			res = append(res, Tempo{AbsTicks: evt.AbsTicks, BPM: bpm})
		}
	}
	return res
}

// Load turns every source track into notes timed in seconds. Each note is
// tagged with the index of the track it came from.
func Load(s *smf.SMF, defaultTempo float64, fallbackTicksPerBeat uint16) (model.Song, error) {
	var song model.Song
	if s == nil {
		return song, ErrNoFile
	}
	song.Metadata = ReadMetadata(s, fallbackTicksPerBeat)
	tm := NewTempoMap(song.Metadata.TicksPerBeat, Tempos(song.Metadata), defaultTempo)

	for i, track := range s.Tracks {
		song.Tracks = append(song.Tracks, loadTrack(i, track, tm))
	}
	return song, nil
}

func loadTrack(origin int, track smf.Track, tm *TempoMap) model.SourceTrack {
	var res model.SourceTrack
	pressed := make(map[noteKey][]pendingNote)
	var absTicks uint64

	release := func(k noteKey, p pendingNote, end uint64) {
		if end <= p.absTicks {
			return
		}
		start := tm.Seconds(p.absTicks)
		res.Notes = append(res.Notes, model.Note{
			Pitch:    k.key,
			Start:    start,
			Duration: tm.Seconds(end) - start,
			Velocity: p.velocity,
			Origin:   origin,
		})
	}

	for _, evt := range track {
		absTicks += uint64(evt.Delta)
		var channel, key, velocity uint8
		var name string
		switch {
		case evt.Message.GetNoteStart(&channel, &key, &velocity):
			k := noteKey{channel, key}
			pressed[k] = append(pressed[k], pendingNote{absTicks: absTicks, velocity: velocity})
		case evt.Message.GetNoteEnd(&channel, &key):
			k := noteKey{channel, key}
			if len(pressed[k]) == 0 {
				continue
			}
			release(k, pressed[k][0], absTicks)
			pressed[k] = pressed[k][1:]
		case evt.Message.GetMetaTrackName(&name):
			if res.Name == "" {
				res.Name = name
			}
		}
	}

	// close anything still sounding at the end of the track
	for k, pending := range pressed {
		for _, p := range pending {
			release(k, p, absTicks)
		}
	}

	sort.SliceStable(res.Notes, func(i, j int) bool {
		if res.Notes[i].Start != res.Notes[j].Start {
			return res.Notes[i].Start < res.Notes[j].Start
		}
		return res.Notes[i].Pitch > res.Notes[j].Pitch
	})
	return res
}
