package midi

import (
	"math"
	"sort"

	"github.com/jsphweid/tritrack/constants"
)

type Tempo struct {
	AbsTicks uint64
	BPM      float64
}

type tempoSegment struct {
	tick    uint64
	seconds float64
	bpm     float64
}

// TempoMap converts between absolute ticks and seconds for a file with
// tempo changes.
type TempoMap struct {
	ticksPerBeat float64
	segments     []tempoSegment
}

func NewTempoMap(ticksPerBeat uint16, tempos []Tempo, defaultBPM float64) *TempoMap {
	if ticksPerBeat == 0 {
		ticksPerBeat = constants.DefaultTicksPerBeat
	}
	if defaultBPM <= 0 {
		defaultBPM = constants.DefaultTempo
	}
	sorted := make([]Tempo, 0, len(tempos))
	for _, t := range tempos {
		if t.BPM > 0 {
			sorted = append(sorted, t)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AbsTicks < sorted[j].AbsTicks
	})

	m := &TempoMap{
		ticksPerBeat: float64(ticksPerBeat),
		segments:     []tempoSegment{{bpm: defaultBPM}},
	}
	for _, t := range sorted {
		last := &m.segments[len(m.segments)-1]
		if t.AbsTicks == last.tick {
			last.bpm = t.BPM
			continue
		}
		m.segments = append(m.segments, tempoSegment{
			tick:    t.AbsTicks,
			seconds: last.seconds + m.span(t.AbsTicks-last.tick, last.bpm),
			bpm:     t.BPM,
		})
	}
	return m
}

func (m *TempoMap) span(ticks uint64, bpm float64) float64 {
	return float64(ticks) / m.ticksPerBeat * 60 / bpm
}

func (m *TempoMap) Seconds(tick uint64) float64 {
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].tick > tick
	}) - 1
	seg := m.segments[i]
	return seg.seconds + m.span(tick-seg.tick, seg.bpm)
}

// Ticks returns the tick nearest to seconds. Negative times map to 0.
func (m *TempoMap) Ticks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].seconds > seconds
	}) - 1
	seg := m.segments[i]
	return seg.tick + uint64(math.Round((seconds-seg.seconds)*seg.bpm/60*m.ticksPerBeat))
}
