package allocator

import (
	"sort"

	"github.com/jsphweid/tritrack/config"
	"github.com/jsphweid/tritrack/model"
)

type Option func(*Allocator)

// WithObserver registers fn to be called once per allocation decision.
func WithObserver(fn func(model.Event)) Option {
	return func(a *Allocator) {
		a.observer = fn
	}
}

// Allocator redistributes notes from any number of source tracks onto the
// three output roles. One Allocator owns the state of one pass; calling
// Allocate again starts over.
type Allocator struct {
	cfg      config.Allocation
	observer func(model.Event)

	tracks   model.Output
	affinity map[int]model.Role
	stats    model.Stats
}

func New(cfg config.Allocation, opts ...Option) *Allocator {
	a := &Allocator{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate runs one pass with cfg and no observer.
func Allocate(notes model.Notes, cfg config.Allocation) (model.Output, model.Stats) {
	return New(cfg).Allocate(notes)
}

type pitchRange struct {
	min, max uint8
}

func (a *Allocator) reset() {
	a.tracks = model.Output{}
	a.affinity = make(map[int]model.Role)
	a.stats = model.Stats{}
}

func (a *Allocator) Allocate(notes model.Notes) (model.Output, model.Stats) {
	a.reset()
	a.stats.Input = len(notes)

	sorted := make(model.Notes, len(notes))
	copy(sorted, notes)
	SortNotes(sorted)
	instants := pitchRanges(sorted)

	for _, n := range sorted {
		a.allocate(n, instants)
	}

	for _, r := range model.Roles {
		sort.SliceStable(a.tracks[r], func(i, j int) bool {
			return a.tracks[r][i].Start < a.tracks[r][j].Start
		})
		a.stats.Placed[r] = len(a.tracks[r])
	}
	return a.tracks, a.stats
}

func (a *Allocator) allocate(n model.Note, instants map[float64]pitchRange) {
	preferred, pinned := a.affinity[n.Origin]
	if pinned {
		if a.overlapping(preferred, n, -1) < 0 {
			a.place(preferred, n, preferred, pinned)
			return
		}
	} else {
		preferred = a.suggest(n, instants)
	}

	for _, r := range ranking(preferred) {
		// the pinned track is known to be busy, only a truncation can help there
		if pinned && r == preferred {
			if a.resolve(r, n, preferred, pinned) {
				return
			}
			continue
		}
		if a.overlapping(r, n, -1) < 0 {
			a.place(r, n, preferred, pinned)
			return
		}
		if a.resolve(r, n, preferred, pinned) {
			return
		}
	}

	a.stats.Dropped++
	a.emit(model.Event{Kind: model.Dropped, Note: n, Role: model.NoRole, Preferred: preferred})
}

// suggest picks the first role to try for a note whose origin is not pinned yet.
func (a *Allocator) suggest(n model.Note, instants map[float64]pitchRange) model.Role {
	pr := instants[n.Start]
	if n.Pitch == pr.max {
		return model.MainTheme
	}
	if a.cfg.FavorBaseForLowest && n.Pitch == pr.min {
		return model.Base
	}
	return model.Chord
}

// resolve tries to make room for n on r by shortening either n or the first
// note on r that overlaps it.
func (a *Allocator) resolve(r model.Role, n model.Note, preferred model.Role, pinned bool) bool {
	idx := a.overlapping(r, n, -1)
	if idx < 0 {
		return false
	}
	existing := a.tracks[r][idx]
	floor := a.cfg.MinTruncatedDuration

	if n.Start < existing.Start && n.End() > existing.Start {
		cut := n.Truncated(existing.Start)
		if cut.Duration > floor && a.overlapping(r, cut, -1) < 0 {
			a.tracks[r] = append(a.tracks[r], cut)
			transfer := a.commit(r, n, preferred, pinned)
			a.stats.Truncated[r]++
			a.emit(model.Event{
				Kind:           model.TruncatedIncoming,
				Note:           n,
				Role:           r,
				Transfer:       transfer,
				Preferred:      preferred,
				Truncated:      cut,
				BeforeDuration: n.Duration,
				AfterDuration:  cut.Duration,
			})
			return true
		}
		return false
	}

	if existing.Start < n.Start && existing.End() > n.Start && a.outlasts(existing, n) {
		cut := existing.Truncated(n.Start)
		if cut.Duration > floor && a.overlapping(r, n, idx) < 0 {
			a.tracks[r][idx] = cut
			a.tracks[r] = append(a.tracks[r], n)
			transfer := a.commit(r, n, preferred, pinned)
			a.stats.Truncated[r]++
			a.emit(model.Event{
				Kind:           model.TruncatedExisting,
				Note:           n,
				Role:           r,
				Transfer:       transfer,
				Preferred:      preferred,
				Truncated:      cut,
				BeforeDuration: existing.Duration,
				AfterDuration:  cut.Duration,
			})
			return true
		}
	}
	return false
}

func (a *Allocator) outlasts(existing, n model.Note) bool {
	if a.cfg.PartialOverlapTruncation {
		return true
	}
	return existing.End() > n.End()
}

func (a *Allocator) place(r model.Role, n model.Note, preferred model.Role, pinned bool) {
	a.tracks[r] = append(a.tracks[r], n)
	transfer := a.commit(r, n, preferred, pinned)
	a.emit(model.Event{Kind: model.Placed, Note: n, Role: r, Transfer: transfer, Preferred: preferred})
}

// commit pins n's origin to r if it is not pinned yet and reports whether
// landing on r moved the note off its pinned role.
func (a *Allocator) commit(r model.Role, n model.Note, preferred model.Role, pinned bool) bool {
	a.pin(n.Origin, r)
	transfer := pinned && r != preferred
	if transfer {
		a.stats.Transfers++
	}
	return transfer
}

func (a *Allocator) pin(origin int, r model.Role) {
	if _, ok := a.affinity[origin]; !ok {
		a.affinity[origin] = r
	}
}

// overlapping returns the index of the first note on r overlapping n, ignoring
// the note at skip, or -1.
func (a *Allocator) overlapping(r model.Role, n model.Note, skip int) int {
	for i, other := range a.tracks[r] {
		if i == skip {
			continue
		}
		if Overlaps(other, n, a.cfg.Epsilon) {
			return i
		}
	}
	return -1
}

func (a *Allocator) emit(e model.Event) {
	if a.observer != nil {
		a.observer(e)
	}
}

// Affinity returns the role each origin track was pinned to in the last pass.
func (a *Allocator) Affinity() map[int]model.Role {
	res := make(map[int]model.Role, len(a.affinity))
	for k, v := range a.affinity {
		res[k] = v
	}
	return res
}

// Overlaps reports whether two notes intersect by more than eps.
func Overlaps(a, b model.Note, eps float64) bool {
	return a.Start < b.End()-eps && b.Start < a.End()-eps
}

// SortNotes orders notes by start time, higher pitches first on ties.
func SortNotes(notes model.Notes) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch > notes[j].Pitch
	})
}

// ranking puts first ahead of the remaining roles in fixed order.
func ranking(first model.Role) []model.Role {
	res := make([]model.Role, 0, model.NumRoles)
	res = append(res, first)
	for _, r := range model.Roles {
		if r != first {
			res = append(res, r)
		}
	}
	return res
}

func pitchRanges(notes model.Notes) map[float64]pitchRange {
	res := make(map[float64]pitchRange)
	for _, n := range notes {
		pr, ok := res[n.Start]
		if !ok {
			res[n.Start] = pitchRange{min: n.Pitch, max: n.Pitch}
			continue
		}
		if n.Pitch < pr.min {
			pr.min = n.Pitch
		}
		if n.Pitch > pr.max {
			pr.max = n.Pitch
		}
		res[n.Start] = pr
	}
	return res
}
