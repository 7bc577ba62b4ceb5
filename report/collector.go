package report

import (
	"io"
	"log"

	"github.com/jsphweid/tritrack/model"
)

// Collector records allocator events and, when verbose, logs the interesting
// ones as they happen.
type Collector struct {
	Verbose bool
	Events  []model.Event

	logger *log.Logger
}

func NewCollector(w io.Writer, verbose bool) *Collector {
	return &Collector{
		Verbose: verbose,
		logger:  log.New(w, "", 0),
	}
}

// Observe is meant to be passed to allocator.WithObserver.
func (c *Collector) Observe(e model.Event) {
	c.Events = append(c.Events, e)
	if !c.Verbose {
		return
	}
	n := e.Note
	if e.Transfer {
		c.logger.Printf("transfer: pitch %d at %.3fs from track %d moved %v -> %v", n.Pitch, n.Start, n.Origin, e.Preferred, e.Role)
	}
	switch e.Kind {
	case model.TruncatedIncoming:
		c.logger.Printf("truncate incoming: pitch %d at %.3fs on %v, %.3fs -> %.3fs", n.Pitch, n.Start, e.Role, e.BeforeDuration, e.AfterDuration)
	case model.TruncatedExisting:
		c.logger.Printf("truncate existing: pitch %d at %.3fs on %v, %.3fs -> %.3fs to fit pitch %d at %.3fs", e.Truncated.Pitch, e.Truncated.Start, e.Role, e.BeforeDuration, e.AfterDuration, n.Pitch, n.Start)
	case model.Dropped:
		c.logger.Printf("drop: pitch %d at %.3fs (%.3fs) from track %d, no free time on any track", n.Pitch, n.Start, n.Duration, n.Origin)
	}
}

func (c *Collector) Dropped() model.Notes {
	var res model.Notes
	for _, e := range c.Events {
		if e.Kind == model.Dropped {
			res = append(res, e.Note)
		}
	}
	return res
}
