package report

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/tritrack/model"
	"gopkg.in/yaml.v3"
)

type DroppedNote struct {
	Pitch    uint8   `yaml:"pitch"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Origin   int     `yaml:"origin_track"`
}

// Run is the persisted record of one conversion.
type Run struct {
	ID        string         `yaml:"id"`
	CreatedAt time.Time      `yaml:"created_at"`
	Input     string         `yaml:"input"`
	Output    string         `yaml:"output"`
	Notes     int            `yaml:"input_notes"`
	Kept      int            `yaml:"kept"`
	Transfers int            `yaml:"transfers"`
	Tracks    []TrackSummary `yaml:"tracks"`
	Dropped   []DroppedNote  `yaml:"dropped"`
}

func NewRun(input, output string, out model.Output, stats model.Stats, dropped model.Notes) Run {
	run := Run{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
		Output:    output,
		Notes:     stats.Input,
		Kept:      stats.Kept(),
		Transfers: stats.Transfers,
		Tracks:    Summarize(out, stats),
		Dropped:   []DroppedNote{},
	}
	for _, n := range dropped {
		run.Dropped = append(run.Dropped, DroppedNote{Pitch: n.Pitch, Start: n.Start, Duration: n.Duration, Origin: n.Origin})
	}
	return run
}

func (r Run) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r Run) WriteFile(path string) error {
	dat, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.WriteFile(path, dat, 0644); err != nil {
		return fmt.Errorf("writing run report %s: %w", path, err)
	}
	return nil
}
