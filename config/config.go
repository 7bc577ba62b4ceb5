package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/jsphweid/tritrack/constants"
	"gopkg.in/yaml.v3"
)

// Config is the serialisable run configuration. Zero-valued fields left out of
// a YAML file keep their defaults.
type Config struct {
	Allocation Allocation `yaml:"allocation"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
}

type Allocation struct {
	Epsilon              float64 `yaml:"epsilon"`
	MinTruncatedDuration float64 `yaml:"min_truncated_duration"`

	// when set, the lowest pitch at an instant is first suggested to Base
	FavorBaseForLowest bool `yaml:"favor_base_for_lowest"`

	// when set, an already placed note may also be shortened when it only
	// partially overlaps the incoming note, not just when it outlasts it
	PartialOverlapTruncation bool `yaml:"partial_overlap_truncation"`
}

type Output struct {
	DefaultTicksPerBeat uint16  `yaml:"default_ticks_per_beat"`
	DefaultTempo        float64 `yaml:"default_tempo"`
}

type Server struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

func Default() *Config {
	return &Config{
		Allocation: DefaultAllocation(),
		Output: Output{
			DefaultTicksPerBeat: constants.DefaultTicksPerBeat,
			DefaultTempo:        constants.DefaultTempo,
		},
		Server: Server{
			Address:        constants.GetListenAddr(),
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: constants.DefaultMaxUploadBytes,
		},
	}
}

func DefaultAllocation() Allocation {
	return Allocation{
		Epsilon:                  constants.Epsilon,
		MinTruncatedDuration:     constants.MinTruncatedDuration,
		PartialOverlapTruncation: true,
	}
}

// Load reads path on top of the defaults. An empty path falls back to
// TRITRACK_CONFIG and then to the defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = constants.GetConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := Parse(dat, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg and validates the result.
func Parse(dat []byte, cfg *Config) error {
	if err := yaml.Unmarshal(dat, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Allocation.Epsilon <= 0 {
		errs = append(errs, errors.New("allocation.epsilon must be > 0"))
	}
	if c.Allocation.MinTruncatedDuration <= 0 {
		errs = append(errs, errors.New("allocation.min_truncated_duration must be > 0"))
	}
	if c.Output.DefaultTicksPerBeat == 0 {
		errs = append(errs, errors.New("output.default_ticks_per_beat must be > 0"))
	}
	if c.Output.DefaultTempo <= 0 {
		errs = append(errs, errors.New("output.default_tempo must be > 0"))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address must not be empty"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be > 0"))
	}
	return errors.Join(errs...)
}
