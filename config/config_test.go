package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/tritrack/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	assert := assert.New(t)
	assert.NoError(cfg.Validate())
	assert.Equal(constants.Epsilon, cfg.Allocation.Epsilon)
	assert.Equal(constants.MinTruncatedDuration, cfg.Allocation.MinTruncatedDuration)
	assert.False(cfg.Allocation.FavorBaseForLowest)
	assert.Equal(uint16(480), cfg.Output.DefaultTicksPerBeat)
}

func TestParseKeepsDefaultsForMissingFields(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("allocation:\n  favor_base_for_lowest: true\n"), cfg)

	assert := assert.New(t)
	assert.NoError(err)
	assert.True(cfg.Allocation.FavorBaseForLowest)
	assert.Equal(constants.Epsilon, cfg.Allocation.Epsilon)
	assert.Equal(constants.DefaultTempo, cfg.Output.DefaultTempo)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative epsilon": "allocation:\n  epsilon: -1\n",
		"zero floor":       "allocation:\n  min_truncated_duration: 0\n",
		"zero tempo":       "output:\n  default_tempo: 0\n",
		"empty address":    "server:\n  address: \"\"\n",
		"not yaml":         "allocation: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Parse([]byte(body), Default()))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tritrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":9000\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutPathUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  default_ticks_per_beat: 960\n"), 0644))
	t.Setenv("TRITRACK_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint16(960), cfg.Output.DefaultTicksPerBeat)
}
