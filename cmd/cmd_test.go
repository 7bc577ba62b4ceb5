package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/tritrack/config"
	"github.com/jsphweid/tritrack/midi"
	"github.com/jsphweid/tritrack/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"gopkg.in/yaml.v3"
)

// four source tracks all holding a note over the same beat, so one of them
// has nowhere to go
func fixture(t *testing.T) []byte {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var meta smf.Track
	meta.Add(0, smf.MetaTempo(120))
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Close(0)
	require.NoError(t, s.Add(meta))

	for i, key := range []uint8{72, 64, 48, 36} {
		var tr smf.Track
		tr.Add(0, gomidi.NoteOn(uint8(i), key, 100))
		tr.Add(480, gomidi.NoteOff(uint8(i), key))
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}

	var buf bytes.Buffer
	require.NoError(t, midi.Encode(s, &buf))
	return buf.Bytes()
}

func writeFixture(t *testing.T, name string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, fixture(t), 0644))
	return path
}

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, "song.MID")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mid"), 0755))

	assert := assert.New(t)
	assert.NoError(ValidateInput(good))
	assert.ErrorIs(ValidateInput(filepath.Join(dir, "song.wav")), ErrNotMidi)
	assert.Error(ValidateInput(filepath.Join(dir, "missing.mid")))
	assert.Error(ValidateInput(filepath.Join(dir, "folder.mid")))
}

func TestConvert(t *testing.T) {
	input := writeFixture(t, "song.mid")
	dir := t.TempDir()
	opts := ConvertOptions{
		Input:      input,
		Output:     filepath.Join(dir, "out.mid"),
		ReportPath: filepath.Join(dir, "run.yaml"),
		Verbose:    true,
	}

	var log bytes.Buffer
	res, err := Convert(opts, config.Default(), &log)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(4, res.Stats.Input)
	assert.Equal(3, res.Stats.Kept())
	assert.Equal(1, res.Stats.Dropped)
	require.Len(t, res.Dropped, 1)
	assert.Equal(uint8(36), res.Dropped[0].Pitch)
	assert.Contains(log.String(), "drop: pitch 36")
	assert.Contains(log.String(), "Main Theme")

	written, err := midi.ReadMidiFile(opts.Output)
	require.NoError(t, err)
	song, err := midi.Load(written, 120, 480)
	require.NoError(t, err)
	require.Len(t, song.Tracks, 1+model.NumRoles)
	assert.Equal([]uint8{72}, []uint8{song.Tracks[1].Notes[0].Pitch})
	assert.Equal("Base", song.Tracks[3].Name)
	assert.Len(song.Metadata.Events, 2)

	dat, err := os.ReadFile(opts.ReportPath)
	require.NoError(t, err)
	var run map[string]any
	require.NoError(t, yaml.Unmarshal(dat, &run))
	assert.Equal(3, run["kept"])
}

func TestConvertRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.txt")
	require.NoError(t, os.WriteFile(path, fixture(t), 0644))

	_, err := Convert(ConvertOptions{Input: path, Output: filepath.Join(dir, "out.mid")}, config.Default(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotMidi)
	_, statErr := os.Stat(filepath.Join(dir, "out.mid"))
	assert.True(t, os.IsNotExist(statErr))

	garbage := filepath.Join(dir, "garbage.mid")
	require.NoError(t, os.WriteFile(garbage, []byte("nope"), 0644))
	_, err = Convert(ConvertOptions{Input: garbage, Output: filepath.Join(dir, "out.mid")}, config.Default(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, inspect(writeFixture(t, "song.mid"), config.Default(), &out))

	assert := assert.New(t)
	assert.Contains(out.String(), "ticks per beat: 480")
	assert.Contains(out.String(), "track 4 \"\": 1 notes")
	assert.Contains(out.String(), "tempo events: 1")
	assert.Contains(out.String(), "time_signature events: 1")
}

func TestHandleConvert(t *testing.T) {
	handler := NewHandler(config.Default())

	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader(fixture(t)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("audio/midi", resp.Header.Get("Content-Type"))
	assert.Equal("4", resp.Header.Get("X-Tritrack-Input"))
	assert.Equal("3", resp.Header.Get("X-Tritrack-Kept"))
	assert.Equal("1", resp.Header.Get("X-Tritrack-Dropped"))

	parsed, err := midi.Parse(resp.Body)
	require.NoError(t, err)
	assert.Len(parsed.Tracks, 4)
}

func TestHandleConvertErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxUploadBytes = 8
	handler := NewHandler(cfg)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader(fixture(t))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "detail")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader([]byte("abc"))))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
