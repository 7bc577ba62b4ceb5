package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("Error reading midi file... %w", err)
	}
	return Parse(bytes.NewReader(dat))
}

func Parse(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			e = fmt.Errorf("Error parsing midi file... %v", rec)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("Error parsing midi file... %w", err)
	}
	if res == nil {
		return nil, errors.New("Error parsing midi file... empty result")
	}
	return res, nil
}

func WriteMidiFile(s *smf.SMF, filepath string) error {
	if err := s.WriteFile(filepath); err != nil {
		return fmt.Errorf("Error writing midi file... %w", err)
	}
	return nil
}

func Encode(s *smf.SMF, w io.Writer) error {
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("Error encoding midi file... %w", err)
	}
	return nil
}
