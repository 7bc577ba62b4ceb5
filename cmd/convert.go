package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/tritrack/allocator"
	"github.com/jsphweid/tritrack/config"
	"github.com/jsphweid/tritrack/midi"
	"github.com/jsphweid/tritrack/model"
	"github.com/jsphweid/tritrack/report"
	"github.com/jsphweid/tritrack/util"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

type ConvertOptions struct {
	Input      string
	Output     string
	ReportPath string
	Verbose    bool
}

var convertOpts ConvertOptions

func init() {
	convertCmd.Flags().StringVar(&convertOpts.Input, "input", "", "input .mid/.midi file")
	convertCmd.Flags().StringVar(&convertOpts.Output, "output", "", "output .mid file")
	convertCmd.Flags().StringVar(&convertOpts.ReportPath, "report", "", "write a YAML run report to this path")
	convertCmd.Flags().BoolVar(&convertOpts.Verbose, "verbose", false, "log transfers, truncations and drops and print a summary")
	cobra.CheckErr(convertCmd.MarkFlagRequired("input"))
	cobra.CheckErr(convertCmd.MarkFlagRequired("output"))
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Converts a MIDI file to three tracks",
	Long:  `Converts a MIDI file to three non-overlapping tracks: Main Theme, Chord and Base.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		_, err = Convert(convertOpts, cfg, cmd.OutOrStdout())
		return err
	},
}

var ErrNotMidi = errors.New("input must be a .mid or .midi file")

// ValidateInput checks the input path before any work is done.
func ValidateInput(path string) error {
	if !util.HasMidiExtension(path) {
		return fmt.Errorf("%w: %s", ErrNotMidi, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input is not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input is a directory: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("input is not accessible: %w", err)
	}
	return f.Close()
}

type ConvertResult struct {
	File    *smf.SMF
	Output  model.Output
	Stats   model.Stats
	Dropped model.Notes
}

// ConvertFile runs the allocation over an already parsed file.
func ConvertFile(s *smf.SMF, cfg *config.Config, collector *report.Collector) (ConvertResult, error) {
	var res ConvertResult
	song, err := midi.Load(s, cfg.Output.DefaultTempo, cfg.Output.DefaultTicksPerBeat)
	if err != nil {
		return res, err
	}

	res.Output, res.Stats = allocator.New(cfg.Allocation, allocator.WithObserver(collector.Observe)).Allocate(song.AllNotes())
	res.Dropped = collector.Dropped()

	res.File, err = midi.Build(res.Output, song.Metadata, cfg.Output.DefaultTempo)
	if err != nil {
		return res, err
	}
	return res, nil
}

func Convert(opts ConvertOptions, cfg *config.Config, w io.Writer) (ConvertResult, error) {
	var res ConvertResult
	if err := ValidateInput(opts.Input); err != nil {
		return res, err
	}

	parsed, err := midi.ReadMidiFile(opts.Input)
	if err != nil {
		return res, err
	}

	collector := report.NewCollector(w, opts.Verbose)
	res, err = ConvertFile(parsed, cfg, collector)
	if err != nil {
		return res, err
	}

	if err := midi.WriteMidiFile(res.File, opts.Output); err != nil {
		return res, err
	}

	if opts.Verbose {
		fmt.Fprintf(w, "\n%s -> %s\n", opts.Input, opts.Output)
		if err := report.WriteSummary(w, res.Output, res.Stats); err != nil {
			return res, err
		}
	}

	if opts.ReportPath != "" {
		run := report.NewRun(opts.Input, opts.Output, res.Output, res.Stats, res.Dropped)
		if err := run.WriteFile(opts.ReportPath); err != nil {
			return res, err
		}
	}

	fmt.Fprintf(w, "Wrote %v (%v of %v notes kept)\n", opts.Output, res.Stats.Kept(), res.Stats.Input)
	return res, nil
}
