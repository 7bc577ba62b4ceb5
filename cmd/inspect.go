package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/tritrack/config"
	"github.com/jsphweid/tritrack/midi"
	"github.com/jsphweid/tritrack/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Lists the source tracks of a MIDI file and the notes each one holds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return inspect(args[0], cfg, cmd.OutOrStdout())
	},
}

func inspect(path string, cfg *config.Config, w io.Writer) error {
	if err := ValidateInput(path); err != nil {
		return err
	}
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	song, err := midi.Load(parsed, cfg.Output.DefaultTempo, cfg.Output.DefaultTicksPerBeat)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "ticks per beat: %v\n", song.Metadata.TicksPerBeat)
	counts := map[string]int{}
	for _, evt := range song.Metadata.Events {
		counts[evt.Kind.String()]++
	}
	for _, kind := range util.GetKeysSorted(counts) {
		fmt.Fprintf(w, "%v events: %v\n", kind, counts[kind])
	}
	for i, track := range song.Tracks {
		fmt.Fprintf(w, "track %v %q: %v notes", i, track.Name, len(track.Notes))
		if len(track.Notes) > 0 {
			fmt.Fprintf(w, " from %.3fs", track.Notes[0].Start)
		}
		fmt.Fprintln(w)
	}
	return nil
}
