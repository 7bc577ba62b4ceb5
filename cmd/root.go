package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tritrack",
	Short: "Squeezes a multi-track MIDI file into three tracks",
	Long: `Redistributes the notes of every track of a MIDI file onto three output
tracks (Main Theme, Chord, Base) so that no two notes on a track overlap.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $TRITRACK_CONFIG)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
