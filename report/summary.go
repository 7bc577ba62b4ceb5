package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jsphweid/tritrack/model"
)

type TrackSummary struct {
	Role      string  `yaml:"role"`
	Notes     int     `yaml:"notes"`
	Truncated int     `yaml:"truncated"`
	FirstNote float64 `yaml:"first_start"`
	LastEnd   float64 `yaml:"last_end"`
}

func Summarize(out model.Output, stats model.Stats) []TrackSummary {
	var res []TrackSummary
	for _, r := range model.Roles {
		s := TrackSummary{Role: r.String(), Notes: len(out[r]), Truncated: stats.Truncated[r]}
		if len(out[r]) > 0 {
			s.FirstNote = out[r][0].Start
		}
		for _, n := range out[r] {
			if n.End() > s.LastEnd {
				s.LastEnd = n.End()
			}
		}
		res = append(res, s)
	}
	return res
}

// WriteSummary prints a table of the three output tracks followed by totals.
func WriteSummary(w io.Writer, out model.Output, stats model.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tNOTES\tTRUNCATED\tFIRST\tLAST END")
	for _, s := range Summarize(out, stats) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.3f\n", s.Role, s.Notes, s.Truncated, s.FirstNote, s.LastEnd)
	}
	fmt.Fprintf(tw, "\ninput notes\t%d\n", stats.Input)
	fmt.Fprintf(tw, "kept\t%d\n", stats.Kept())
	fmt.Fprintf(tw, "transfers\t%d\n", stats.Transfers)
	fmt.Fprintf(tw, "dropped\t%d\n", stats.Dropped)
	return tw.Flush()
}
