package collector

import (
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 70

// WriteBanner prints the run header before processing starts.
func WriteBanner(w io.Writer, backends []string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "ECOCENSUS MEDIA MENTIONS COLLECTOR")
	fmt.Fprintf(w, "Backends: %s\n", strings.Join(backends, ", "))
	fmt.Fprintln(w, rule)
}

// WriteSummary prints the end-of-run report.
func WriteSummary(w io.Writer, res *Result) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	switch res.Outcome {
	case OutcomeHalted:
		fmt.Fprintln(w, "COLLECTION HALTED (quota exhausted)")
	case OutcomeEmpty:
		fmt.Fprintln(w, "NO ORGANIZATIONS MATCHED")
	default:
		fmt.Fprintln(w, "COLLECTION COMPLETE")
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Organizations processed: %d\n", res.Stats.OrgsProcessed)
	fmt.Fprintf(w, "Mentions found:          %d\n", res.Stats.MentionsFound)
	fmt.Fprintf(w, "Mentions inserted:       %d\n", res.Stats.MentionsInserted)
	fmt.Fprintf(w, "Duplicates skipped:      %d\n", res.Stats.DuplicatesSkipped)
	fmt.Fprintf(w, "Errors:                  %d\n", res.Stats.Errors)
	if res.Outcome == OutcomeHalted {
		fmt.Fprintf(w, "Resume with --offset %d\n", res.NextOffset)
	}
	fmt.Fprintln(w, rule)
}
