// Command wininfo prints catalog and measured properties of the flat-top
// windows used for noise density estimation.
//
// Usage:
//
//	wininfo [flags] [window-name ...]
//
// Without arguments it prints info for all catalog windows.
//
// Examples:
//
//	wininfo ftni
//	wininfo -size 16384 hft90d hft95
//	wininfo -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-nsd/dsp/window"
)

func main() {
	size := flag.Int("size", 1024, "window length in samples")
	list := flag.Bool("list", false, "list available window names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wininfo [flags] [window-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints catalog and measured properties of the flat-top windows.\n")
		fmt.Fprintf(os.Stderr, "Without arguments, prints info for all windows.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wininfo ftni\n")
		fmt.Fprintf(os.Stderr, "  wininfo -size 16384 hft90d hft95\n")
		fmt.Fprintf(os.Stderr, "  wininfo -list\n")
	}
	flag.Parse()

	if *list {
		for _, t := range window.Types() {
			fmt.Println(t)
		}
		return
	}

	types := resolveTypes(flag.Args(), os.Stderr)
	if len(types) == 0 {
		fmt.Fprintf(os.Stderr, "error: no matching window types\n")
		os.Exit(1)
	}

	if err := printAnalysis(os.Stdout, types, *size); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTypes maps names to catalog types, warning about unknown names.
// No names selects every type.
func resolveTypes(names []string, warn io.Writer) []window.Type {
	if len(names) == 0 {
		return window.Types()
	}

	var result []window.Type
	for _, name := range names {
		t, err := window.ParseType(name)
		if err != nil {
			fmt.Fprintf(warn, "warning: unknown window %q (use -list to see available)\n", name)
			continue
		}
		result = append(result, t)
	}
	return result
}

func printAnalysis(out io.Writer, types []window.Type, size int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Window\tSize\tNENBW [bins]\tENBW [bins]\tFirst Bin\tOverlap\tHop\tCoherent Gain\tBW 3dB [bins]\tScallop [dB]\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "------\t----\t------------\t-----------\t---------\t-------\t---\t-------------\t-------------\t------------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, t := range types {
		w, err := window.New(t, size)
		if err != nil {
			return err
		}
		a := window.Analyze(w)

		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%d\t%.3f\t%d\t%.6f\t%.4f\t%.4f\n",
			t,
			size,
			w.NENBW(),
			a.ENBW,
			w.FirstUsableBin(),
			w.OptimumOverlap(),
			w.Hop(),
			a.CoherentGain,
			a.Bandwidth3dB,
			a.ScallopLossdB,
		); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
