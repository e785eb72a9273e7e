package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
)

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	threshold := fs.Float64("threshold", 0, "Only show conditions with remaining fraction above this value")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mirnasim summary <results.json> [options]

Display per-condition repression: how much free target remains at the end
of each trajectory relative to its initial value.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("results file required")
	}

	res, err := results.ReadJSON(fs.Arg(0))
	if err != nil {
		return err
	}

	summaries := results.Summarize(res)

	fmt.Println("=== Repression Summary ===")
	fmt.Printf("Run: %s (%d conditions, %d rows)\n\n", res.RunID, res.Conditions, len(res.Rows))
	fmt.Printf("%-12s %12s %12s %12s %10s %10s\n",
		"cell_type", "target(nM)", "mirna(nM)", "efficiency", "remaining", "t(h)")

	shown := 0
	for _, s := range summaries {
		if s.FinalRatio < *threshold {
			continue
		}
		cellType := s.Condition.CellType
		if cellType == "" {
			cellType = "-"
		}
		fmt.Printf("%-12s %12.4g %12.4g %12.4g %10.4g %10.1f\n",
			cellType, s.Condition.TotalTarget, s.Condition.TotalEnzyme,
			s.Condition.Efficiency, s.FinalRatio,
			s.FinalTime/kinetics.SecondsPerHour)
		shown++
	}
	if shown < len(summaries) {
		fmt.Printf("\n(%d of %d conditions shown)\n", shown, len(summaries))
	}
	return nil
}
