package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/martinmodrak/miRNA-sim/results"
)

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output CSV file (default: input name with .csv)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mirnasim export <results.json> [options]

Convert sweep results JSON into a long-format CSV table, one row per
(condition, time point, species).

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

	input := fs.Arg(0)
	res, err := results.ReadJSON(input)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, ".json") + ".csv"
	}
	if err := results.WriteCSVFile(res, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d rows written to %s\n", len(res.Rows), out)
	return nil
}
