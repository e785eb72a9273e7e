package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	target := fs.Float64("target", 10.0, "Total target mRNA concentration (nM)")
	mirna := fs.Float64("mirna", 5.0, "Total miRNA/RISC concentration (nM)")
	efficiency := fs.Float64("efficiency", 1.0, "Cleavage efficiency in (0, 1]")
	synthesis := fs.Float64("synthesis", 0.0, "Target synthesis rate (nM/s)")
	hours := fs.Float64("hours", 24.0, "Simulated duration in hours")
	points := fs.Int("points", 49, "Number of output time points")
	method := fs.String("method", "tsit5", "Integration method (tsit5, rk45, auto)")
	coldStart := fs.Bool("cold-start", false, "Start from free species instead of binding equilibrium")
	stiff := fs.Bool("stiff", false, "Use stiff tolerances with automatic implicit fallback")
	output := fs.String("output", "", "Write results JSON to file (default: stdout summary only)")
	csvOut := fs.String("csv", "", "Write results CSV to file")

	kOn := fs.Float64("k-on", 0, "Override binding rate constant (1/(nM s))")
	kOff := fs.Float64("k-off", -1, "Override unbinding rate constant (1/s)")
	kCat := fs.Float64("k-cat", -1, "Override maximal cleavage rate constant (1/s)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mirnasim simulate [options]

Simulate one silencing condition and report the trajectory.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	params := kinetics.DefaultParams()
	if *kOn > 0 {
		params.KOn = *kOn
	}
	if *kOff >= 0 {
		params.KOff = *kOff
	}
	if *kCat >= 0 {
		params.KCatMax = *kCat
	}
	if err := params.Validate(); err != nil {
		return err
	}

	cond := sweep.DefaultCondition()
	cond.TotalTarget = *target
	cond.TotalEnzyme = *mirna
	cond.Efficiency = *efficiency
	cond.Synthesis = *synthesis

	times := timeGrid(*hours, *points)

	var m *solver.Method
	if *method != "auto" {
		m = solver.MethodByName(*method)
		if m == nil {
			return fmt.Errorf("unknown method: %s", *method)
		}
	}
	opts := solver.DefaultOptions()
	if *stiff {
		m = nil
		opts = solver.StiffOptions()
	}

	start := time.Now()
	rows, err := sweep.RunCondition(params, cond, times, !*coldStart, m, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	res := &results.SweepResult{
		Version:         results.SchemaVersion,
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		BaseParams:      params,
		Times:           times,
		EquilibriumInit: !*coldStart,
		Conditions:      1,
		Rows:            rows,
	}

	if *output != "" {
		if err := results.WriteJSON(res, *output); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", *output)
	}
	if *csvOut != "" {
		if err := results.WriteCSVFile(res, *csvOut); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "CSV written to %s\n", *csvOut)
	}

	printSimulateSummary(res, elapsed)
	return nil
}

func printSimulateSummary(res *results.SweepResult, elapsed time.Duration) {
	fmt.Println("=== Silencing Simulation ===")
	fmt.Printf("Duration: %.1f h (%d points), solved in %s\n",
		res.Times[len(res.Times)-1]/kinetics.SecondsPerHour, len(res.Times),
		elapsed.Round(time.Millisecond))
	fmt.Printf("Parameters: k_on=%.3g k_off=%.3g k_cat_max=%.3g efficiency=%.3g\n",
		res.BaseParams.KOn, res.BaseParams.KOff, res.BaseParams.KCatMax,
		res.BaseParams.Efficiency)

	for _, s := range results.Summarize(res) {
		fmt.Printf("\nInitial free target: %.4g nM\n", s.InitialTarget)
		fmt.Printf("Final free target:   %.4g nM (t=%.1f h)\n",
			s.FinalTarget, s.FinalTime/kinetics.SecondsPerHour)
		if s.InitialTarget > 0 {
			fmt.Printf("Remaining fraction:  %.4g\n", s.FinalRatio)
		}
	}
}

func timeGrid(hours float64, points int) []float64 {
	if points < 2 {
		points = 2
	}
	end := hours * kinetics.SecondsPerHour
	times := make([]float64, points)
	for i := range times {
		times[i] = end * float64(i) / float64(points-1)
	}
	return times
}
