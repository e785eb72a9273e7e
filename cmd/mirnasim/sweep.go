package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/martinmodrak/miRNA-sim/cache"
	"github.com/martinmodrak/miRNA-sim/config"
	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

func sweepCmd(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configFile := fs.String("config", "", "YAML sweep specification")
	preset := fs.String("preset", "", "Built-in sweep preset")
	parallel := fs.Int("parallel", runtime.NumCPU(), "Number of parallel simulations (1 = sequential)")
	cachePath := fs.String("cache", "", "SQLite result cache path (empty = no caching)")
	noCache := fs.Bool("no-cache", false, "Recompute even when a cache path is set")
	output := fs.String("output", "sweep_results.json", "Output file for sweep results")
	csvOut := fs.String("csv", "", "Also write results CSV to file")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mirnasim sweep [options]

Run every condition of a Cartesian parameter sweep and concatenate the
trajectories into a single long-format result.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Presets:
  %v

Examples:
  # Built-in oocyte count grid, 8 workers
  mirnasim sweep --preset oocyte --parallel 8 --output oocyte.json

  # Custom sweep with caching; a repeat run with an unchanged
  # specification is served from the cache
  mirnasim sweep --config study.yaml --cache results.db --csv study.csv
`, config.PresetNames())
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	switch {
	case *configFile != "" && *preset != "":
		return fmt.Errorf("--config and --preset are mutually exclusive")
	case *configFile != "":
		cfg, err = config.Load(*configFile)
	case *preset != "":
		cfg, err = config.Preset(*preset)
	default:
		fs.Usage()
		return fmt.Errorf("either --config or --preset is required")
	}
	if err != nil {
		return err
	}

	spec, err := cfg.Spec()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engine := sweep.New(spec, *parallel, log)
	fmt.Fprintf(os.Stderr, "Parameter sweep: %d conditions x %d time points\n",
		spec.ConditionCount(), len(spec.Times))

	cacheAt := *cachePath
	if *noCache {
		cacheAt = ""
	}

	start := time.Now()
	res, cached, err := runSweep(engine, spec, cacheAt, log)
	if err != nil {
		return err
	}

	if err := results.WriteJSON(res, *output); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if *csvOut != "" {
		if err := results.WriteCSVFile(res, *csvOut); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	source := "computed"
	if cached {
		source = "cache"
	}
	fmt.Fprintf(os.Stderr, "%d rows (%s) in %s, written to %s\n",
		len(res.Rows), source, time.Since(start).Round(time.Millisecond), *output)
	return nil
}

// runSweep executes the sweep, consulting the persistent cache when a
// path is configured.
func runSweep(engine *sweep.Engine, spec *sweep.Spec, cachePath string,
	log *slog.Logger) (*results.SweepResult, bool, error) {

	compute := func() (*results.SweepResult, error) {
		return engine.Run(context.Background())
	}

	if cachePath == "" {
		res, err := compute()
		return res, false, err
	}

	store, err := cache.Open(cachePath, log)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	want, err := expectation(spec)
	if err != nil {
		return nil, false, err
	}
	return store.GetOrCompute(spec.CacheKey(), want, compute)
}

// expectation derives the cache verification data from the spec itself,
// without running any simulation.
func expectation(spec *sweep.Spec) (cache.Expectation, error) {
	conds, err := spec.Enumerate()
	if err != nil {
		return cache.Expectation{}, err
	}
	set := make(map[string]struct{}, len(conds))
	for _, c := range conds {
		set[c.Key()] = struct{}{}
	}
	return cache.Expectation{
		Base:       spec.Base,
		RowCount:   len(conds) * len(spec.Times) * kinetics.NumSpecies,
		Conditions: set,
	}, nil
}
