package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sweep":
		if err := sweepCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "equilibrium":
		if err := equilibrium(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sensitivity":
		if err := sensitivityCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "summary":
		if err := summary(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := export(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("mirnasim version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mirnasim - miRNA-mediated mRNA silencing kinetics

Usage:
  mirnasim <command> [options]

Commands:
  simulate     Run a single silencing time course
  sweep        Run a parameter sweep from a config file or preset
  equilibrium  Compute the binding equilibrium for given totals
  sensitivity  Rank kinetic parameters by impact on repression
  summary      Display per-condition repression from sweep results
  export       Convert sweep results JSON to CSV
  help         Show this help message
  version      Show version information

Examples:
  # Single condition: 10 nM target, 5 nM miRNA, 24 h
  mirnasim simulate --target 10 --mirna 5 --hours 24 --output run.json

  # Built-in oocyte vs somatic count sweep
  mirnasim sweep --preset oocyte --parallel 8 --output oocyte.json

  # Sweep from a YAML specification, with result caching
  mirnasim sweep --config study.yaml --cache results.db --csv study.csv

  # Repression summary of a finished sweep
  mirnasim summary oocyte.json

For command-specific help, run:
  mirnasim <command> --help`)
}
