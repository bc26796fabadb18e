package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/trajeval/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to engine fixture JSON")
	verbose := flag.Bool("v", false, "print scores and reasons for every case")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/engine_cases.json [-v]")
		os.Exit(2)
	}

	os.Exit(runFixtureMode(*fixturePath, *verbose))
}

// #endregion main

// #region output

func runFixtureMode(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, err := f.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "run fixture: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(results, verbose)
}

// printComparison outputs a comparison table and returns exit code.
func printComparison(results []replay.CaseResult, verbose bool) int {
	fmt.Printf("%-24s| %-22s| %-22s| %s\n", "Case", "Expected", "Got", "Match")
	fmt.Printf("%-24s+%-23s+%-23s+%s\n",
		"------------------------", "-----------------------", "-----------------------", "------")

	matches := 0
	for _, r := range results {
		exp := string(r.ExpectedLabel)
		if r.ExpectedAction != "" {
			exp += "/" + r.ExpectedAction
		}
		got := string(r.Label) + "/" + r.Action
		match := "DIFF"
		if r.Match() {
			match = "OK"
			matches++
		}

		fmt.Printf("%-24s| %-22s| %-22s| %s\n", r.Name, exp, got, match)
		if verbose || !r.Match() {
			fmt.Printf("%-24s  raw=%.4f final=%.4f %s\n", "", r.RawScore, r.FinalScore, r.Reason)
		}
	}

	total := len(results)
	diverge := total - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output
