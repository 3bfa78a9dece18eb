package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/kpi"
	"cost_intelligence/pkg/core/report"
	"cost_intelligence/pkg/core/validate"
)

// Command-line runner for the allocation pipeline. Runs one scenario (or all
// of them), prints the conservation audit to stdout, and writes the markdown
// report to disk.
func main() {
	scenarioID := flag.String("scenario", "", "scenario to run (empty = all scenarios)")
	probePct := flag.Float64("probe", 10, "tornado probe size in percent")
	outDir := flag.String("out", "reports", "directory for markdown reports")
	flag.Parse()

	godotenv.Load()

	ds := dataset.Seed()
	if err := ds.Validate(); err != nil {
		fmt.Printf("[FATAL] Dataset validation failed: %v\n", err)
		os.Exit(1)
	}

	var scenarios []dataset.Scenario
	if *scenarioID != "" {
		s := ds.Scenario(*scenarioID)
		if s == nil {
			fmt.Printf("[FATAL] Unknown scenario: %s\n", *scenarioID)
			os.Exit(1)
		}
		scenarios = []dataset.Scenario{*s}
	} else {
		scenarios = ds.Scenarios
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Printf("[FATAL] Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, scenario := range scenarios {
		fmt.Printf("\n[PIPELINE] Running scenario: %s\n", scenario.ID)

		res, err := allocation.Run(ds, scenario)
		if err != nil {
			fmt.Printf("[ERROR] Allocation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("[PIPELINE] Settlement order: %v\n", res.Order)

		for _, t := range res.Totals {
			check := validate.CheckConservation(t.PeriodID, t.Input, t.Allocated, t.Unabsorbed, 1e-6)
			if check.IsBalanced {
				fmt.Printf("[AUDIT] %s: input %.2f = allocated %.2f + unabsorbed %.2f\n",
					t.PeriodID, t.Input, t.Allocated, t.Unabsorbed)
			} else {
				fmt.Printf("[AUDIT] %s: NOT BALANCED, difference %.6f\n", t.PeriodID, check.Difference)
				failed = true
			}
		}

		kpis := kpi.ProductKPIs(ds, res, scenario)
		tornado, err := kpi.Tornado(ds, scenario, *probePct)
		if err != nil {
			fmt.Printf("[ERROR] Tornado analysis failed: %v\n", err)
			failed = true
			continue
		}

		md := report.BuildMarkdown(report.Input{
			Dataset:     ds,
			Scenario:    scenario,
			Result:      res,
			KPIs:        kpis,
			Composition: kpi.CompositionByPeriod(ds, res),
			Tornado:     tornado,
		})

		outPath := filepath.Join(*outDir, fmt.Sprintf("report_%s.md", scenario.ID))
		if err := os.WriteFile(outPath, []byte(md), 0644); err != nil {
			fmt.Printf("[ERROR] Failed to write report: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("[PIPELINE] Report written: %s\n", outPath)
	}

	if failed {
		os.Exit(1)
	}
}
