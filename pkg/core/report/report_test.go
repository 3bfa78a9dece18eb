package report

import (
	"strings"
	"testing"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/kpi"
)

func buildInput(t *testing.T) Input {
	t.Helper()
	ds := dataset.Seed()
	scenario := *ds.Scenario("base")

	res, err := allocation.Run(ds, scenario)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}
	kpis := kpi.ProductKPIs(ds, res, scenario)
	tornado, err := kpi.Tornado(ds, scenario, 10)
	if err != nil {
		t.Fatalf("tornado failed: %v", err)
	}

	return Input{
		Dataset:     ds,
		Scenario:    scenario,
		Result:      res,
		KPIs:        kpis,
		Composition: kpi.CompositionByPeriod(ds, res),
		Tornado:     tornado,
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(buildInput(t))

	for _, want := range []string{
		"# Cost Intelligence Report: Base Case",
		"## Product KPIs",
		"## Cost Volatility Index",
		"## Cost Composition by Period",
		"## Unit Cost Sensitivity (Tornado)",
		"## Allocation Audit",
		"Settlement order: FAC -> ADM -> MAINT -> QC -> PKG -> PROD",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}

	// Every period and sellable product shows up in the KPI table.
	for _, id := range []string{"2025-Q1", "2025-Q4", "ALPHA", "BETA", "GAMMA"} {
		if !strings.Contains(md, id) {
			t.Errorf("Report missing %s", id)
		}
	}

	// Subassemblies roll up; they must not appear as KPI rows.
	if strings.Contains(md, "ALPHA-FRM") {
		t.Error("Subassembly leaked into the KPI table")
	}

	// A balanced run shows no audit failures.
	if strings.Contains(md, "NO (diff") {
		t.Error("Base case audit reported an imbalance")
	}
}

func TestBuildHTML(t *testing.T) {
	html, err := BuildHTML(buildInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<table") {
		t.Error("Expected rendered heading and tables in HTML output")
	}
	if !strings.Contains(html, "Base Case") {
		t.Error("Scenario name missing from HTML output")
	}
}
