package kpi

import (
	"math"
	"testing"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
)

// kpiFixture has one sellable product with one subassembly so rollup and the
// ratio KPIs can be hand-computed.
func kpiFixture() *dataset.Dataset {
	return &dataset.Dataset{
		BaseCurrency: "USD",
		Periods:      []dataset.Period{{ID: "P1", EURRate: 1.10}},
		Products: []dataset.Product{
			{ID: "ALPHA", Sellable: true},
			{ID: "SUB", ParentID: "ALPHA"},
		},
		ProductionVolumes: []dataset.ProductionVolume{
			{PeriodID: "P1", ProductID: "ALPHA", Units: 100},
		},
		PriceList: []dataset.PriceListEntry{
			{PeriodID: "P1", ProductID: "ALPHA", UnitPrice: 50},
		},
	}
}

func TestProductKPIsRollupAndRatios(t *testing.T) {
	ds := kpiFixture()
	res := &allocation.Result{
		Rows: []allocation.Row{
			{PeriodID: "P1", ProductID: "ALPHA", Source: allocation.SourceMaterial, Amount: 1000, EURAmount: 200},
			{PeriodID: "P1", ProductID: "ALPHA", Source: allocation.SourceSalary, Amount: 600},
			// Subassembly cost rolls into ALPHA.
			{PeriodID: "P1", ProductID: "SUB", Source: allocation.SourceOverhead, Amount: 400, EURAmount: 100},
		},
	}

	kpis := ProductKPIs(ds, res, dataset.Scenario{ID: "base"})
	if len(kpis) != 1 {
		t.Fatalf("Expected 1 KPI row after rollup, got %d", len(kpis))
	}
	k := kpis[0]
	if k.ProductID != "ALPHA" {
		t.Fatalf("Expected ALPHA row, got %s", k.ProductID)
	}

	// Total = 1000 + 600 + 400 = 2000 over 100 units.
	if math.Abs(k.TotalCost-2000) > 1e-9 {
		t.Errorf("Expected total cost 2000, got %f", k.TotalCost)
	}
	if math.Abs(k.UnitCost-20) > 1e-9 {
		t.Errorf("Expected unit cost 20, got %f", k.UnitCost)
	}

	// Revenue = 100 * 50 = 5000; margin = (5000 - 2000) / 5000 = 60%.
	if math.Abs(k.GrossMarginPct-60) > 1e-9 {
		t.Errorf("Expected gross margin 60%%, got %f", k.GrossMarginPct)
	}

	// Indirect = 600 + 400 = 1000 of 2000 = 50%.
	if math.Abs(k.OverheadAbsorptionPct-50) > 1e-9 {
		t.Errorf("Expected overhead absorption 50%%, got %f", k.OverheadAbsorptionPct)
	}

	// EUR-origin = 200 + 100 = 300 of 2000 = 15%.
	if math.Abs(k.FXExposurePct-15) > 1e-9 {
		t.Errorf("Expected FX exposure 15%%, got %f", k.FXExposurePct)
	}
}

func TestProductKPIsVolumeShift(t *testing.T) {
	ds := kpiFixture()
	res := &allocation.Result{
		Rows: []allocation.Row{
			{PeriodID: "P1", ProductID: "ALPHA", Source: allocation.SourceMaterial, Amount: 2000},
		},
	}

	// +25% volume: 125 units carrying the same cost, unit cost 16.
	kpis := ProductKPIs(ds, res, dataset.Scenario{ID: "v", VolumeShiftPct: 25})
	if math.Abs(kpis[0].Volume-125) > 1e-9 {
		t.Errorf("Expected shifted volume 125, got %f", kpis[0].Volume)
	}
	if math.Abs(kpis[0].UnitCost-16) > 1e-9 {
		t.Errorf("Expected unit cost 16, got %f", kpis[0].UnitCost)
	}
}

func TestWeightedUnitCost(t *testing.T) {
	kpis := []ProductKPI{
		{TotalCost: 1000, Volume: 100},
		{TotalCost: 3000, Volume: 100},
	}
	// (1000 + 3000) / 200 = 20.
	if got := WeightedUnitCost(kpis); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected weighted unit cost 20, got %f", got)
	}
	if got := WeightedUnitCost(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %f", got)
	}
}

func TestVolatilityIndex(t *testing.T) {
	kpis := []ProductKPI{
		{ProductID: "A", PeriodID: "P1", UnitCost: 8},
		{ProductID: "A", PeriodID: "P2", UnitCost: 12},
		{ProductID: "B", PeriodID: "P1", UnitCost: 10},
		{ProductID: "B", PeriodID: "P2", UnitCost: 10},
	}
	vol := VolatilityIndex(kpis)

	// A: mean 10, stddev 2, CV 20%. B: flat, CV 0.
	if math.Abs(vol["A"]-20) > 1e-9 {
		t.Errorf("Expected volatility 20 for A, got %f", vol["A"])
	}
	if vol["B"] != 0 {
		t.Errorf("Expected volatility 0 for B, got %f", vol["B"])
	}
}

func TestCompositionByPeriod(t *testing.T) {
	ds := &dataset.Dataset{
		Periods: []dataset.Period{{ID: "P1"}, {ID: "P2"}},
	}
	res := &allocation.Result{
		Rows: []allocation.Row{
			{PeriodID: "P1", Source: allocation.SourceMaterial, Amount: 500},
			{PeriodID: "P1", Source: allocation.SourceSalary, Amount: 300},
			{PeriodID: "P1", Source: allocation.SourceOverhead, Amount: 200},
		},
	}

	rows := CompositionByPeriod(ds, res)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 composition row (P2 has no cost), got %d", len(rows))
	}
	c := rows[0]
	if math.Abs(c.MaterialPct-50) > 1e-9 || math.Abs(c.SalaryPct-30) > 1e-9 || math.Abs(c.OverheadPct-20) > 1e-9 {
		t.Errorf("Expected 50/30/20 mix, got %f/%f/%f", c.MaterialPct, c.SalaryPct, c.OverheadPct)
	}
	if math.Abs(c.MaterialPct+c.SalaryPct+c.OverheadPct-100) > 1e-9 {
		t.Errorf("Composition should sum to 100, got %f", c.MaterialPct+c.SalaryPct+c.OverheadPct)
	}
}

func TestLedgerGrowthIntensity(t *testing.T) {
	ds := dataset.Seed()
	rows := LedgerGrowthIntensity(ds, dataset.Scenario{ID: "base"})
	if len(rows) == 0 {
		t.Fatal("Expected ledger intensity rows for the seed dataset")
	}

	// RENT is flat 36000 per quarter in USD, so its movements are all zero.
	var rentRows []LedgerIntensityRow
	for _, r := range rows {
		if r.LedgerID == "RENT" {
			rentRows = append(rentRows, r)
		}
	}
	if len(rentRows) != 4 {
		t.Fatalf("Expected 4 RENT rows, got %d", len(rentRows))
	}
	for _, r := range rentRows {
		if math.Abs(r.Amount-36000) > 1e-9 {
			t.Errorf("Expected RENT amount 36000 in %s, got %f", r.PeriodID, r.Amount)
		}
		if r.ChangePct != 0 {
			t.Errorf("Expected flat RENT in %s, got change %f%%", r.PeriodID, r.ChangePct)
		}
	}

	// Scenario scaling: +100% ledger growth doubles every amount.
	grown := LedgerGrowthIntensity(ds, dataset.Scenario{ID: "g", LedgerGrowthPct: 100})
	for _, r := range grown {
		if r.LedgerID == "RENT" && math.Abs(r.Amount-72000) > 1e-9 {
			t.Errorf("Expected grown RENT 72000, got %f", r.Amount)
		}
	}
}

func TestTornado(t *testing.T) {
	ds := dataset.Seed()
	scenario := *ds.Scenario("base")

	entries, err := Tornado(ds, scenario, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Expected 4 tornado drivers, got %d", len(entries))
	}

	// Sorted by swing, largest first.
	for i := 1; i < len(entries); i++ {
		if entries[i].SwingAbs > entries[i-1].SwingAbs {
			t.Errorf("Entries out of order: %s (%f) after %s (%f)",
				entries[i].Driver, entries[i].SwingAbs, entries[i-1].Driver, entries[i-1].SwingAbs)
		}
	}

	// Every driver shares the same base and moves the unit cost somewhere.
	base := entries[0].Base
	for _, e := range entries {
		if e.Base != base {
			t.Errorf("Driver %s has base %f, expected %f", e.Driver, e.Base, base)
		}
		if e.SwingAbs <= 0 {
			t.Errorf("Driver %s has no swing", e.Driver)
		}
	}

	// Volume moves units, not cost, so bumping it swings unit cost the most
	// direct way: low volume raises unit cost, high volume lowers it.
	for _, e := range entries {
		if e.Driver == "Production volume" {
			if !(e.Low > e.Base && e.High < e.Base) {
				t.Errorf("Expected volume low > base > high, got low %f base %f high %f",
					e.Low, e.Base, e.High)
			}
		}
	}
}
