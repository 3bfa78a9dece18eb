package kpi

import (
	"sort"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/validate"
)

// CompositionByPeriod reduces allocated rows into the material/salary/overhead
// cost mix per period, in dataset period order.
func CompositionByPeriod(ds *dataset.Dataset, res *allocation.Result) []CompositionRow {
	type mix struct{ material, salary, overhead float64 }
	byPeriod := make(map[string]*mix)
	for _, r := range res.Rows {
		m, ok := byPeriod[r.PeriodID]
		if !ok {
			m = &mix{}
			byPeriod[r.PeriodID] = m
		}
		switch r.Source {
		case allocation.SourceMaterial:
			m.material += r.Amount
		case allocation.SourceSalary:
			m.salary += r.Amount
		case allocation.SourceOverhead:
			m.overhead += r.Amount
		}
	}

	out := make([]CompositionRow, 0, len(ds.Periods))
	for _, p := range ds.Periods {
		m, ok := byPeriod[p.ID]
		if !ok {
			continue
		}
		total := m.material + m.salary + m.overhead
		row := CompositionRow{PeriodID: p.ID, Total: total}
		if total > 0 {
			row.MaterialPct = m.material / total * 100
			row.SalaryPct = m.salary / total * 100
			row.OverheadPct = m.overhead / total * 100
		}
		out = append(out, row)
	}
	return out
}

// LedgerGrowthIntensity tracks each ledger's total postings per period (base
// currency, scenario scaling applied) and the period-over-period movement.
func LedgerGrowthIntensity(ds *dataset.Dataset, scenario dataset.Scenario) []LedgerIntensityRow {
	ledgerScale := 1 + scenario.LedgerGrowthPct/100

	// ledger -> period -> amount
	amounts := make(map[string]map[string]float64)
	for _, o := range ds.OverheadPostings {
		ledger := ds.Ledger(o.LedgerID)
		period := ds.Period(o.PeriodID)
		if ledger == nil || period == nil {
			continue
		}
		amt := o.Amount * ledgerScale
		if ledger.Currency == "EUR" {
			amt *= period.EURRate * (1 + scenario.FXShockPct/100)
		}
		if amounts[o.LedgerID] == nil {
			amounts[o.LedgerID] = make(map[string]float64)
		}
		amounts[o.LedgerID][o.PeriodID] += amt
	}

	ledgerIDs := make([]string, 0, len(amounts))
	for id := range amounts {
		ledgerIDs = append(ledgerIDs, id)
	}
	sort.Strings(ledgerIDs)

	var out []LedgerIntensityRow
	for _, lid := range ledgerIDs {
		var prior float64
		for i, p := range ds.Periods {
			amt, ok := amounts[lid][p.ID]
			if !ok {
				continue
			}
			row := LedgerIntensityRow{LedgerID: lid, PeriodID: p.ID, Amount: amt}
			if i > 0 && prior > 0 {
				row.ChangePct = validate.CalculateChange(amt, prior)
			}
			prior = amt
			out = append(out, row)
		}
	}
	return out
}
