package dataset

import "fmt"

// Seed returns the built-in demo dataset: four quarters of costing facts for a
// small plant with six cost centers and three sellable products (plus two BOM
// subassemblies). Amounts drift slightly quarter over quarter so that trend
// and volatility KPIs have something to measure.
func Seed() *Dataset {
	d := &Dataset{
		BaseCurrency: "USD",
		Periods: []Period{
			{ID: "2025-Q1", Label: "Q1 2025", EURRate: 1.08},
			{ID: "2025-Q2", Label: "Q2 2025", EURRate: 1.09},
			{ID: "2025-Q3", Label: "Q3 2025", EURRate: 1.11},
			{ID: "2025-Q4", Label: "Q4 2025", EURRate: 1.10},
		},
		Currencies: []Currency{
			{Code: "USD", Name: "US Dollar"},
			{Code: "EUR", Name: "Euro"},
		},
		Ledgers: []Ledger{
			{ID: "ELEC", Name: "Electricity", Currency: "USD"},
			{ID: "DEPR", Name: "Depreciation", Currency: "USD"},
			{ID: "RENT", Name: "Rent", Currency: "USD"},
			{ID: "INS", Name: "Insurance", Currency: "USD"},
			{ID: "MSVC", Name: "Maintenance Services", Currency: "EUR"},
			{ID: "SWL", Name: "Software Licenses", Currency: "EUR"},
		},
		CostCenters: []CostCenter{
			{ID: "FAC", Name: "Facilities"},
			{ID: "ADM", Name: "Administration"},
			{ID: "MAINT", Name: "Maintenance"},
			{ID: "QC", Name: "QC Lab"},
			{ID: "PROD", Name: "Production"},
			{ID: "PKG", Name: "Packaging"},
		},
		Products: []Product{
			{ID: "ALPHA", Name: "Alpha Unit", Sellable: true},
			{ID: "BETA", Name: "Beta Unit", Sellable: true},
			{ID: "GAMMA", Name: "Gamma Unit", Sellable: true},
			{ID: "ALPHA-FRM", Name: "Alpha Frame", ParentID: "ALPHA"},
			{ID: "BETA-CELL", Name: "Beta Cell", ParentID: "BETA"},
		},
		Scenarios: []Scenario{
			{ID: "base", Name: "Base Case"},
			{ID: "fx_shock", Name: "EUR +15% FX Shock", FXShockPct: 15},
			{ID: "ledger_growth", Name: "Overhead +8% Growth", LedgerGrowthPct: 8},
			{ID: "stress", Name: "Combined Stress", FXShockPct: 15, LedgerGrowthPct: 8, SalaryGrowthPct: 4},
		},
		StepDownRules: []StepDownRule{
			{FromCostCenter: "FAC", ToCostCenter: "ADM", Weight: 10, Driver: "sqm"},
			{FromCostCenter: "FAC", ToCostCenter: "MAINT", Weight: 15, Driver: "sqm"},
			{FromCostCenter: "FAC", ToCostCenter: "QC", Weight: 15, Driver: "sqm"},
			{FromCostCenter: "FAC", ToCostCenter: "PROD", Weight: 40, Driver: "sqm"},
			{FromCostCenter: "FAC", ToCostCenter: "PKG", Weight: 20, Driver: "sqm"},
			{FromCostCenter: "ADM", ToCostCenter: "MAINT", Weight: 10, Driver: "headcount"},
			{FromCostCenter: "ADM", ToCostCenter: "QC", Weight: 15, Driver: "headcount"},
			{FromCostCenter: "ADM", ToCostCenter: "PROD", Weight: 50, Driver: "headcount"},
			{FromCostCenter: "ADM", ToCostCenter: "PKG", Weight: 25, Driver: "headcount"},
			{FromCostCenter: "MAINT", ToCostCenter: "PROD", Weight: 70, Driver: "machine_hours"},
			{FromCostCenter: "MAINT", ToCostCenter: "PKG", Weight: 30, Driver: "machine_hours"},
			{FromCostCenter: "QC", ToCostCenter: "PROD", Weight: 60, Driver: "inspection_hours"},
			{FromCostCenter: "QC", ToCostCenter: "PKG", Weight: 40, Driver: "inspection_hours"},
		},
		DirectAllocations: []DirectAllocation{
			{CostCenterID: "PROD", ProductID: "ALPHA", Weight: 40, Driver: "machine_hours"},
			{CostCenterID: "PROD", ProductID: "BETA", Weight: 30, Driver: "machine_hours"},
			{CostCenterID: "PROD", ProductID: "GAMMA", Weight: 20, Driver: "machine_hours"},
			{CostCenterID: "PROD", ProductID: "ALPHA-FRM", Weight: 6, Driver: "machine_hours"},
			{CostCenterID: "PROD", ProductID: "BETA-CELL", Weight: 4, Driver: "machine_hours"},
			{CostCenterID: "PKG", ProductID: "ALPHA", Weight: 40, Driver: "pack_lines"},
			{CostCenterID: "PKG", ProductID: "BETA", Weight: 35, Driver: "pack_lines"},
			{CostCenterID: "PKG", ProductID: "GAMMA", Weight: 25, Driver: "pack_lines"},
		},
	}

	// Per-quarter drift factors (cost inflation, volume ramp).
	drift := []float64{1.00, 1.02, 1.05, 1.04}

	for qi, p := range d.Periods {
		f := drift[qi]

		// Direct material. EU Alloy is the EUR-denominated input feeding the
		// FX exposure KPI.
		d.MaterialConsumption = append(d.MaterialConsumption,
			MaterialConsumption{PeriodID: p.ID, ProductID: "ALPHA", Material: "Steel Sheet", Quantity: 1200 * f, UnitCost: 14.5, Currency: "USD"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "ALPHA", Material: "EU Alloy", Quantity: 300 * f, UnitCost: 22.0, Currency: "EUR"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "BETA", Material: "Steel Sheet", Quantity: 800 * f, UnitCost: 14.5, Currency: "USD"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "BETA", Material: "Polymer Resin", Quantity: 450 * f, UnitCost: 9.2, Currency: "USD"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "GAMMA", Material: "EU Alloy", Quantity: 250 * f, UnitCost: 22.0, Currency: "EUR"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "ALPHA-FRM", Material: "Aluminum Bar", Quantity: 500 * f, UnitCost: 6.8, Currency: "USD"},
			MaterialConsumption{PeriodID: p.ID, ProductID: "BETA-CELL", Material: "Copper Wire", Quantity: 350 * f, UnitCost: 4.1, Currency: "USD"},
		)

		// Salaries by component, booked per cost center in base currency.
		for _, s := range []struct {
			cc   string
			base float64
		}{
			{"FAC", 38000}, {"ADM", 62000}, {"MAINT", 45000},
			{"QC", 41000}, {"PROD", 125000}, {"PKG", 58000},
		} {
			d.SalaryFacts = append(d.SalaryFacts,
				SalaryFact{PeriodID: p.ID, CostCenterID: s.cc, Component: "base", Amount: s.base * f},
				SalaryFact{PeriodID: p.ID, CostCenterID: s.cc, Component: "bonus", Amount: s.base * 0.08 * f},
				SalaryFact{PeriodID: p.ID, CostCenterID: s.cc, Component: "benefits", Amount: s.base * 0.22 * f},
			)
		}

		// Overhead postings in ledger currency.
		d.OverheadPostings = append(d.OverheadPostings,
			OverheadPosting{PeriodID: p.ID, LedgerID: "ELEC", CostCenterID: "PROD", Amount: 28000 * f},
			OverheadPosting{PeriodID: p.ID, LedgerID: "ELEC", CostCenterID: "FAC", Amount: 9000 * f},
			OverheadPosting{PeriodID: p.ID, LedgerID: "DEPR", CostCenterID: "PROD", Amount: 41000},
			OverheadPosting{PeriodID: p.ID, LedgerID: "DEPR", CostCenterID: "PKG", Amount: 12500},
			OverheadPosting{PeriodID: p.ID, LedgerID: "RENT", CostCenterID: "FAC", Amount: 36000},
			OverheadPosting{PeriodID: p.ID, LedgerID: "INS", CostCenterID: "ADM", Amount: 7400 * f},
			OverheadPosting{PeriodID: p.ID, LedgerID: "MSVC", CostCenterID: "MAINT", Amount: 15500 * f},
			OverheadPosting{PeriodID: p.ID, LedgerID: "SWL", CostCenterID: "ADM", Amount: 6200 * f},
			OverheadPosting{PeriodID: p.ID, LedgerID: "SWL", CostCenterID: "QC", Amount: 2900 * f},
		)

		// Volumes ramp with drift; prices are sticky within the year.
		d.ProductionVolumes = append(d.ProductionVolumes,
			ProductionVolume{PeriodID: p.ID, ProductID: "ALPHA", Units: 2400 * f},
			ProductionVolume{PeriodID: p.ID, ProductID: "BETA", Units: 1900 * f},
			ProductionVolume{PeriodID: p.ID, ProductID: "GAMMA", Units: 1100 * f},
			ProductionVolume{PeriodID: p.ID, ProductID: "ALPHA-FRM", Units: 2400 * f},
			ProductionVolume{PeriodID: p.ID, ProductID: "BETA-CELL", Units: 1900 * f},
		)
		d.PriceList = append(d.PriceList,
			PriceListEntry{PeriodID: p.ID, ProductID: "ALPHA", UnitPrice: 96},
			PriceListEntry{PeriodID: p.ID, ProductID: "BETA", UnitPrice: 82},
			PriceListEntry{PeriodID: p.ID, ProductID: "GAMMA", UnitPrice: 74},
		)
	}

	return d
}

// Validate checks referential integrity across all fact tables so the engine
// can assume clean inputs.
func (d *Dataset) Validate() error {
	periods := map[string]bool{}
	for _, p := range d.Periods {
		periods[p.ID] = true
	}
	currencies := map[string]bool{}
	for _, c := range d.Currencies {
		currencies[c.Code] = true
	}
	ledgers := map[string]bool{}
	for _, l := range d.Ledgers {
		if !currencies[l.Currency] {
			return fmt.Errorf("ledger %s: unknown currency %s", l.ID, l.Currency)
		}
		ledgers[l.ID] = true
	}
	centers := map[string]bool{}
	for _, c := range d.CostCenters {
		centers[c.ID] = true
	}
	products := map[string]bool{}
	for _, p := range d.Products {
		products[p.ID] = true
	}
	for _, p := range d.Products {
		if p.ParentID != "" && !products[p.ParentID] {
			return fmt.Errorf("product %s: unknown parent %s", p.ID, p.ParentID)
		}
	}

	for _, m := range d.MaterialConsumption {
		if !periods[m.PeriodID] || !products[m.ProductID] || !currencies[m.Currency] {
			return fmt.Errorf("material consumption row references unknown dimension: %+v", m)
		}
		if m.Quantity < 0 || m.UnitCost < 0 {
			return fmt.Errorf("material consumption row has negative quantity or cost: %+v", m)
		}
	}
	for _, s := range d.SalaryFacts {
		if !periods[s.PeriodID] || !centers[s.CostCenterID] {
			return fmt.Errorf("salary fact references unknown dimension: %+v", s)
		}
	}
	for _, o := range d.OverheadPostings {
		if !periods[o.PeriodID] || !ledgers[o.LedgerID] || !centers[o.CostCenterID] {
			return fmt.Errorf("overhead posting references unknown dimension: %+v", o)
		}
	}
	for _, r := range d.StepDownRules {
		if !centers[r.FromCostCenter] || !centers[r.ToCostCenter] {
			return fmt.Errorf("step-down rule references unknown cost center: %+v", r)
		}
		if r.FromCostCenter == r.ToCostCenter {
			return fmt.Errorf("step-down rule allocates %s to itself", r.FromCostCenter)
		}
		if r.Weight < 0 {
			return fmt.Errorf("step-down rule has negative weight: %+v", r)
		}
	}
	for _, a := range d.DirectAllocations {
		if !centers[a.CostCenterID] || !products[a.ProductID] {
			return fmt.Errorf("direct allocation references unknown dimension: %+v", a)
		}
		if a.Weight < 0 {
			return fmt.Errorf("direct allocation has negative weight: %+v", a)
		}
	}
	for _, v := range d.ProductionVolumes {
		if !periods[v.PeriodID] || !products[v.ProductID] {
			return fmt.Errorf("production volume references unknown dimension: %+v", v)
		}
	}
	for _, pl := range d.PriceList {
		if !periods[pl.PeriodID] || !products[pl.ProductID] {
			return fmt.Errorf("price list entry references unknown dimension: %+v", pl)
		}
	}
	return nil
}
