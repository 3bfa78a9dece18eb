// Package dataset defines the in-memory star schema the cost model runs on:
// dimension tables (periods, currencies, ledgers, cost centers, products,
// scenarios) and flat fact tables (consumption, salaries, overhead postings,
// allocation rules, volumes, prices).
package dataset

// =============================================================================
// DIMENSION TABLES
// =============================================================================

// Period is a reporting period. EURRate is the base-currency price of one EUR
// for that period (the model's base currency is USD).
type Period struct {
	ID      string  `json:"id"`    // e.g. "2025-Q1"
	Label   string  `json:"label"` // e.g. "Q1 2025"
	EURRate float64 `json:"eur_rate"`
}

// Currency is a settlement currency. Only the base currency and EUR carry
// conversion logic; the code field matches ISO 4217.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Ledger is a named expense account contributing to overhead.
type Ledger struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"` // denomination of its postings
}

// CostCenter accumulates direct and indirect cost before allocation.
type CostCenter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable item or a BOM subassembly. ParentID links a
// subassembly to the product it rolls up into ("" for top-level).
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Sellable bool   `json:"sellable"`
}

// Scenario holds what-if recomputation parameters. All values are percentages;
// zero means "as reported".
type Scenario struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	FXShockPct      float64 `json:"fx_shock_pct"`      // applied to the EUR rate
	LedgerGrowthPct float64 `json:"ledger_growth_pct"` // scales overhead postings
	SalaryGrowthPct float64 `json:"salary_growth_pct"` // scales salary facts
	VolumeShiftPct  float64 `json:"volume_shift_pct"`  // scales production volumes
}

// =============================================================================
// FACT TABLES
// =============================================================================

// MaterialConsumption is direct material usage for one product in one period.
type MaterialConsumption struct {
	PeriodID  string  `json:"period_id"`
	ProductID string  `json:"product_id"`
	Material  string  `json:"material"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	Currency  string  `json:"currency"`
}

// SalaryFact is one salary component booked on a cost center.
type SalaryFact struct {
	PeriodID     string  `json:"period_id"`
	CostCenterID string  `json:"cost_center_id"`
	Component    string  `json:"component"` // "base", "bonus", "benefits"
	Amount       float64 `json:"amount"`    // base currency
}

// OverheadPosting is a raw ledger posting booked on a cost center, denominated
// in the ledger's currency.
type OverheadPosting struct {
	PeriodID     string  `json:"period_id"`
	LedgerID     string  `json:"ledger_id"`
	CostCenterID string  `json:"cost_center_id"`
	Amount       float64 `json:"amount"`
}

// StepDownRule moves cost from one cost center to another with a driver
// weight. Weights for one source center are normalized together with its
// direct allocations at settlement time.
type StepDownRule struct {
	FromCostCenter string  `json:"from_cost_center"`
	ToCostCenter   string  `json:"to_cost_center"`
	Weight         float64 `json:"weight"`
	Driver         string  `json:"driver"` // e.g. "headcount", "sqm", "machine_hours"
}

// DirectAllocation moves cost from a cost center straight into a product.
type DirectAllocation struct {
	CostCenterID string  `json:"cost_center_id"`
	ProductID    string  `json:"product_id"`
	Weight       float64 `json:"weight"`
	Driver       string  `json:"driver"`
}

// ProductionVolume is units produced per product per period.
type ProductionVolume struct {
	PeriodID  string  `json:"period_id"`
	ProductID string  `json:"product_id"`
	Units     float64 `json:"units"`
}

// PriceListEntry is the selling price per unit per period. Needed for the
// gross margin KPI; subassemblies have no price entry.
type PriceListEntry struct {
	PeriodID  string  `json:"period_id"`
	ProductID string  `json:"product_id"`
	UnitPrice float64 `json:"unit_price"` // base currency
}

// =============================================================================
// DATASET AGGREGATE
// =============================================================================

// Dataset is the complete star schema for one cost model.
type Dataset struct {
	BaseCurrency string       `json:"base_currency"`
	Periods      []Period     `json:"periods"`
	Currencies   []Currency   `json:"currencies"`
	Ledgers      []Ledger     `json:"ledgers"`
	CostCenters  []CostCenter `json:"cost_centers"`
	Products     []Product    `json:"products"`
	Scenarios    []Scenario   `json:"scenarios"`

	MaterialConsumption []MaterialConsumption `json:"material_consumption"`
	SalaryFacts         []SalaryFact          `json:"salary_facts"`
	OverheadPostings    []OverheadPosting     `json:"overhead_postings"`
	StepDownRules       []StepDownRule        `json:"step_down_rules"`
	DirectAllocations   []DirectAllocation    `json:"direct_allocations"`
	ProductionVolumes   []ProductionVolume    `json:"production_volumes"`
	PriceList           []PriceListEntry      `json:"price_list"`
}

// Ledger returns the ledger row for an ID, or nil.
func (d *Dataset) Ledger(id string) *Ledger {
	for i := range d.Ledgers {
		if d.Ledgers[i].ID == id {
			return &d.Ledgers[i]
		}
	}
	return nil
}

// Period returns the period row for an ID, or nil.
func (d *Dataset) Period(id string) *Period {
	for i := range d.Periods {
		if d.Periods[i].ID == id {
			return &d.Periods[i]
		}
	}
	return nil
}

// Scenario returns the scenario row for an ID, or nil.
func (d *Dataset) Scenario(id string) *Scenario {
	for i := range d.Scenarios {
		if d.Scenarios[i].ID == id {
			return &d.Scenarios[i]
		}
	}
	return nil
}

// Volume returns units produced for a product in a period (0 if absent).
func (d *Dataset) Volume(periodID, productID string) float64 {
	for _, v := range d.ProductionVolumes {
		if v.PeriodID == periodID && v.ProductID == productID {
			return v.Units
		}
	}
	return 0
}

// Price returns the unit selling price for a product in a period (0 if absent).
func (d *Dataset) Price(periodID, productID string) float64 {
	for _, p := range d.PriceList {
		if p.PeriodID == periodID && p.ProductID == productID {
			return p.UnitPrice
		}
	}
	return 0
}
