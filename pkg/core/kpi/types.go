// Package kpi reduces allocation engine output into the view-model rows the
// dashboard renders: per period/product KPI rows, composition series, ledger
// growth intensity, and tornado sensitivity rankings.
package kpi

// ProductKPI is one period/product view-model row. Subassembly costs are
// rolled up into their sellable parent before KPIs are computed.
type ProductKPI struct {
	PeriodID  string `json:"period_id"`
	ProductID string `json:"product_id"`

	Volume  float64 `json:"volume"`
	Revenue float64 `json:"revenue"`

	MaterialCost float64 `json:"material_cost"`
	SalaryCost   float64 `json:"salary_cost"`
	OverheadCost float64 `json:"overhead_cost"`
	TotalCost    float64 `json:"total_cost"`
	EURCost      float64 `json:"eur_cost"`

	UnitCost              float64 `json:"unit_cost"`
	GrossMarginPct        float64 `json:"gross_margin_pct"`
	OverheadAbsorptionPct float64 `json:"overhead_absorption_pct"` // indirect share of total cost
	FXExposurePct         float64 `json:"fx_exposure_pct"`         // EUR-origin share of total cost
}

// CompositionRow is the cost mix for one period across all products.
type CompositionRow struct {
	PeriodID    string  `json:"period_id"`
	MaterialPct float64 `json:"material_pct"`
	SalaryPct   float64 `json:"salary_pct"`
	OverheadPct float64 `json:"overhead_pct"`
	Total       float64 `json:"total"`
}

// LedgerIntensityRow tracks one ledger's posting level and its
// period-over-period movement.
type LedgerIntensityRow struct {
	LedgerID  string  `json:"ledger_id"`
	PeriodID  string  `json:"period_id"`
	Amount    float64 `json:"amount"` // base currency, after scenario scaling
	ChangePct float64 `json:"change_pct"`
}

// TornadoEntry is one driver's sensitivity band: the weighted-average unit
// cost when the driver is bumped down and up by the probe percentage.
type TornadoEntry struct {
	Driver   string  `json:"driver"`
	Base     float64 `json:"base"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	SwingAbs float64 `json:"swing_abs"` // max |low-base|, |high-base|
}
