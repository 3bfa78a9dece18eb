package kpi

import (
	"sort"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/validate"
)

// sellableParent follows the BOM parent chain up to a sellable product. A
// subassembly's cost rolls into whatever it is built into.
func sellableParent(ds *dataset.Dataset, productID string) string {
	byID := make(map[string]dataset.Product, len(ds.Products))
	for _, p := range ds.Products {
		byID[p.ID] = p
	}
	id := productID
	for i := 0; i < len(ds.Products); i++ { // bounded walk, hierarchy is shallow
		p, ok := byID[id]
		if !ok || p.Sellable || p.ParentID == "" {
			return id
		}
		id = p.ParentID
	}
	return id
}

// ProductKPIs aggregates allocated rows into one KPI row per period per
// sellable product. Scenario volume shift applies here: the engine moves
// cost, the KPI layer divides by units.
func ProductKPIs(ds *dataset.Dataset, res *allocation.Result, scenario dataset.Scenario) []ProductKPI {
	volumeScale := 1 + scenario.VolumeShiftPct/100

	type key struct{ period, product string }
	acc := make(map[key]*ProductKPI)

	get := func(periodID, productID string) *ProductKPI {
		k := key{periodID, productID}
		row, ok := acc[k]
		if !ok {
			row = &ProductKPI{PeriodID: periodID, ProductID: productID}
			acc[k] = row
		}
		return row
	}

	for _, r := range res.Rows {
		target := sellableParent(ds, r.ProductID)
		row := get(r.PeriodID, target)
		switch r.Source {
		case allocation.SourceMaterial:
			row.MaterialCost += r.Amount
		case allocation.SourceSalary:
			row.SalaryCost += r.Amount
		case allocation.SourceOverhead:
			row.OverheadCost += r.Amount
		}
		row.TotalCost += r.Amount
		row.EURCost += r.EURAmount
	}

	out := make([]ProductKPI, 0, len(acc))
	for _, row := range acc {
		row.Volume = ds.Volume(row.PeriodID, row.ProductID) * volumeScale
		row.Revenue = ds.Price(row.PeriodID, row.ProductID) * row.Volume

		if row.Volume > 0 {
			row.UnitCost = row.TotalCost / row.Volume
		}
		if row.Revenue > 0 {
			row.GrossMarginPct = (row.Revenue - row.TotalCost) / row.Revenue * 100
		}
		if row.TotalCost > 0 {
			indirect := row.SalaryCost + row.OverheadCost
			row.OverheadAbsorptionPct = indirect / row.TotalCost * 100
			row.FXExposurePct = row.EURCost / row.TotalCost * 100
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodID != out[j].PeriodID {
			return out[i].PeriodID < out[j].PeriodID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// VolatilityIndex computes the cost volatility index per product: the
// coefficient of variation of unit cost across periods.
func VolatilityIndex(kpis []ProductKPI) map[string]float64 {
	series := make(map[string][]float64)
	for _, k := range kpis {
		if k.UnitCost > 0 {
			series[k.ProductID] = append(series[k.ProductID], k.UnitCost)
		}
	}
	out := make(map[string]float64, len(series))
	for product, values := range series {
		out[product] = validate.Volatility(values)
	}
	return out
}

// WeightedUnitCost returns the volume-weighted average unit cost across all
// KPI rows. This is the single scalar the tornado analysis perturbs.
func WeightedUnitCost(kpis []ProductKPI) float64 {
	var cost, units float64
	for _, k := range kpis {
		cost += k.TotalCost
		units += k.Volume
	}
	if units == 0 {
		return 0
	}
	return cost / units
}
