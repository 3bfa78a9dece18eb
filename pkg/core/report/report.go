// Package report renders an allocation run into a markdown cost report: KPI
// table, composition mix, conservation audit, and the tornado ranking.
package report

import (
	"fmt"
	"sort"
	"strings"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/kpi"
	"cost_intelligence/pkg/core/utils"
	"cost_intelligence/pkg/core/validate"
)

// Input bundles everything a report needs.
type Input struct {
	Dataset     *dataset.Dataset
	Scenario    dataset.Scenario
	Result      *allocation.Result
	KPIs        []kpi.ProductKPI
	Composition []kpi.CompositionRow
	Tornado     []kpi.TornadoEntry
}

// BuildMarkdown renders the cost report as markdown.
func BuildMarkdown(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cost Intelligence Report: %s\n\n", in.Scenario.Name)
	fmt.Fprintf(&b, "Scenario parameters: FX shock %+.1f%%, ledger growth %+.1f%%, salary growth %+.1f%%, volume shift %+.1f%%\n\n",
		in.Scenario.FXShockPct, in.Scenario.LedgerGrowthPct, in.Scenario.SalaryGrowthPct, in.Scenario.VolumeShiftPct)

	// KPI table
	b.WriteString("## Product KPIs\n\n")
	b.WriteString("| Period | Product | Volume | Unit Cost | Gross Margin % | Overhead Absorption % | FX Exposure % |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, k := range in.KPIs {
		fmt.Fprintf(&b, "| %s | %s | %.0f | %.2f | %.1f | %.1f | %.1f |\n",
			k.PeriodID, k.ProductID, k.Volume, k.UnitCost, k.GrossMarginPct, k.OverheadAbsorptionPct, k.FXExposurePct)
	}
	b.WriteString("\n")

	// Volatility
	vol := kpi.VolatilityIndex(in.KPIs)
	if len(vol) > 0 {
		b.WriteString("## Cost Volatility Index\n\n")
		b.WriteString("| Product | Volatility % |\n|---|---:|\n")
		products := make([]string, 0, len(vol))
		for p := range vol {
			products = append(products, p)
		}
		sort.Strings(products)
		for _, p := range products {
			fmt.Fprintf(&b, "| %s | %.2f |\n", p, vol[p])
		}
		b.WriteString("\n")
	}

	// Composition
	if len(in.Composition) > 0 {
		b.WriteString("## Cost Composition by Period\n\n")
		b.WriteString("| Period | Material % | Salary % | Overhead % | Total |\n|---|---:|---:|---:|---:|\n")
		for _, c := range in.Composition {
			fmt.Fprintf(&b, "| %s | %.1f | %.1f | %.1f | %.0f |\n",
				c.PeriodID, c.MaterialPct, c.SalaryPct, c.OverheadPct, c.Total)
		}
		b.WriteString("\n")
	}

	// Tornado
	if len(in.Tornado) > 0 {
		b.WriteString("## Unit Cost Sensitivity (Tornado)\n\n")
		b.WriteString("| Driver | Low | Base | High | Swing |\n|---|---:|---:|---:|---:|\n")
		for _, t := range in.Tornado {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f |\n", t.Driver, t.Low, t.Base, t.High, t.SwingAbs)
		}
		b.WriteString("\n")
	}

	// Conservation audit
	b.WriteString("## Allocation Audit\n\n")
	b.WriteString("| Period | Input | Allocated | Unabsorbed | Balanced |\n|---|---:|---:|---:|---|\n")
	for _, t := range in.Result.Totals {
		check := validate.CheckConservation(t.PeriodID, t.Input, t.Allocated, t.Unabsorbed, 1e-6)
		status := "yes"
		if !check.IsBalanced {
			status = fmt.Sprintf("NO (diff %.4f)", check.Difference)
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %s |\n", t.PeriodID, t.Input, t.Allocated, t.Unabsorbed, status)
	}
	fmt.Fprintf(&b, "\nSettlement order: %s\n", strings.Join(in.Result.Order, " -> "))

	return b.String()
}

// BuildHTML renders the markdown report to HTML.
func BuildHTML(in Input) (string, error) {
	return utils.RenderMarkdownHTML(BuildMarkdown(in))
}
