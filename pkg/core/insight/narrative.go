// Package insight turns KPI rows into a short management narrative. The
// narrative is generated by an LLM when a provider is configured and falls
// back to a deterministic summary otherwise, so the endpoint always answers.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cost_intelligence/pkg/core/agent"
	"cost_intelligence/pkg/core/kpi"
	"cost_intelligence/pkg/core/utils"
)

// Narrative is the structured commentary the dashboard shows next to the
// charts.
type Narrative struct {
	Headline string   `json:"headline"`
	Drivers  []string `json:"drivers"`
	Risks    []string `json:"risks"`
	Source   string   `json:"source"` // "llm" or "fallback"
}

// Generator produces narratives over KPI snapshots.
type Generator struct {
	manager *agent.Manager
}

// NewGenerator wires the generator to the provider manager (nil disables the
// LLM path entirely).
func NewGenerator(mgr *agent.Manager) *Generator {
	return &Generator{manager: mgr}
}

const systemPrompt = `You are a cost accountant summarizing product costing KPIs.
Respond with JSON only: {"headline": string, "drivers": [string], "risks": [string]}.
Be specific: name products, percentages, and periods from the data.`

// Generate builds the narrative for a KPI snapshot.
func (g *Generator) Generate(ctx context.Context, scenarioName string, kpis []kpi.ProductKPI, tornado []kpi.TornadoEntry) *Narrative {
	if g.manager != nil {
		if n, err := g.generateLLM(ctx, scenarioName, kpis, tornado); err == nil {
			return n
		} else {
			fmt.Printf("[INSIGHT] LLM narrative failed, using fallback: %v\n", err)
		}
	}
	return fallbackNarrative(scenarioName, kpis, tornado)
}

func (g *Generator) generateLLM(ctx context.Context, scenarioName string, kpis []kpi.ProductKPI, tornado []kpi.TornadoEntry) (*Narrative, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s\n\nKPI rows (period, product, unit cost, gross margin %%, overhead absorption %%, FX exposure %%):\n", scenarioName)
	for _, k := range kpis {
		fmt.Fprintf(&b, "%s %s %.2f %.1f %.1f %.1f\n",
			k.PeriodID, k.ProductID, k.UnitCost, k.GrossMarginPct, k.OverheadAbsorptionPct, k.FXExposurePct)
	}
	if len(tornado) > 0 {
		b.WriteString("\nTop sensitivity drivers (driver, swing in unit cost):\n")
		for _, t := range tornado {
			fmt.Fprintf(&b, "%s %.2f\n", t.Driver, t.SwingAbs)
		}
	}

	provider := g.manager.GetProvider("insight_narrative")
	raw, err := provider.GenerateResponse(ctx, b.String(), systemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	// Model output can be sloppy JSON; repair before giving up.
	var n Narrative
	if _, err := utils.SmartParse(utils.CleanMarkdown(raw), &n); err != nil {
		return nil, fmt.Errorf("narrative parse failed: %w", err)
	}
	if n.Headline == "" {
		return nil, fmt.Errorf("narrative missing headline")
	}
	n.Source = "llm"
	return &n, nil
}

// fallbackNarrative derives a deterministic summary: the costliest product,
// the margin floor, and the dominant sensitivity driver.
func fallbackNarrative(scenarioName string, kpis []kpi.ProductKPI, tornado []kpi.TornadoEntry) *Narrative {
	n := &Narrative{Source: "fallback"}
	if len(kpis) == 0 {
		n.Headline = fmt.Sprintf("No KPI data available for scenario %s.", scenarioName)
		return n
	}

	sorted := make([]kpi.ProductKPI, len(kpis))
	copy(sorted, kpis)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UnitCost > sorted[j].UnitCost })
	top := sorted[0]

	minMargin := kpis[0]
	for _, k := range kpis {
		if k.GrossMarginPct < minMargin.GrossMarginPct {
			minMargin = k
		}
	}

	n.Headline = fmt.Sprintf("Under %s, %s carries the highest unit cost (%.2f in %s).",
		scenarioName, top.ProductID, top.UnitCost, top.PeriodID)
	n.Drivers = append(n.Drivers, fmt.Sprintf("%s overhead absorption at %.1f%% in %s",
		top.ProductID, top.OverheadAbsorptionPct, top.PeriodID))
	if len(tornado) > 0 {
		n.Drivers = append(n.Drivers, fmt.Sprintf("%s is the dominant sensitivity (swing %.2f per unit)",
			tornado[0].Driver, tornado[0].SwingAbs))
	}
	n.Risks = append(n.Risks, fmt.Sprintf("%s gross margin at %.1f%% in %s is the thinnest in the portfolio",
		minMargin.ProductID, minMargin.GrossMarginPct, minMargin.PeriodID))
	for _, k := range kpis {
		if k.FXExposurePct > 20 {
			n.Risks = append(n.Risks, fmt.Sprintf("%s FX exposure at %.1f%% in %s exceeds the 20%% watch level",
				k.ProductID, k.FXExposurePct, k.PeriodID))
			break
		}
	}
	return n
}
