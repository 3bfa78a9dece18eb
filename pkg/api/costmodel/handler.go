package costmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/kpi"
	"cost_intelligence/pkg/core/report"
	"cost_intelligence/pkg/core/store"
	"cost_intelligence/pkg/core/validate"
)

var ds *dataset.Dataset
var scenarioRepo *store.ScenarioRepo

// InitHandler binds the handlers to a dataset. The dataset is validated once
// here so every request can assume clean facts.
func InitHandler(d *dataset.Dataset) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("dataset validation failed: %w", err)
	}
	ds = d
	scenarioRepo = store.NewScenarioRepo()
	return nil
}

type ReportRequest struct {
	ScenarioID string  `json:"scenario_id"`
	ProbePct   float64 `json:"probe_pct,omitempty"` // tornado bump, default 10
}

type ReportResponse struct {
	Scenario     dataset.Scenario             `json:"scenario"`
	Order        []string                     `json:"settlement_order"`
	KPIs         []kpi.ProductKPI             `json:"kpis"`
	Volatility   map[string]float64           `json:"volatility"`
	Composition  []kpi.CompositionRow         `json:"composition"`
	Ledgers      []kpi.LedgerIntensityRow     `json:"ledger_intensity"`
	Tornado      []kpi.TornadoEntry           `json:"tornado"`
	Conservation []*validate.ConservationCheck `json:"conservation"`
}

// HandleScenarios lists the configured what-if scenarios.
func HandleScenarios(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ds.Scenarios)
}

// HandleReport runs the allocation for one scenario and returns the full
// dashboard view-model.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ScenarioID == "" {
		req.ScenarioID = "base"
	}
	if req.ProbePct == 0 {
		req.ProbePct = 10
	}
	if ds.Scenario(req.ScenarioID) == nil {
		http.Error(w, fmt.Sprintf("unknown scenario: %s", req.ScenarioID), http.StatusNotFound)
		return
	}

	resp, err := buildReport(r.Context(), req.ScenarioID, req.ProbePct)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleReportHTML renders the markdown report for browsers.
func HandleReportHTML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	scenarioID := r.URL.Query().Get("scenario")
	if scenarioID == "" {
		scenarioID = "base"
	}

	scenario := ds.Scenario(scenarioID)
	if scenario == nil {
		http.Error(w, fmt.Sprintf("unknown scenario: %s", scenarioID), http.StatusNotFound)
		return
	}

	res, err := allocation.Run(ds, *scenario)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	kpis := kpi.ProductKPIs(ds, res, *scenario)
	tornado, err := kpi.Tornado(ds, *scenario, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := report.BuildHTML(report.Input{
		Dataset:     ds,
		Scenario:    *scenario,
		Result:      res,
		KPIs:        kpis,
		Composition: kpi.CompositionByPeriod(ds, res),
		Tornado:     tornado,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func buildReport(ctx context.Context, scenarioID string, probePct float64) (*ReportResponse, error) {
	scenario := ds.Scenario(scenarioID)
	if scenario == nil {
		return nil, fmt.Errorf("unknown scenario: %s", scenarioID)
	}

	// Serve the allocation from the cache when persistence is up; cache
	// failures are logged, not fatal, so the dashboard works without it.
	var res *allocation.Result
	if store.Ready() {
		if cached, err := scenarioRepo.Load(ctx, scenarioID); err == nil {
			res = cached
		}
	}
	if res == nil {
		var err error
		res, err = allocation.Run(ds, *scenario)
		if err != nil {
			return nil, err
		}
		if store.Ready() {
			if err := scenarioRepo.Save(ctx, res); err != nil {
				fmt.Printf("[WARNING] Failed to cache scenario run: %v\n", err)
			}
		}
	}

	kpis := kpi.ProductKPIs(ds, res, *scenario)
	tornado, err := kpi.Tornado(ds, *scenario, probePct)
	if err != nil {
		return nil, err
	}

	resp := &ReportResponse{
		Scenario:    *scenario,
		Order:       res.Order,
		KPIs:        kpis,
		Volatility:  kpi.VolatilityIndex(kpis),
		Composition: kpi.CompositionByPeriod(ds, res),
		Ledgers:     kpi.LedgerGrowthIntensity(ds, *scenario),
		Tornado:     tornado,
	}
	for _, t := range res.Totals {
		resp.Conservation = append(resp.Conservation,
			validate.CheckConservation(t.PeriodID, t.Input, t.Allocated, t.Unabsorbed, 1e-6))
	}
	return resp, nil
}
