package insight

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cost_intelligence/pkg/core/agent"
	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
	coreinsight "cost_intelligence/pkg/core/insight"
	"cost_intelligence/pkg/core/kpi"
)

var ds *dataset.Dataset
var generator *coreinsight.Generator

// InitHandler wires the narrative endpoint to the dataset and the provider
// manager.
func InitHandler(d *dataset.Dataset, mgr *agent.Manager) {
	ds = d
	generator = coreinsight.NewGenerator(mgr)
}

type NarrativeRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// HandleNarrative generates management commentary for one scenario's KPIs.
func HandleNarrative(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req NarrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ScenarioID == "" {
		req.ScenarioID = "base"
	}

	scenario := ds.Scenario(req.ScenarioID)
	if scenario == nil {
		http.Error(w, fmt.Sprintf("unknown scenario: %s", req.ScenarioID), http.StatusNotFound)
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

	narrative := generator.Generate(r.Context(), scenario.Name, kpis, tornado)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(narrative)
}
