package costmodel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cost_intelligence/pkg/core/dataset"
)

func TestHandleReport(t *testing.T) {
	if err := InitHandler(dataset.Seed()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/costmodel/report", strings.NewReader(`{"scenario_id":"base"}`))
	w := httptest.NewRecorder()
	HandleReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ReportResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if resp.Scenario.ID != "base" {
		t.Errorf("Expected base scenario, got %s", resp.Scenario.ID)
	}
	if len(resp.Order) != 6 {
		t.Errorf("Expected 6 centers in settlement order, got %v", resp.Order)
	}
	// 4 periods x 3 sellable products.
	if len(resp.KPIs) != 12 {
		t.Errorf("Expected 12 KPI rows, got %d", len(resp.KPIs))
	}
	if len(resp.Tornado) != 4 {
		t.Errorf("Expected 4 tornado drivers, got %d", len(resp.Tornado))
	}
	for _, c := range resp.Conservation {
		if !c.IsBalanced {
			t.Errorf("Period %s not balanced: diff %g", c.PeriodID, c.Difference)
		}
	}
}

func TestHandleReportUnknownScenario(t *testing.T) {
	if err := InitHandler(dataset.Seed()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/costmodel/report", strings.NewReader(`{"scenario_id":"nope"}`))
	w := httptest.NewRecorder()
	HandleReport(w, req)

	// Unknown scenario is the caller's mistake, not a server failure.
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestHandleScenarios(t *testing.T) {
	if err := InitHandler(dataset.Seed()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/costmodel/scenarios", nil)
	w := httptest.NewRecorder()
	HandleScenarios(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var scenarios []dataset.Scenario
	if err := json.NewDecoder(w.Body).Decode(&scenarios); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if len(scenarios) != 4 {
		t.Errorf("Expected 4 scenarios, got %d", len(scenarios))
	}
}
