package formbuilder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cost_intelligence/pkg/core/forms"
)

func setupHandlers(t *testing.T) {
	t.Helper()
	reg := forms.NewRegistry()
	reg.Register(&forms.Schema{
		Entity: "supplier",
		Label:  "Supplier",
		Sections: []forms.Section{
			{
				Key:   "general",
				Title: "General",
				Fields: []forms.Field{
					{Key: "id", Label: "Code", Type: forms.FieldText, Required: true},
					{Key: "name", Label: "Name", Type: forms.FieldText, Required: true},
				},
			},
		},
	})
	InitHandler(reg)
}

func TestHandleSchema(t *testing.T) {
	setupHandlers(t)

	// Entity list without a query parameter.
	w := httptest.NewRecorder()
	HandleSchema(w, httptest.NewRequest("GET", "/api/forms/schema", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "supplier") {
		t.Errorf("Expected entity list with supplier, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	HandleSchema(w, httptest.NewRequest("GET", "/api/forms/schema?entity=nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown entity, got %d", w.Code)
	}
}

func TestHandleValidate(t *testing.T) {
	setupHandlers(t)

	body := `{"entity":"supplier","values":{"general":{"id":"S1","name":"Acme"}}}`
	w := httptest.NewRecorder()
	HandleValidate(w, httptest.NewRequest("POST", "/api/forms/validate", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp ValidateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if !resp.Valid {
		t.Errorf("Expected valid submission, got errors %v", resp.Errors)
	}

	// Missing required field fails in complete mode, passes as a draft.
	body = `{"entity":"supplier","values":{"general":{"id":"S1"}}}`
	w = httptest.NewRecorder()
	HandleValidate(w, httptest.NewRequest("POST", "/api/forms/validate", strings.NewReader(body)))
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Valid {
		t.Error("Expected invalid for missing required field")
	}

	body = `{"entity":"supplier","draft":true,"values":{"general":{"id":"S1"}}}`
	w = httptest.NewRecorder()
	HandleValidate(w, httptest.NewRequest("POST", "/api/forms/validate", strings.NewReader(body)))
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Valid {
		t.Errorf("Expected draft to pass, got errors %v", resp.Errors)
	}
}

func TestHandleSubmit(t *testing.T) {
	setupHandlers(t)

	body := `{"entity":"supplier","values":{"general":{"id":"S1","name":"Acme"}}}`
	w := httptest.NewRecorder()
	HandleSubmit(w, httptest.NewRequest("POST", "/api/forms/submit", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if resp.Submission == nil || resp.Submission.ID == "" {
		t.Fatalf("Expected assembled submission, got %+v", resp)
	}
	if resp.Submission.Status != forms.StatusComplete {
		t.Errorf("Expected complete status, got %s", resp.Submission.Status)
	}
	// No database in unit tests.
	if resp.Persisted {
		t.Error("Expected compute-only mode without a store")
	}

	// Validation failures come back as 422 with field errors.
	body = `{"entity":"supplier","values":{"general":{"id":"S1"}}}`
	w = httptest.NewRecorder()
	HandleSubmit(w, httptest.NewRequest("POST", "/api/forms/submit", strings.NewReader(body)))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	resp = SubmitResponse{}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Errors) == 0 || resp.Submission != nil {
		t.Errorf("Expected field errors and no submission, got %+v", resp)
	}
}

func TestDraftEndpointsWithoutStore(t *testing.T) {
	setupHandlers(t)

	// The draft workflow needs persistence; without it the endpoints answer
	// 503 instead of panicking.
	w := httptest.NewRecorder()
	HandleDrafts(w, httptest.NewRequest("GET", "/api/forms/drafts?entity=supplier", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from drafts list, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	HandleComplete(w, httptest.NewRequest("POST", "/api/forms/draft/complete", strings.NewReader(`{"id":"x"}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from complete, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	HandleDiscard(w, httptest.NewRequest("POST", "/api/forms/draft/discard", strings.NewReader(`{"id":"x"}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from discard, got %d", w.Code)
	}
}
