package formbuilder

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cost_intelligence/pkg/core/forms"
	"cost_intelligence/pkg/core/store"
)

var registry *forms.Registry
var submissions *store.SubmissionRepo

// InitHandler binds the handlers to a schema registry.
func InitHandler(reg *forms.Registry) {
	registry = reg
	submissions = store.NewSubmissionRepo()
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleSchema serves one entity's schema, or the entity list without a
// query parameter.
func HandleSchema(w http.ResponseWriter, r *http.Request) {
	cors(w)
	w.Header().Set("Content-Type", "application/json")

	entity := r.URL.Query().Get("entity")
	if entity == "" {
		json.NewEncoder(w).Encode(map[string]interface{}{"entities": registry.Entities()})
		return
	}
	schema := registry.Get(entity)
	if schema == nil {
		http.Error(w, fmt.Sprintf("unknown entity: %s", entity), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(schema)
}

type ValidateRequest struct {
	Entity string       `json:"entity"`
	Values forms.Values `json:"values"`
	Draft  bool         `json:"draft"`
}

type ValidateResponse struct {
	Valid  bool               `json:"valid"`
	Errors []forms.FieldError `json:"errors,omitempty"`
}

// HandleValidate runs a validation pass without persisting anything. The
// form UI calls this on change for server-side validation parity.
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	schema := registry.Get(req.Entity)
	if schema == nil {
		http.Error(w, fmt.Sprintf("unknown entity: %s", req.Entity), http.StatusNotFound)
		return
	}

	mode := forms.ModeComplete
	if req.Draft {
		mode = forms.ModeDraft
	}
	errs := forms.Validate(schema, req.Values, mode)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

type SubmitRequest struct {
	Entity           string                              `json:"entity"`
	ID               string                              `json:"id,omitempty"`
	Draft            bool                                `json:"draft"`
	Values           forms.Values                        `json:"values"`
	ExistingChildren map[string][]map[string]interface{} `json:"existing_children,omitempty"`
	Parents          map[string]string                   `json:"parents,omitempty"`
}

type SubmitResponse struct {
	Submission *forms.Submission  `json:"submission,omitempty"`
	Errors     []forms.FieldError `json:"errors,omitempty"`
	Persisted  bool               `json:"persisted"`
}

// HandleSubmit validates, assembles, and persists a submission. Draft
// submissions implement the incomplete-save workflow: they upsert in place
// and can be completed later.
func HandleSubmit(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	schema := registry.Get(req.Entity)
	if schema == nil {
		http.Error(w, fmt.Sprintf("unknown entity: %s", req.Entity), http.StatusNotFound)
		return
	}

	sub, errs, err := forms.BuildSubmission(schema, req.Values, forms.BuildOptions{
		ID:               req.ID,
		Draft:            req.Draft,
		ExistingChildren: req.ExistingChildren,
		Parents:          req.Parents,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := SubmitResponse{Submission: sub, Errors: errs}
	if sub != nil && store.Ready() {
		if err := submissions.Save(r.Context(), sub); err != nil {
			fmt.Printf("[WARNING] Failed to persist submission %s: %v\n", sub.ID, err)
		} else {
			resp.Persisted = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(resp)
}

// HandleDrafts lists stored drafts for an entity.
func HandleDrafts(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if !store.Ready() {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	entity := r.URL.Query().Get("entity")
	if entity == "" {
		http.Error(w, "entity query parameter required", http.StatusBadRequest)
		return
	}
	drafts, err := submissions.ListDrafts(r.Context(), entity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(drafts)
}

type CompleteRequest struct {
	ID string `json:"id"`
}

// HandleComplete re-validates a stored draft in complete mode and flips its
// status when it passes.
func HandleComplete(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if !store.Ready() {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := submissions.Load(r.Context(), req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if draft.Status != forms.StatusDraft {
		http.Error(w, fmt.Sprintf("submission %s is not a draft", req.ID), http.StatusConflict)
		return
	}
	schema := registry.Get(draft.Entity)
	if schema == nil {
		http.Error(w, fmt.Sprintf("schema for entity %s no longer registered", draft.Entity), http.StatusConflict)
		return
	}

	done, errs := forms.CompleteDraft(schema, draft)
	w.Header().Set("Content-Type", "application/json")
	if len(errs) > 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(SubmitResponse{Errors: errs})
		return
	}

	resp := SubmitResponse{Submission: done}
	if err := submissions.Save(r.Context(), done); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.Persisted = true
	json.NewEncoder(w).Encode(resp)
}

// HandleDiscard deletes a stored draft. Completed submissions are records,
// not drafts, and cannot be discarded here.
func HandleDiscard(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if !store.Ready() {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft, err := submissions.Load(r.Context(), req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if draft.Status != forms.StatusDraft {
		http.Error(w, fmt.Sprintf("submission %s is not a draft", req.ID), http.StatusConflict)
		return
	}
	if err := submissions.Delete(r.Context(), req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": req.ID})
}
