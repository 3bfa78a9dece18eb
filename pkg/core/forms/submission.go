package forms

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Submission statuses. A draft is an incomplete save: it persists whatever
// the user entered and can be completed later.
const (
	StatusDraft    = "draft"
	StatusComplete = "complete"
)

// Submission is the REST payload assembled from a validated form.
type Submission struct {
	ID          string              `json:"id"`
	Entity      string              `json:"entity"`
	Status      string              `json:"status"`
	Values      Values              `json:"values"`
	RelationOps map[string]ChildOps `json:"relation_ops,omitempty"` // field path -> sync plan
	SavedAt     time.Time           `json:"saved_at"`
}

// BuildOptions parameterizes submission assembly.
type BuildOptions struct {
	ID    string // empty for a new record
	Draft bool   // incomplete save

	// ExistingChildren maps a relation field path ("section.field") to the
	// child rows the backend currently holds, for diffing.
	ExistingChildren map[string][]map[string]interface{}

	// Parents maps entity ids to parent ids for the hierarchy cycle check.
	Parents map[string]string
}

// BuildSubmission validates the values against the schema and assembles the
// persistable payload: status, identifier, relation sync plans, and the
// hierarchy check for entities with a parent field. Validation failures come
// back as a non-nil error slice; the submission is only returned when clean.
func BuildSubmission(schema *Schema, values Values, opts BuildOptions) (*Submission, []FieldError, error) {
	mode := ModeComplete
	if opts.Draft {
		mode = ModeDraft
	}

	if errs := Validate(schema, values, mode); len(errs) > 0 {
		return nil, errs, nil
	}

	sub := &Submission{
		ID:      opts.ID,
		Entity:  schema.Entity,
		Status:  StatusComplete,
		Values:  values,
		SavedAt: time.Now().UTC(),
	}
	if opts.Draft {
		sub.Status = StatusDraft
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	// Hierarchy: the parent field lives in the first section.
	if schema.ParentField != "" {
		if head, ok := values[schema.Sections[0].Key].(map[string]interface{}); ok {
			if parent, ok := head[schema.ParentField].(string); ok && parent != "" {
				if err := CheckHierarchy(sub.ID, parent, opts.Parents); err != nil {
					return nil, []FieldError{{
						Path:    schema.Sections[0].Key + "." + schema.ParentField,
						Message: err.Error(),
					}}, nil
				}
			}
		}
	}

	// Relation sync plans for cardinality-many fields.
	for _, sec := range schema.Sections {
		if sec.Repeating {
			continue // relations inside repeating sections sync per parent row, out of scope here
		}
		obj, _ := values[sec.Key].(map[string]interface{})
		if obj == nil {
			continue
		}
		for _, f := range sec.Fields {
			if f.Type != FieldRelation || f.Relation.Cardinality != "many" {
				continue
			}
			raw, ok := obj[f.Key].([]interface{})
			if !ok {
				continue
			}
			submitted := make([]map[string]interface{}, 0, len(raw))
			for _, item := range raw {
				if m, ok := item.(map[string]interface{}); ok {
					submitted = append(submitted, m)
				}
			}
			path := sec.Key + "." + f.Key
			ops, err := DiffChildren(f.Relation, opts.ExistingChildren[path], submitted)
			if err != nil {
				return nil, nil, fmt.Errorf("relation sync for %s: %w", path, err)
			}
			if !ops.Empty() {
				if sub.RelationOps == nil {
					sub.RelationOps = make(map[string]ChildOps)
				}
				sub.RelationOps[path] = ops
			}
		}
	}

	return sub, nil, nil
}

// CompleteDraft re-validates a stored draft's values in complete mode and
// flips its status. The draft keeps its identifier so the upsert overwrites
// in place.
func CompleteDraft(schema *Schema, draft *Submission) (*Submission, []FieldError) {
	if errs := Validate(schema, draft.Values, ModeComplete); len(errs) > 0 {
		return nil, errs
	}
	done := *draft
	done.Status = StatusComplete
	done.SavedAt = time.Now().UTC()
	return &done, nil
}
