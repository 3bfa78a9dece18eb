package forms

import (
	"fmt"
	"regexp"
	"time"
)

// Mode selects how strict a validation pass is. Draft mode backs the
// incomplete-save workflow: required fields and minimum occurrences may be
// missing, but whatever is present must still be well-typed.
type Mode int

const (
	ModeComplete Mode = iota
	ModeDraft
)

// FieldError is one validation failure, addressed by path so the caller can
// attach it to the right control (e.g. "lines[2].quantity").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Path, e.Message) }

// Values is a decoded submission body: section key -> object, or section
// key -> list of objects for repeating sections.
type Values map[string]interface{}

// Validate walks the schema over the submitted values and collects every
// field error. A nil return means the submission passed.
func Validate(schema *Schema, values Values, mode Mode) []FieldError {
	var errs []FieldError

	for _, sec := range schema.Sections {
		raw, present := values[sec.Key]

		if sec.Repeating {
			instances, ok := rawList(raw)
			if present && !ok {
				errs = append(errs, FieldError{Path: sec.Key, Message: "expected a list of section instances"})
				continue
			}
			if mode == ModeComplete && len(instances) < sec.MinOccurs {
				errs = append(errs, FieldError{
					Path:    sec.Key,
					Message: fmt.Sprintf("requires at least %d entries, got %d", sec.MinOccurs, len(instances)),
				})
			}
			// Upper bound holds even for drafts: the payload is oversized
			// either way.
			if sec.MaxOccurs > 0 && len(instances) > sec.MaxOccurs {
				errs = append(errs, FieldError{
					Path:    sec.Key,
					Message: fmt.Sprintf("allows at most %d entries, got %d", sec.MaxOccurs, len(instances)),
				})
			}
			for i, inst := range instances {
				obj, ok := inst.(map[string]interface{})
				if !ok {
					errs = append(errs, FieldError{Path: fmt.Sprintf("%s[%d]", sec.Key, i), Message: "expected an object"})
					continue
				}
				errs = append(errs, validateFields(fmt.Sprintf("%s[%d]", sec.Key, i), sec.Fields, obj, mode)...)
			}
			continue
		}

		obj, ok := raw.(map[string]interface{})
		if present && !ok {
			errs = append(errs, FieldError{Path: sec.Key, Message: "expected an object"})
			continue
		}
		if obj == nil {
			obj = map[string]interface{}{}
		}
		errs = append(errs, validateFields(sec.Key, sec.Fields, obj, mode)...)
	}

	return errs
}

func rawList(raw interface{}) ([]interface{}, bool) {
	if raw == nil {
		return nil, true
	}
	list, ok := raw.([]interface{})
	return list, ok
}

func validateFields(base string, fields []Field, obj map[string]interface{}, mode Mode) []FieldError {
	var errs []FieldError
	for _, f := range fields {
		path := base + "." + f.Key
		val, present := obj[f.Key]

		if !present || val == nil || val == "" {
			if f.Required && mode == ModeComplete {
				errs = append(errs, FieldError{Path: path, Message: "is required"})
			}
			continue
		}

		switch f.Type {
		case FieldText:
			s, ok := val.(string)
			if !ok {
				errs = append(errs, FieldError{Path: path, Message: "expected text"})
				continue
			}
			if f.MaxLength > 0 && len(s) > f.MaxLength {
				errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("exceeds max length %d", f.MaxLength)})
			}
			if f.Pattern != "" {
				re, err := regexp.Compile(f.Pattern)
				if err != nil {
					errs = append(errs, FieldError{Path: path, Message: "schema pattern is invalid"})
				} else if !re.MatchString(s) {
					errs = append(errs, FieldError{Path: path, Message: "does not match required format"})
				}
			}

		case FieldNumber:
			n, ok := asNumber(val)
			if !ok {
				errs = append(errs, FieldError{Path: path, Message: "expected a number"})
				continue
			}
			if f.Min != nil && n < *f.Min {
				errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("must be >= %g", *f.Min)})
			}
			if f.Max != nil && n > *f.Max {
				errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("must be <= %g", *f.Max)})
			}

		case FieldBool:
			if _, ok := val.(bool); !ok {
				errs = append(errs, FieldError{Path: path, Message: "expected true or false"})
			}

		case FieldDate:
			s, ok := val.(string)
			if !ok {
				errs = append(errs, FieldError{Path: path, Message: "expected a date string"})
				continue
			}
			if _, err := time.Parse("2006-01-02", s); err != nil {
				errs = append(errs, FieldError{Path: path, Message: "expected date in YYYY-MM-DD format"})
			}

		case FieldSelect:
			s, ok := val.(string)
			if !ok {
				errs = append(errs, FieldError{Path: path, Message: "expected a selection"})
				continue
			}
			found := false
			for _, opt := range f.Options {
				if opt == s {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, FieldError{Path: path, Message: fmt.Sprintf("%q is not a valid option", s)})
			}

		case FieldRelation:
			errs = append(errs, validateRelation(path, f, val)...)
		}
	}
	return errs
}

func validateRelation(path string, f Field, val interface{}) []FieldError {
	if f.Relation.Cardinality == "one" {
		switch val.(type) {
		case string, map[string]interface{}:
			return nil
		default:
			return []FieldError{{Path: path, Message: "expected a reference id or object"}}
		}
	}

	// cardinality "many": a list of child objects
	list, ok := val.([]interface{})
	if !ok {
		return []FieldError{{Path: path, Message: "expected a list of related records"}}
	}
	var errs []FieldError
	for i, item := range list {
		if _, ok := item.(map[string]interface{}); !ok {
			errs = append(errs, FieldError{Path: fmt.Sprintf("%s[%d]", path, i), Message: "expected an object"})
		}
	}
	return errs
}

func asNumber(val interface{}) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
