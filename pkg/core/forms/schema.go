// Package forms implements the schema-driven form engine: entity form schemas
// are authored as HJSON documents, interpreted at runtime to validate dynamic
// submissions (including repeating sections, relation sub-entities, and
// hierarchical parents), and assembled into REST payloads. Rendering is the
// presentation layer's job; this package owns interpretation and validation.
package forms

import "fmt"

// FieldType enumerates the value types the engine understands.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldBool     FieldType = "bool"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldRelation FieldType = "relation"
)

// RelationSpec describes a relation field: the sub-entity it points at and
// how its rows are keyed.
type RelationSpec struct {
	Entity      string `json:"entity"`
	Cardinality string `json:"cardinality"` // "one" or "many"
	KeyField    string `json:"key_field"`   // field identifying a child row, default "id"
}

// Field is one form field definition.
type Field struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	Type      FieldType     `json:"type"`
	Required  bool          `json:"required,omitempty"`
	Min       *float64      `json:"min,omitempty"` // numbers only
	Max       *float64      `json:"max,omitempty"`
	MaxLength int           `json:"max_length,omitempty"` // text only
	Pattern   string        `json:"pattern,omitempty"`    // text only, RE2
	Options   []string      `json:"options,omitempty"`    // select only
	Relation  *RelationSpec `json:"relation,omitempty"`   // relation only
}

// Section groups fields. A repeating section accepts a list of instances
// bounded by MinOccurs/MaxOccurs (0 max = unbounded).
type Section struct {
	Key       string  `json:"key"`
	Title     string  `json:"title"`
	Repeating bool    `json:"repeating,omitempty"`
	MinOccurs int     `json:"min_occurs,omitempty"`
	MaxOccurs int     `json:"max_occurs,omitempty"`
	Fields    []Field `json:"fields"`
}

// Schema is a complete entity form definition. ParentField names the field
// (in the first section) holding the hierarchical parent reference, "" when
// the entity is flat.
type Schema struct {
	Entity      string    `json:"entity"`
	Label       string    `json:"label"`
	ParentField string    `json:"parent_field,omitempty"`
	Sections    []Section `json:"sections"`
}

// Check verifies the schema definition itself is coherent before it is used
// to validate submissions.
func (s *Schema) Check() error {
	if s.Entity == "" {
		return fmt.Errorf("schema missing entity name")
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("schema %s has no sections", s.Entity)
	}
	sectionKeys := map[string]bool{}
	for _, sec := range s.Sections {
		if sec.Key == "" {
			return fmt.Errorf("schema %s: section with empty key", s.Entity)
		}
		if sectionKeys[sec.Key] {
			return fmt.Errorf("schema %s: duplicate section key %q", s.Entity, sec.Key)
		}
		sectionKeys[sec.Key] = true

		if sec.Repeating && sec.MaxOccurs > 0 && sec.MaxOccurs < sec.MinOccurs {
			return fmt.Errorf("schema %s: section %q max_occurs < min_occurs", s.Entity, sec.Key)
		}

		fieldKeys := map[string]bool{}
		for _, f := range sec.Fields {
			if f.Key == "" {
				return fmt.Errorf("schema %s: section %q has field with empty key", s.Entity, sec.Key)
			}
			if fieldKeys[f.Key] {
				return fmt.Errorf("schema %s: section %q duplicate field %q", s.Entity, sec.Key, f.Key)
			}
			fieldKeys[f.Key] = true

			switch f.Type {
			case FieldText, FieldNumber, FieldBool, FieldDate, FieldSelect, FieldRelation:
			default:
				return fmt.Errorf("schema %s: field %s.%s has unknown type %q", s.Entity, sec.Key, f.Key, f.Type)
			}
			if f.Type == FieldSelect && len(f.Options) == 0 {
				return fmt.Errorf("schema %s: select field %s.%s has no options", s.Entity, sec.Key, f.Key)
			}
			if f.Type == FieldRelation {
				if f.Relation == nil || f.Relation.Entity == "" {
					return fmt.Errorf("schema %s: relation field %s.%s missing target entity", s.Entity, sec.Key, f.Key)
				}
				if f.Relation.Cardinality != "one" && f.Relation.Cardinality != "many" {
					return fmt.Errorf("schema %s: relation field %s.%s has cardinality %q", s.Entity, sec.Key, f.Key, f.Relation.Cardinality)
				}
			}
		}
	}
	if s.ParentField != "" {
		found := false
		for _, f := range s.Sections[0].Fields {
			if f.Key == s.ParentField {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("schema %s: parent_field %q not found in first section", s.Entity, s.ParentField)
		}
	}
	return nil
}

// Section returns the section with the given key, or nil.
func (s *Schema) Section(key string) *Section {
	for i := range s.Sections {
		if s.Sections[i].Key == key {
			return &s.Sections[i]
		}
	}
	return nil
}
