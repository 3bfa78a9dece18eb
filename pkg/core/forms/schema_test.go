package forms

import (
	"path/filepath"
	"testing"
)

func sampleSchema() *Schema {
	min := 0.0
	return &Schema{
		Entity:      "cost_center",
		Label:       "Cost Center",
		ParentField: "parent_id",
		Sections: []Section{
			{
				Key:   "general",
				Title: "General",
				Fields: []Field{
					{Key: "id", Label: "Code", Type: FieldText, Required: true, MaxLength: 12, Pattern: "^[A-Z][A-Z0-9-]*$"},
					{Key: "name", Label: "Name", Type: FieldText, Required: true},
					{Key: "parent_id", Label: "Parent", Type: FieldText},
					{Key: "kind", Label: "Kind", Type: FieldSelect, Required: true, Options: []string{"support", "production"}},
					{Key: "valid_from", Label: "Valid From", Type: FieldDate, Required: true},
					{Key: "active", Label: "Active", Type: FieldBool},
					{Key: "rules", Label: "Rules", Type: FieldRelation, Relation: &RelationSpec{
						Entity: "step_down_rule", Cardinality: "many", KeyField: "to_cost_center",
					}},
				},
			},
			{
				Key:       "lines",
				Title:     "Lines",
				Repeating: true,
				MinOccurs: 1,
				MaxOccurs: 3,
				Fields: []Field{
					{Key: "ledger", Label: "Ledger", Type: FieldSelect, Required: true, Options: []string{"ELEC", "RENT"}},
					{Key: "amount", Label: "Amount", Type: FieldNumber, Required: true, Min: &min},
				},
			},
		},
	}
}

func TestSchemaCheck(t *testing.T) {
	if err := sampleSchema().Check(); err != nil {
		t.Fatalf("sample schema should pass: %v", err)
	}

	s := sampleSchema()
	s.Entity = ""
	if err := s.Check(); err == nil {
		t.Error("Expected error for missing entity name")
	}

	s = sampleSchema()
	s.Sections[1].Key = "general"
	if err := s.Check(); err == nil {
		t.Error("Expected error for duplicate section key")
	}

	s = sampleSchema()
	s.Sections[0].Fields[1].Key = "id"
	if err := s.Check(); err == nil {
		t.Error("Expected error for duplicate field key")
	}

	s = sampleSchema()
	s.Sections[0].Fields[0].Type = "mystery"
	if err := s.Check(); err == nil {
		t.Error("Expected error for unknown field type")
	}

	s = sampleSchema()
	s.Sections[0].Fields[3].Options = nil
	if err := s.Check(); err == nil {
		t.Error("Expected error for select field without options")
	}

	s = sampleSchema()
	s.Sections[0].Fields[6].Relation.Cardinality = "several"
	if err := s.Check(); err == nil {
		t.Error("Expected error for bad relation cardinality")
	}

	s = sampleSchema()
	s.Sections[1].MaxOccurs = 1
	s.Sections[1].MinOccurs = 2
	if err := s.Check(); err == nil {
		t.Error("Expected error for max_occurs < min_occurs")
	}

	s = sampleSchema()
	s.ParentField = "nonexistent"
	if err := s.Check(); err == nil {
		t.Error("Expected error for parent_field missing from first section")
	}
}

func TestParseSchemaHJSON(t *testing.T) {
	// HJSON with comments, unquoted keys and values, and no commas.
	doc := `{
  // product master data
  entity: product
  label: Product
  sections: [
    {
      key: general
      title: General
      fields: [
        {
          key: id
          label: Code
          type: text
          required: true
        }
        {
          key: sellable
          label: Sellable
          type: bool
        }
      ]
    }
  ]
}`
	s, err := ParseSchema(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entity != "product" {
		t.Errorf("Expected entity product, got %s", s.Entity)
	}
	if len(s.Sections) != 1 || len(s.Sections[0].Fields) != 2 {
		t.Errorf("Schema structure not parsed: %+v", s)
	}
	if !s.Sections[0].Fields[0].Required {
		t.Error("Required flag lost in parsing")
	}
}

func TestParseSchemaJSON(t *testing.T) {
	// Plain JSON is a valid HJSON document.
	doc := `{"entity": "x", "sections": [{"key": "s", "fields": [{"key": "f", "type": "text"}]}]}`
	s, err := ParseSchema(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entity != "x" || len(s.Sections) != 1 {
		t.Errorf("Schema structure not parsed: %+v", s)
	}
}

func TestParseSchemaRejectsIncoherent(t *testing.T) {
	// Parses fine but fails the coherence check (select with no options).
	doc := `{
  entity: x
  sections: [
    {
      key: s
      fields: [
        {
          key: f
          type: select
        }
      ]
    }
  ]
}`
	if _, err := ParseSchema(doc); err == nil {
		t.Error("Expected coherence error for select without options")
	}
	if _, err := ParseSchema("not a schema at all {{{"); err == nil {
		t.Error("Expected parse error for garbage input")
	}
}

func TestLoadDirShippedSchemas(t *testing.T) {
	// The schemas the server loads at startup must parse and check clean.
	r := NewRegistry()
	n, err := r.LoadDir(filepath.Join("..", "..", "..", "resources", "forms"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 schemas, got %d", n)
	}

	expected := []string{"cost_center", "overhead_posting", "product"}
	ents := r.Entities()
	if len(ents) != len(expected) {
		t.Fatalf("Expected entities %v, got %v", expected, ents)
	}
	for i := range expected {
		if ents[i] != expected[i] {
			t.Errorf("Expected entity %s at %d, got %s", expected[i], i, ents[i])
		}
	}

	// Spot-check structure survived the round trip.
	cc := r.Get("cost_center")
	if cc == nil || cc.ParentField != "parent_id" {
		t.Fatalf("cost_center schema malformed: %+v", cc)
	}
	rules := cc.Section("settlement")
	if rules == nil || rules.Fields[0].Relation == nil || rules.Fields[0].Relation.KeyField != "to_cost_center" {
		t.Errorf("settlement relation not parsed: %+v", rules)
	}
	prod := r.Get("product")
	if prod == nil {
		t.Fatal("product schema missing")
	}
	mat := prod.Section("materials")
	if mat == nil || !mat.Repeating || mat.MinOccurs != 1 || mat.MaxOccurs != 20 {
		t.Errorf("materials section bounds not parsed: %+v", mat)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(sampleSchema())

	if r.Get("cost_center") == nil {
		t.Error("Expected registered schema to resolve")
	}
	if r.Get("nope") != nil {
		t.Error("Expected nil for unknown entity")
	}

	ents := r.Entities()
	if len(ents) != 1 || ents[0] != "cost_center" {
		t.Errorf("Expected [cost_center], got %v", ents)
	}
}
