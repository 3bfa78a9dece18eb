package utils

import (
	"strings"
	"testing"
)

type probe struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var p probe
	if _, err := SmartParse(`{"name": "alpha", "count": 3}`, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "alpha" || p.Count != 3 {
		t.Errorf("Parsed wrong values: %+v", p)
	}
}

func TestSmartParseRepairsSloppyJSON(t *testing.T) {
	// Single quotes and a trailing comma.
	var p probe
	if _, err := SmartParse(`{'name': 'beta', 'count': 2,}`, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "beta" || p.Count != 2 {
		t.Errorf("Parsed wrong values: %+v", p)
	}
}

func TestParseHJSONToStruct(t *testing.T) {
	// Comments, unquoted keys, no commas: the schema authoring format.
	doc := `{
  // a comment
  name: gamma
  count: 5
}`
	var p probe
	if err := ParseHJSONToStruct(doc, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "gamma" || p.Count != 5 {
		t.Errorf("Parsed wrong values: %+v", p)
	}

	if err := ParseHJSONToStruct("][ broken", &p); err == nil {
		t.Error("Expected error for invalid document")
	}
}

func TestSmartParseFails(t *testing.T) {
	var p probe
	if _, err := SmartParse("][ definitely broken ][", &p); err == nil {
		t.Error("Expected failure for unparseable input")
	}
}

func TestCleanMarkdown(t *testing.T) {
	wrapped := "```markdown\n# Title\n\nBody\n```"
	if got := CleanMarkdown(wrapped); got != "# Title\n\nBody" {
		t.Errorf("Expected stripped fences, got %q", got)
	}

	plain := "# Already clean"
	if got := CleanMarkdown(plain); got != plain {
		t.Errorf("Clean input changed: %q", got)
	}
}

func TestRenderMarkdownHTML(t *testing.T) {
	md := "# Heading\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"
	html, err := RenderMarkdownHTML(md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1") {
		t.Error("Heading not rendered")
	}
	// Table extension must be active.
	if !strings.Contains(html, "<table") || !strings.Contains(html, "<td>1</td>") {
		t.Errorf("Table not rendered: %s", html)
	}
}
