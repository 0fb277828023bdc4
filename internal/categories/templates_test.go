package categories

import (
	"strings"
	"testing"
)

func TestLoadEmbeddedTemplates(t *testing.T) {
	templates, err := LoadEmbeddedTemplates()
	if err != nil {
		t.Fatalf("LoadEmbeddedTemplates() error = %v", err)
	}

	if templates.DefaultKey() != "construction" {
		t.Fatalf("DefaultKey() = %q, want construction", templates.DefaultKey())
	}
	keys := strings.Join(templates.Keys(), ",")
	if keys != "construction,workout,software" {
		t.Fatalf("Keys() = %s", keys)
	}

	construction := templates.Default()
	if len(construction.Tier1) != 4 {
		t.Fatalf("construction tier1 count = %d, want 4", len(construction.Tier1))
	}
	if construction.Tier1[0].Name != "Structural" {
		t.Fatalf("first construction tier1 = %q, want Structural", construction.Tier1[0].Name)
	}

	// Callers get copies.
	construction.Tier1[0].Tier2[0] = "Changed"
	if again := templates.Default(); again.Tier1[0].Tier2[0] != "Foundation" {
		t.Fatalf("template mutated through returned copy")
	}
}

func TestTemplates_ParentFor(t *testing.T) {
	templates, err := LoadEmbeddedTemplates()
	if err != nil {
		t.Fatalf("LoadEmbeddedTemplates() error = %v", err)
	}

	tests := []struct {
		tier2  string
		want   string
		wantOK bool
	}{
		{tier2: "HVAC", want: "Systems", wantOK: true},
		{tier2: "framing", want: "Structural", wantOK: true},
		{tier2: "exterior-doors", want: "Sheathing", wantOK: true},
		{tier2: "Biceps", want: "Pull", wantOK: true},
		{tier2: "Demolition", want: "", wantOK: false},
	}
	for _, test := range tests {
		got, ok := templates.ParentFor(test.tier2)
		if got != test.want || ok != test.wantOK {
			t.Fatalf("ParentFor(%q) = %q, %v, want %q, %v", test.tier2, got, ok, test.want, test.wantOK)
		}
	}

	var none *Templates
	if _, ok := none.ParentFor("HVAC"); ok {
		t.Fatalf("nil templates reported a parent")
	}
}

func TestParseTemplates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "empty",
			body:    "templates: []",
			wantErr: "defines no templates",
		},
		{
			name:    "duplicate",
			body:    "templates:\n  - key: a\n    tier1: [{name: X}]\n  - key: a\n    tier1: [{name: X}]\n",
			wantErr: "duplicate template key",
		},
		{
			name:    "two_defaults",
			body:    "templates:\n  - key: a\n    default: true\n    tier1: [{name: X}]\n  - key: b\n    default: true\n    tier1: [{name: X}]\n",
			wantErr: "multiple default templates",
		},
		{
			name:    "no_tier1",
			body:    "templates:\n  - key: a\n",
			wantErr: "defines no tier1",
		},
		{
			name:    "repeated_tier2",
			body:    "templates:\n  - key: a\n    tier1: [{name: X, tier2: [One, One]}]\n",
			wantErr: "empty or repeated tier2",
		},
		{
			name:    "unknown_field",
			body:    "templates:\n  - key: a\n    colour: red\n    tier1: [{name: X}]\n",
			wantErr: "parse category templates",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseTemplates(strings.NewReader(test.body))
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("ParseTemplates() error = %v, want %q", err, test.wantErr)
			}
		})
	}
}
