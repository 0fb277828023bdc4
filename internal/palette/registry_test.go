package palette

import (
	"strings"
	"testing"

	"github.com/codr1/Sitecraft/internal/categorycolor"
	"github.com/codr1/Sitecraft/internal/models"
)

func TestParseEmbeddedCatalog(t *testing.T) {
	palettes, defaultKey, err := ParseEmbeddedCatalog()
	if err != nil {
		t.Fatalf("ParseEmbeddedCatalog() error = %v", err)
	}

	// assets/palettes.yaml currently defines 12 palettes.
	if len(palettes) != 12 {
		t.Fatalf("ParseEmbeddedCatalog() palette count = %d, want 12", len(palettes))
	}
	if defaultKey != "earth-tone" {
		t.Fatalf("default palette = %q, want earth-tone", defaultKey)
	}
	if palettes[0].Key != "earth-tone" {
		t.Fatalf("first palette = %q, want earth-tone", palettes[0].Key)
	}

	for _, p := range palettes {
		if err := p.Validate(categorycolor.MaxTier2Index()); err != nil {
			t.Fatalf("palette %q failed validation: %v", p.Key, err)
		}
	}
}

func TestEmbeddedCatalog_BucketCoverage(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, p := range registry.List() {
		for alias := range categorycolor.Aliases() {
			bucket := categorycolor.BucketFor(alias)
			for index := bucket.First; index <= bucket.Last; index++ {
				if _, ok := p.Tier2At(index); !ok {
					t.Fatalf("palette %q has no tier2_%d for alias %q (bucket %s)", p.Key, index, alias, bucket.Name)
				}
			}
		}
	}
}

func TestEmbeddedCatalog_ChipContrast(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, p := range registry.List() {
		for _, color := range p.Tier2 {
			if !models.MeetsChipContrast(color) {
				t.Fatalf("palette %q tier2 color %s has insufficient text contrast", p.Key, color)
			}
		}
	}
}

func TestRegistry_EarthToneScenario(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	earth := registry.Get("earth-tone")
	if got := earth.Tier1[models.SlotSubcategory1]; got != "#556b2f" {
		t.Fatalf("earth-tone subcategory1 = %s, want #556b2f", got)
	}

	// Cross-checked against the web client for the same triple.
	if got := categorycolor.Tier2Color(earth, "Framing", "Structural"); got != "#63843a" {
		t.Fatalf("Tier2Color(earth-tone, Framing, Structural) = %s, want #63843a", got)
	}
	if got := categorycolor.Tier2Color(registry.Get("molten-core"), "HVAC", "systems"); got != "#ff872e" {
		t.Fatalf("Tier2Color(molten-core, HVAC, systems) = %s, want #ff872e", got)
	}
}

func TestRegistry_GetUnknownReturnsDefault(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := registry.Get("does-not-exist")
	if got.Key != "earth-tone" {
		t.Fatalf("Get(unknown) = %q, want earth-tone", got.Key)
	}
	if !got.IsDefault {
		t.Fatalf("default palette not flagged as default")
	}
	if _, ok := registry.Lookup("does-not-exist"); ok {
		t.Fatalf("Lookup(unknown) reported ok")
	}
}

func TestRegistry_KeysStableOrder(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	first := registry.Keys()
	want := []string{"earth-tone", "pastel", "futuristic", "molten-core"}
	for i, key := range want {
		if first[i] != key {
			t.Fatalf("Keys()[%d] = %q, want %q", i, first[i], key)
		}
	}
	for i := 0; i < 10; i++ {
		again := registry.Keys()
		if strings.Join(again, ",") != strings.Join(first, ",") {
			t.Fatalf("Keys() order changed between calls")
		}
	}
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	registry, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p := registry.Get("pastel")
	original := p.Tier2[0]
	p.Tier2[0] = "#000000"
	p.Tier1[models.SlotDefault] = "#000000"

	again := registry.Get("pastel")
	if again.Tier2[0] != original {
		t.Fatalf("registry palette mutated through returned copy")
	}
	if again.Tier1[models.SlotDefault] == "#000000" {
		t.Fatalf("registry tier1 mutated through returned copy")
	}
}

func TestLoad_DefaultOverride(t *testing.T) {
	registry, err := Load("", "futuristic")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if registry.DefaultKey() != "futuristic" {
		t.Fatalf("DefaultKey() = %q, want futuristic", registry.DefaultKey())
	}
	if got := registry.Get("nope").Key; got != "futuristic" {
		t.Fatalf("Get(unknown) = %q, want futuristic", got)
	}

	if _, err := Load("", "missing"); err == nil {
		t.Fatalf("Load() with unknown default succeeded")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tier1 := `
    tier1:
      subcategory1: "#111111"
      subcategory2: "#222222"
      subcategory3: "#333333"
      subcategory4: "#444444"
      subcategory5: "#555555"
      default: "#666666"`
	tier2 := "\n    tier2: [" + strings.TrimSuffix(strings.Repeat(`"#777777",`, 20), ",") + "]"
	head := func(key string, isDefault bool) string {
		out := "\n  - key: " + key + "\n    name: Test\n    primary: \"#111111\"\n    secondary: \"#eeeeee\"\n    accent: \"#999999\""
		if isDefault {
			out += "\n    default: true"
		}
		return out
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "empty",
			body:    "palettes: []",
			wantErr: "defines no palettes",
		},
		{
			name:    "duplicate",
			body:    "palettes:" + head("one", false) + tier1 + tier2 + head("one", false) + tier1 + tier2,
			wantErr: "duplicate palette key",
		},
		{
			name:    "two_defaults",
			body:    "palettes:" + head("one", true) + tier1 + tier2 + head("two", true) + tier1 + tier2,
			wantErr: "multiple default palettes",
		},
		{
			name:    "short_tier2",
			body:    "palettes:" + head("one", false) + tier1 + "\n    tier2: [\"#777777\"]",
			wantErr: "need at least 20",
		},
		{
			name:    "missing_slot",
			body:    "palettes:" + head("one", false) + "\n    tier1:\n      default: \"#666666\"" + tier2,
			wantErr: "tier1 slot subcategory1 is missing",
		},
		{
			name:    "unknown_field",
			body:    "palettes:" + head("one", false) + tier1 + tier2 + "\n    shade: dark",
			wantErr: "parse palettes file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := ParseCatalog(strings.NewReader(test.body))
			if err == nil {
				t.Fatalf("ParseCatalog() succeeded, want error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("ParseCatalog() error = %v, want %q", err, test.wantErr)
			}
		})
	}
}
