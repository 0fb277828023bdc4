package categories

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/codr1/Sitecraft/assets"
	"github.com/codr1/Sitecraft/internal/categorycolor"
)

type templateFile struct {
	Templates []templateEntry `yaml:"templates"`
}

type templateEntry struct {
	Key     string          `yaml:"key"`
	Name    string          `yaml:"name"`
	Default bool            `yaml:"default"`
	Tier1   []TemplateTier1 `yaml:"tier1"`
}

type TemplateTier1 struct {
	Name  string   `yaml:"name" json:"name"`
	Tier2 []string `yaml:"tier2" json:"tier2"`
}

// Template is a named tier1 -> tier2 layout applied to new projects.
type Template struct {
	Key   string          `json:"key"`
	Name  string          `json:"name"`
	Tier1 []TemplateTier1 `json:"tier1"`
}

// Templates holds the parsed template catalog and the tier2 -> tier1 name
// index used for parentless tier2 categories.
type Templates struct {
	templates  map[string]Template
	order      []string
	defaultKey string
	parents    map[string]string
}

// LoadEmbeddedTemplates parses assets/category_templates.yaml.
func LoadEmbeddedTemplates() (*Templates, error) {
	file, err := assets.FS.Open(assets.CategoryTemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded category templates: %w", err)
	}
	defer file.Close()

	return ParseTemplates(file)
}

func ParseTemplates(r io.Reader) (*Templates, error) {
	var parsed templateFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse category templates: %w", err)
	}
	if len(parsed.Templates) == 0 {
		return nil, fmt.Errorf("category templates file defines no templates")
	}

	out := &Templates{
		templates: make(map[string]Template, len(parsed.Templates)),
		parents:   make(map[string]string),
	}
	for i, entry := range parsed.Templates {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, fmt.Errorf("template key missing at entry %d", i+1)
		}
		if _, ok := out.templates[key]; ok {
			return nil, fmt.Errorf("duplicate template key %q", key)
		}
		if entry.Default {
			if out.defaultKey != "" {
				return nil, fmt.Errorf("multiple default templates: %q and %q", out.defaultKey, key)
			}
			out.defaultKey = key
		}
		if len(entry.Tier1) == 0 {
			return nil, fmt.Errorf("template %q defines no tier1 categories", key)
		}

		tmpl := Template{Key: key, Name: strings.TrimSpace(entry.Name)}
		seenTier1 := make(map[string]bool, len(entry.Tier1))
		for _, tier1 := range entry.Tier1 {
			name := strings.TrimSpace(tier1.Name)
			if name == "" {
				return nil, fmt.Errorf("template %q has a tier1 category without a name", key)
			}
			if seenTier1[name] {
				return nil, fmt.Errorf("template %q repeats tier1 category %q", key, name)
			}
			seenTier1[name] = true

			children := make([]string, 0, len(tier1.Tier2))
			seenTier2 := make(map[string]bool, len(tier1.Tier2))
			for _, child := range tier1.Tier2 {
				child = strings.TrimSpace(child)
				if child == "" || seenTier2[child] {
					return nil, fmt.Errorf("template %q has an empty or repeated tier2 category under %q", key, name)
				}
				seenTier2[child] = true
				children = append(children, child)
				out.indexParent(child, name)
			}
			tmpl.Tier1 = append(tmpl.Tier1, TemplateTier1{Name: name, Tier2: children})
		}

		out.templates[key] = tmpl
		out.order = append(out.order, key)
	}
	if out.defaultKey == "" {
		out.defaultKey = out.order[0]
	}

	return out, nil
}

// indexParent keeps the first tier1 seen for a tier2 name.
func (t *Templates) indexParent(tier2, tier1 string) {
	normalized := categorycolor.NormalizeParent(tier2)
	if existing, ok := t.parents[normalized]; ok {
		if existing != tier1 {
			log.Debug().
				Str("tier2", tier2).
				Str("kept_tier1", existing).
				Str("ignored_tier1", tier1).
				Msg("Tier2 name appears under more than one template parent")
		}
		return
	}
	t.parents[normalized] = tier1
}

func (t *Templates) Get(key string) (Template, bool) {
	tmpl, ok := t.templates[key]
	return cloneTemplate(tmpl), ok
}

func (t *Templates) Default() Template {
	return cloneTemplate(t.templates[t.defaultKey])
}

func (t *Templates) DefaultKey() string {
	return t.defaultKey
}

func (t *Templates) Keys() []string {
	return append([]string(nil), t.order...)
}

// ParentFor guesses the tier1 parent of a tier2 name from the templates.
func (t *Templates) ParentFor(tier2Name string) (string, bool) {
	if t == nil {
		return "", false
	}
	parent, ok := t.parents[categorycolor.NormalizeParent(tier2Name)]
	return parent, ok
}

func cloneTemplate(tmpl Template) Template {
	out := tmpl
	out.Tier1 = make([]TemplateTier1, len(tmpl.Tier1))
	for i, tier1 := range tmpl.Tier1 {
		out.Tier1[i] = TemplateTier1{Name: tier1.Name, Tier2: append([]string(nil), tier1.Tier2...)}
	}
	return out
}
