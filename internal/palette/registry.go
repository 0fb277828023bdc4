// Package palette holds the catalog of named colour themes. Palettes are
// loaded once at startup and never change afterwards.
package palette

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/models"
)

// FallbackKey is the default palette when neither the catalog nor the
// configuration names one.
const FallbackKey = "earth-tone"

type Registry struct {
	palettes   map[string]models.Palette
	order      []string
	defaultKey string
}

// Load builds a registry from the catalog at path, or from the embedded
// catalog when path is empty. defaultKey overrides the catalog's default
// marker when set.
func Load(path, defaultKey string) (*Registry, error) {
	var (
		palettes   []models.Palette
		catalogKey string
		err        error
	)
	if path == "" {
		palettes, catalogKey, err = ParseEmbeddedCatalog()
	} else {
		palettes, catalogKey, err = ParseCatalogFile(path)
	}
	if err != nil {
		return nil, err
	}
	if defaultKey == "" {
		defaultKey = catalogKey
	}
	return NewRegistry(palettes, defaultKey)
}

// NewRegistry indexes palettes in the given order. An empty defaultKey
// selects FallbackKey if present, otherwise the first palette.
func NewRegistry(palettes []models.Palette, defaultKey string) (*Registry, error) {
	if len(palettes) == 0 {
		return nil, fmt.Errorf("palette registry needs at least one palette")
	}

	r := &Registry{
		palettes: make(map[string]models.Palette, len(palettes)),
		order:    make([]string, 0, len(palettes)),
	}
	for _, p := range palettes {
		if _, ok := r.palettes[p.Key]; ok {
			return nil, fmt.Errorf("duplicate palette key %q", p.Key)
		}
		r.palettes[p.Key] = p.Clone()
		r.order = append(r.order, p.Key)
	}

	switch {
	case defaultKey != "":
		if _, ok := r.palettes[defaultKey]; !ok {
			return nil, fmt.Errorf("default palette %q is not in the catalog", defaultKey)
		}
		r.defaultKey = defaultKey
	case r.Has(FallbackKey):
		r.defaultKey = FallbackKey
	default:
		r.defaultKey = r.order[0]
	}

	for key, p := range r.palettes {
		p.IsDefault = key == r.defaultKey
		r.palettes[key] = p
	}

	return r, nil
}

// Get returns the palette for key. Unknown keys return the default palette.
func (r *Registry) Get(key string) models.Palette {
	if p, ok := r.palettes[key]; ok {
		return p.Clone()
	}
	log.Warn().
		Str("palette", key).
		Str("default_palette", r.defaultKey).
		Msg("Unknown palette requested, using default")
	return r.palettes[r.defaultKey].Clone()
}

// Lookup returns the palette for key without falling back.
func (r *Registry) Lookup(key string) (models.Palette, bool) {
	p, ok := r.palettes[key]
	if !ok {
		return models.Palette{}, false
	}
	return p.Clone(), true
}

func (r *Registry) Has(key string) bool {
	_, ok := r.palettes[key]
	return ok
}

// Keys returns palette keys in catalog order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// List returns all palettes in catalog order.
func (r *Registry) List() []models.Palette {
	out := make([]models.Palette, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.palettes[key].Clone())
	}
	return out
}

func (r *Registry) DefaultKey() string {
	return r.defaultKey
}

func (r *Registry) Default() models.Palette {
	return r.palettes[r.defaultKey].Clone()
}
