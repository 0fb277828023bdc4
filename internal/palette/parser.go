package palette

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codr1/Sitecraft/assets"
	"github.com/codr1/Sitecraft/internal/categorycolor"
	"github.com/codr1/Sitecraft/internal/models"
)

type catalogFile struct {
	Palettes []catalogEntry `yaml:"palettes"`
}

type catalogEntry struct {
	Key         string            `yaml:"key"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Default     bool              `yaml:"default"`
	Primary     string            `yaml:"primary"`
	Secondary   string            `yaml:"secondary"`
	Accent      string            `yaml:"accent"`
	Tier1       map[string]string `yaml:"tier1"`
	Tier2       []string          `yaml:"tier2"`
}

// ParseEmbeddedCatalog reads assets/palettes.yaml and returns the palettes in
// file order along with the key marked as default.
func ParseEmbeddedCatalog() ([]models.Palette, string, error) {
	file, err := assets.FS.Open(assets.PalettesPath)
	if err != nil {
		return nil, "", fmt.Errorf("open embedded palettes file: %w", err)
	}
	defer file.Close()

	return ParseCatalog(file)
}

// ParseCatalogFile reads a palette catalog from disk.
func ParseCatalogFile(path string) ([]models.Palette, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open palettes file: %w", err)
	}
	defer file.Close()

	return ParseCatalog(file)
}

// ParseCatalog decodes and validates a palette catalog.
func ParseCatalog(r io.Reader) ([]models.Palette, string, error) {
	var catalog catalogFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return nil, "", fmt.Errorf("parse palettes file: %w", err)
	}
	if len(catalog.Palettes) == 0 {
		return nil, "", fmt.Errorf("palettes file defines no palettes")
	}

	minTier2 := categorycolor.MaxTier2Index()
	palettes := make([]models.Palette, 0, len(catalog.Palettes))
	seen := make(map[string]struct{}, len(catalog.Palettes))
	defaultKey := ""
	for i, entry := range catalog.Palettes {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, "", fmt.Errorf("palette key missing at entry %d", i+1)
		}
		if _, ok := seen[key]; ok {
			return nil, "", fmt.Errorf("duplicate palette key %q", key)
		}
		seen[key] = struct{}{}

		if entry.Default {
			if defaultKey != "" {
				return nil, "", fmt.Errorf("multiple default palettes: %q and %q", defaultKey, key)
			}
			defaultKey = key
		}

		tier1 := make(map[models.Tier1Slot]string, len(entry.Tier1))
		for slot, color := range entry.Tier1 {
			tier1[models.Tier1Slot(strings.TrimSpace(slot))] = strings.TrimSpace(color)
		}
		tier2 := make([]string, len(entry.Tier2))
		for j, color := range entry.Tier2 {
			tier2[j] = strings.TrimSpace(color)
		}

		p := models.Palette{
			Key:            key,
			Name:           strings.TrimSpace(entry.Name),
			Description:    strings.TrimSpace(entry.Description),
			PrimaryColor:   strings.TrimSpace(entry.Primary),
			SecondaryColor: strings.TrimSpace(entry.Secondary),
			AccentColor:    strings.TrimSpace(entry.Accent),
			Tier1:          tier1,
			Tier2:          tier2,
		}
		if err := p.Validate(minTier2); err != nil {
			return nil, "", fmt.Errorf("invalid palette %q: %w", key, err)
		}
		palettes = append(palettes, p)
	}

	return palettes, defaultKey, nil
}
