package themes

import "github.com/codr1/Sitecraft/internal/models"

// PaletteOption is a palette as shown in a theme picker.
type PaletteOption struct {
	models.Palette
	Enabled bool `json:"enabled"`
	Active  bool `json:"active"`
}

func NewPaletteOption(palette models.Palette, enabled map[string]bool, activeKey string) PaletteOption {
	return PaletteOption{
		Palette: palette,
		Enabled: enabled[palette.Key],
		Active:  palette.Key == activeKey,
	}
}

// NewPaletteOptions keeps the palettes' order. enabledKeys is the expanded
// allow-list.
func NewPaletteOptions(palettes []models.Palette, enabledKeys []string, activeKey string) []PaletteOption {
	enabled := make(map[string]bool, len(enabledKeys))
	for _, key := range enabledKeys {
		enabled[key] = true
	}
	options := make([]PaletteOption, len(palettes))
	for i, palette := range palettes {
		options[i] = NewPaletteOption(palette, enabled, activeKey)
	}
	return options
}
