// internal/models/palettes.go
package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Category chips are small UI elements, so the AA large-text threshold applies.
const wcagAAMinContrastRatio = 3.0
const maxPaletteNameLength = 100
const darkTextColor = "#000000"
const lightTextColor = "#ffffff"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
var paletteKeyRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

type Tier1Slot string

const (
	SlotSubcategory1 Tier1Slot = "subcategory1"
	SlotSubcategory2 Tier1Slot = "subcategory2"
	SlotSubcategory3 Tier1Slot = "subcategory3"
	SlotSubcategory4 Tier1Slot = "subcategory4"
	SlotSubcategory5 Tier1Slot = "subcategory5"
	SlotDefault      Tier1Slot = "default"
)

// Tier1Slots lists the named slots every palette must define, default last.
var Tier1Slots = []Tier1Slot{
	SlotSubcategory1,
	SlotSubcategory2,
	SlotSubcategory3,
	SlotSubcategory4,
	SlotSubcategory5,
	SlotDefault,
}

type Palette struct {
	Key            string               `json:"key"`
	Name           string               `json:"displayName"`
	Description    string               `json:"description"`
	IsDefault      bool                 `json:"isDefault"`
	PrimaryColor   string               `json:"primaryColor"`
	SecondaryColor string               `json:"secondaryColor"`
	AccentColor    string               `json:"accentColor"`
	Tier1          map[Tier1Slot]string `json:"tier1"`
	// Tier2[0] is tier2_1.
	Tier2 []string `json:"tier2"`
}

// Clone returns a deep copy so callers cannot mutate registry data.
func (p Palette) Clone() Palette {
	out := p
	out.Tier1 = make(map[Tier1Slot]string, len(p.Tier1))
	for slot, color := range p.Tier1 {
		out.Tier1[slot] = color
	}
	out.Tier2 = append([]string(nil), p.Tier2...)
	return out
}

// Tier2At returns the colour stored under tier2_<index> (1-based).
func (p Palette) Tier2At(index int) (string, bool) {
	if index < 1 || index > len(p.Tier2) {
		return "", false
	}
	return p.Tier2[index-1], true
}

// Tier1Color returns the colour of slot, or the palette's default slot when
// the slot is unknown.
func (p Palette) Tier1Color(slot Tier1Slot) string {
	if color, ok := p.Tier1[slot]; ok && color != "" {
		return color
	}
	return p.Tier1[SlotDefault]
}

// FallbackColor is used when a tier2 lookup misses.
func (p Palette) FallbackColor() string {
	if p.SecondaryColor != "" {
		return p.SecondaryColor
	}
	return p.Tier1[SlotDefault]
}

// Tier2Keys returns the tier2_N names in index order.
func (p Palette) Tier2Keys() []string {
	keys := make([]string, len(p.Tier2))
	for i := range p.Tier2 {
		keys[i] = fmt.Sprintf("tier2_%d", i+1)
	}
	return keys
}

// Validate checks the palette is complete. minTier2 is the highest tier2
// index any bucket can select.
func (p Palette) Validate(minTier2 int) error {
	if !paletteKeyRegex.MatchString(p.Key) {
		return fmt.Errorf("key %q must be lowercase words separated by hyphens", p.Key)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxPaletteNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxPaletteNameLength)
	}

	uiColors := []struct {
		field string
		value string
	}{
		{"primary", p.PrimaryColor},
		{"secondary", p.SecondaryColor},
		{"accent", p.AccentColor},
	}
	for _, c := range uiColors {
		if !hexColorRegex.MatchString(c.value) {
			return fmt.Errorf("%s must be a 6-digit hex color like #AABBCC", c.field)
		}
	}

	for _, slot := range Tier1Slots {
		value, ok := p.Tier1[slot]
		if !ok {
			return fmt.Errorf("tier1 slot %s is missing", slot)
		}
		if !hexColorRegex.MatchString(value) {
			return fmt.Errorf("tier1 slot %s must be a 6-digit hex color like #AABBCC", slot)
		}
	}

	if len(p.Tier2) < minTier2 {
		return fmt.Errorf("tier2 defines %d colors, need at least %d", len(p.Tier2), minTier2)
	}
	for i, value := range p.Tier2 {
		if !hexColorRegex.MatchString(value) {
			return fmt.Errorf("tier2_%d must be a 6-digit hex color like #AABBCC", i+1)
		}
	}

	return nil
}

// TextColorFor picks black or white text, whichever contrasts better with
// the background. Unparseable colours get dark text.
func TextColorFor(backgroundColor string) string {
	darkRatio, err := ContrastRatio(darkTextColor, backgroundColor)
	if err != nil {
		return darkTextColor
	}
	lightRatio, err := ContrastRatio(lightTextColor, backgroundColor)
	if err != nil {
		return darkTextColor
	}
	if lightRatio > darkRatio {
		return lightTextColor
	}
	return darkTextColor
}

// MeetsChipContrast reports whether the background reaches the WCAG AA
// large-text ratio against its chosen text colour.
func MeetsChipContrast(backgroundColor string) bool {
	ratio, err := ContrastRatio(TextColorFor(backgroundColor), backgroundColor)
	if err != nil {
		return false
	}
	return ratio >= wcagAAMinContrastRatio
}

func ContrastRatio(textColor, backgroundColor string) (float64, error) {
	textL, err := relativeLuminance(textColor)
	if err != nil {
		return 0, err
	}
	backgroundL, err := relativeLuminance(backgroundColor)
	if err != nil {
		return 0, err
	}
	lightest := math.Max(textL, backgroundL)
	darkest := math.Min(textL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05), nil
}

func relativeLuminance(hexColor string) (float64, error) {
	if !hexColorRegex.MatchString(hexColor) {
		return 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}
	c, err := colorful.Hex(hexColor)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}
