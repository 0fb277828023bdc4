package layouts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Sitecraft/internal/models"
)

const (
	fallbackPrimary   = "#2f3e46"
	fallbackSecondary = "#84a98c"
	fallbackAccent    = "#cad2c5"
)

// ThemeCSSVars renders the palette as :root custom properties: UI colours,
// tier1 slots, tier2 indices and a contrasting text colour for each chip.
func ThemeCSSVars(palette models.Palette) string {
	var b strings.Builder
	b.WriteString(":root{")

	primary := themeColorOrDefault(palette.PrimaryColor, fallbackPrimary)
	secondary := themeColorOrDefault(palette.SecondaryColor, fallbackSecondary)
	accent := themeColorOrDefault(palette.AccentColor, fallbackAccent)
	writeVar(&b, "--theme-primary", primary)
	writeVar(&b, "--theme-secondary", secondary)
	writeVar(&b, "--theme-accent", accent)
	writeVar(&b, "--theme-on-primary", models.TextColorFor(primary))

	for _, slot := range models.Tier1Slots {
		color := themeColorOrDefault(palette.Tier1Color(slot), secondary)
		writeVar(&b, "--tier1-"+string(slot), color)
		writeVar(&b, "--tier1-"+string(slot)+"-text", models.TextColorFor(color))
	}
	for i, value := range palette.Tier2 {
		color := themeColorOrDefault(value, secondary)
		writeVar(&b, fmt.Sprintf("--tier2-%d", i+1), color)
		writeVar(&b, fmt.Sprintf("--tier2-%d-text", i+1), models.TextColorFor(color))
	}

	b.WriteString("}")
	return b.String()
}

// ThemeStyle is a <style> element carrying ThemeCSSVars.
func ThemeStyle(palette models.Palette) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<style data-theme=\"%s\">%s</style>", templ.EscapeString(palette.Key), ThemeCSSVars(palette))
		return err
	})
}

func writeVar(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte(';')
}

func themeColorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if !models.IsHexColor(trimmed) {
		return fallback
	}
	return trimmed
}
