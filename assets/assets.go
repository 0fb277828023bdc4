package assets

import "embed"

const (
	PalettesPath          = "palettes.yaml"
	CategoryTemplatesPath = "category_templates.yaml"
)

//go:embed palettes.yaml category_templates.yaml
var FS embed.FS
