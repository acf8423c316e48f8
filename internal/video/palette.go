package video

import "github.com/camperoutlet/camperdeals/internal/models"

// Palette is a three-stop background gradient.
type Palette struct {
	From string `json:"from,omitempty"`
	Via  string `json:"via,omitempty"`
	To   string `json:"to,omitempty"`
}

// Brand colors used across layers.
const (
	brandYellow = "#facc15"
	brandWhite  = "#ffffff"
	brandDark   = "#0a0a0a"
)

var categoryPalettes = map[string]Palette{
	models.CategoryDefault:     {From: "#052e16", Via: "#14532d", To: "#166534"},
	models.CategoryTents:       {From: "#052e16", Via: "#15803d", To: "#14532d"},
	models.CategorySleepingBag: {From: "#1e1b4b", Via: "#312e81", To: "#14532d"},
	models.CategoryCooking:     {From: "#431407", Via: "#9a3412", To: "#7c2d12"},
	models.CategoryLighting:    {From: "#1c1917", Via: "#44403c", To: "#292524"},
	models.CategoryBackpacks:   {From: "#172554", Via: "#1e3a5f", To: "#14532d"},
	models.CategoryTools:       {From: "#1c1917", Via: "#292524", To: "#431407"},
}

var defaultPalette = Palette{From: "#052e16", Via: "#14532d", To: "#0f172a"}

// PaletteFor returns the gradient for a category; unknown categories get
// the default palette, never an error.
func PaletteFor(category string) Palette {
	if p, ok := categoryPalettes[category]; ok {
		return p
	}
	return defaultPalette
}
