package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/ashprao/chatbox/internal/constants"
	"github.com/ashprao/chatbox/internal/models"
)

// chatTheme wraps the default fyne theme with a fixed variant and text size
type chatTheme struct {
	mode     models.ThemeMode
	fontSize float32
}

// NewTheme returns a theme that forces the light or dark variant, or follows
// the system for ThemeSystem. Font sizes outside the allowed range use the
// default size.
func NewTheme(mode models.ThemeMode, fontSize int) fyne.Theme {
	if fontSize < constants.MinFontSize || fontSize > constants.MaxFontSize {
		fontSize = constants.DefaultFontSize
	}
	return &chatTheme{mode: mode, fontSize: float32(fontSize)}
}

func (t *chatTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch t.mode {
	case models.ThemeLight:
		variant = theme.VariantLight
	case models.ThemeDark:
		variant = theme.VariantDark
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *chatTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *chatTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *chatTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.fontSize
	}
	return theme.DefaultTheme().Size(name)
}
