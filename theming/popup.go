package theming

import "html/template"

// ThemePopup is the seasonal popup slot. It is switched off; the landing popup replaced it.
type ThemePopup struct {
	theme Theme
}

func NewThemePopup(theme Theme) ThemePopup {
	return ThemePopup{theme: theme}
}

// Enabled is always false, whatever popup data the theme carries
func (ThemePopup) Enabled() bool {
	return false
}

// Render always produces nothing
func (ThemePopup) Render() template.HTML {
	return ""
}
