package domain

import "strings"

// ThemePalette is the set of colors every view is rendered with.
type ThemePalette struct {
	Name        string
	BgColor     string
	TextColor   string
	AccentColor string
}

const DefaultAccentColor = "#9c88ff"

var (
	DarkTheme = ThemePalette{
		Name:        "dark",
		BgColor:     "black",
		TextColor:   "white",
		AccentColor: DefaultAccentColor,
	}
	LightTheme = ThemePalette{
		Name:        "light",
		BgColor:     "white",
		TextColor:   "black",
		AccentColor: DefaultAccentColor,
	}
)

// ThemeByName returns the named palette; unknown names fall back to dark.
func ThemeByName(name string) ThemePalette {
	if strings.EqualFold(name, LightTheme.Name) {
		return LightTheme
	}
	return DarkTheme
}

// WithAccent returns a copy of the palette using accent, if set.
func (t ThemePalette) WithAccent(accent string) ThemePalette {
	if accent != "" {
		t.AccentColor = accent
	}
	return t
}
