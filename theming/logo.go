package theming

import (
	"math"
	"strconv"
	"strings"
)

const (
	LogoLight = "/static/images/logo-light.svg" // for dark backgrounds
	LogoDark  = "/static/images/logo-dark.svg"
)

// LogoData is what the header needs to draw the brand logo
type LogoData struct {
	Src  string
	Alt  string
	Dark bool // background is dark
}

// Logo picks the logo variant that contrasts with the theme's background
func Logo(theme Theme, brand string) LogoData {
	dark := IsDark(theme.BackgroundColor)
	src := LogoDark
	if dark {
		src = LogoLight
	}
	return LogoData{Src: src, Alt: brand, Dark: dark}
}

// IsDark reports whether a hex colour's relative luminance is below 0.5.
// Unparseable colours are treated as light.
func IsDark(hex string) bool {
	l, ok := Luminance(hex)
	return ok && l < 0.5
}

// Luminance returns the WCAG relative luminance of #rgb or #rrggbb
func Luminance(hex string) (float64, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	r := channel(uint8(v >> 16))
	g := channel(uint8(v >> 8))
	b := channel(uint8(v))
	return 0.2126*r + 0.7152*g + 0.0722*b, true
}

func channel(c uint8) float64 {
	s := float64(c) / 255
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}
