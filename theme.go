package purfectscroll

import (
	"strconv"
	"strings"
)

// Color is a 24-bit display color
type Color struct {
	R, G, B uint8
}

// RGB creates a color
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ToHex returns the color as #rrggbb
func (c Color) ToHex() string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

// ToSGRCode returns the true-color SGR parameters (foreground if isFg)
func (c Color) ToSGRCode(isFg bool) string {
	prefix := "48;2;"
	if isFg {
		prefix = "38;2;"
	}
	return prefix + strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}

// ParseHexColor parses #rgb or #rrggbb (the # is optional)
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Theme holds the colors of the prompter display. Adapters map it to
// their own styling (SGR codes, GTK CSS, Qt style sheets).
type Theme struct {
	Foreground Color
	Background Color
	Status     Color // Status bar background
	Notice     Color // Notice text
}

// DarkTheme is light text on a dark background, the usual prompter look
func DarkTheme() Theme {
	return Theme{
		Foreground: RGB(240, 240, 240),
		Background: RGB(16, 16, 16),
		Status:     RGB(60, 60, 60),
		Notice:     RGB(255, 200, 64),
	}
}

// LightTheme is dark text on a light background
func LightTheme() Theme {
	return Theme{
		Foreground: RGB(30, 30, 30),
		Background: RGB(250, 250, 250),
		Status:     RGB(210, 210, 210),
		Notice:     RGB(170, 90, 0),
	}
}

// ThemeByName returns the named theme; unknown names get the dark theme
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
