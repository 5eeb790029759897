package purfectscroll

import "testing"

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ff8000", RGB(255, 128, 0), true},
		{"0a0b0c", RGB(10, 11, 12), true},
		{"#fff", RGB(255, 255, 255), true},
		{"#12345", Color{}, false},
		{"#gggggg", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHexColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseHexColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestColorFormats(t *testing.T) {
	c := RGB(1, 170, 255)
	if got := c.ToHex(); got != "#01aaff" {
		t.Fatalf("unexpected hex %q", got)
	}
	if got := c.ToSGRCode(true); got != "38;2;1;170;255" {
		t.Fatalf("unexpected fg sgr %q", got)
	}
	if got := c.ToSGRCode(false); got != "48;2;1;170;255" {
		t.Fatalf("unexpected bg sgr %q", got)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light") != LightTheme() {
		t.Fatalf("expected light theme")
	}
	if ThemeByName("nope") != DarkTheme() {
		t.Fatalf("expected dark fallback")
	}
}
