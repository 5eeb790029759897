package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/phroun/purfectscroll"
)

// BorderStyle defines the visual style for the prompter window border
type BorderStyle int

const (
	BorderNone    BorderStyle = iota // No border
	BorderSingle                     // Single-line box drawing characters
	BorderDouble                     // Double-line box drawing characters
	BorderHeavy                      // Heavy/thick box drawing characters
	BorderRounded                    // Rounded corners (single line)
)

// ParseBorderStyle maps a config name to a style; unknown names get BorderNone
func ParseBorderStyle(s string) BorderStyle {
	switch s {
	case "single":
		return BorderSingle
	case "double":
		return BorderDouble
	case "heavy":
		return BorderHeavy
	case "rounded":
		return BorderRounded
	}
	return BorderNone
}

type borderCharSet struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
}

var borderStyles = map[BorderStyle]borderCharSet{
	BorderSingle:  {"┌", "┐", "└", "┘", "─", "│"},
	BorderDouble:  {"╔", "╗", "╚", "╝", "═", "║"},
	BorderHeavy:   {"┏", "┓", "┗", "┛", "━", "┃"},
	BorderRounded: {"╭", "╮", "╰", "╯", "─", "│"},
}

// Frame is one screen's worth of prompter state
type Frame struct {
	Rows   []string // Visible script rows
	Status string   // Status bar text
	Notice string   // Notice line, empty for none
}

// Renderer draws frames to the host terminal, rewriting only the screen
// lines that changed since the previous frame.
type Renderer struct {
	out       io.Writer
	theme     purfectscroll.Theme
	border    BorderStyle
	title     string
	margin    int
	statusBar bool

	cols, rows int
	last       []string
	output     strings.Builder
}

// NewRenderer creates a renderer for a cols x rows host terminal
func NewRenderer(out io.Writer, opts Options, cols, rows int) *Renderer {
	r := &Renderer{
		out:       out,
		theme:     opts.Theme,
		border:    opts.BorderStyle,
		title:     opts.Title,
		margin:    opts.Margin,
		statusBar: opts.ShowStatusBar,
	}
	r.Resize(cols, rows)
	return r
}

// Resize sets the host size and forces a full redraw
func (r *Renderer) Resize(cols, rows int) {
	if cols < 10 {
		cols = 10
	}
	if rows < 3 {
		rows = 3
	}
	r.cols, r.rows = cols, rows
	r.last = nil
}

// ForceFullRedraw drops the cached screen
func (r *Renderer) ForceFullRedraw() {
	r.last = nil
}

// Cols returns the host terminal width
func (r *Renderer) Cols() int {
	return r.cols
}

// TextArea returns the size of the script area in cells
func (r *Renderer) TextArea() (width, height int) {
	width = r.cols - 2*r.margin
	height = r.rows
	if r.border != BorderNone {
		width -= 2
		height -= 2
	}
	if r.statusBar {
		height -= 2
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Render draws f
func (r *Renderer) Render(f Frame) error {
	screen := r.compose(f)
	full := len(r.last) != len(screen)

	r.output.Reset()
	r.output.WriteString("\033[?25l")
	if full {
		r.output.WriteString("\033[0m\033[2J")
	}
	for y, line := range screen {
		if !full && r.last[y] == line {
			continue
		}
		fmt.Fprintf(&r.output, "\033[%d;1H", y+1)
		r.output.WriteString(line)
	}
	r.output.WriteString("\033[0m")
	r.last = screen

	_, err := io.WriteString(r.out, r.output.String())
	return err
}

func (r *Renderer) compose(f Frame) []string {
	textSGR := "\033[0;" + r.theme.Foreground.ToSGRCode(true) + ";" + r.theme.Background.ToSGRCode(false) + "m"
	width, height := r.TextArea()
	pad := strings.Repeat(" ", r.margin)

	screen := make([]string, 0, r.rows)
	bc, bordered := borderStyles[r.border]
	if bordered {
		screen = append(screen, textSGR+r.topBorder(bc))
	}
	for i := 0; i < height; i++ {
		row := ""
		if i < len(f.Rows) {
			row = f.Rows[i]
		}
		line := pad + fit(row, width) + pad
		if bordered {
			line = bc.vertical + line + bc.vertical
		}
		screen = append(screen, textSGR+line)
	}
	if bordered {
		screen = append(screen, textSGR+bc.bottomLeft+strings.Repeat(bc.horizontal, r.cols-2)+bc.bottomRight)
	}
	if r.statusBar {
		noticeSGR := "\033[0;1;" + r.theme.Notice.ToSGRCode(true) + ";" + r.theme.Background.ToSGRCode(false) + "m"
		statusSGR := "\033[0;" + r.theme.Foreground.ToSGRCode(true) + ";" + r.theme.Status.ToSGRCode(false) + "m"
		screen = append(screen, noticeSGR+fit(f.Notice, r.cols))
		screen = append(screen, statusSGR+fit(f.Status, r.cols))
	}
	return screen
}

func (r *Renderer) topBorder(bc borderCharSet) string {
	inner := r.cols - 2
	title := r.title
	if title == "" || runewidth.StringWidth(title)+4 > inner {
		return bc.topLeft + strings.Repeat(bc.horizontal, inner) + bc.topRight
	}
	label := " " + title + " "
	left := (inner - runewidth.StringWidth(label)) / 2
	right := inner - left - runewidth.StringWidth(label)
	return bc.topLeft + strings.Repeat(bc.horizontal, left) + label + strings.Repeat(bc.horizontal, right) + bc.topRight
}

// fit truncates or pads s to exactly width cells
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "")
	return runewidth.FillRight(s, width)
}
