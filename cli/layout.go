package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Layout wraps script text into display rows of at most width cells.
// Each wrapped line is followed by spacing blank rows; blank lines in the
// script are kept.
func Layout(text string, width, spacing int) []string {
	if width < 1 {
		width = 1
	}
	if spacing < 0 {
		spacing = 0
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	var rows []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" {
			rows = append(rows, "")
			continue
		}
		for _, line := range strings.Split(wordwrap.String(para, width), "\n") {
			line = strings.TrimRight(line, " ")
			// wordwrap never breaks inside a word
			for runewidth.StringWidth(line) > width {
				head := runewidth.Truncate(line, width, "")
				if head == "" {
					break
				}
				rows = append(rows, head)
				line = strings.TrimLeft(line[len(head):], " ")
			}
			rows = append(rows, line)
			for i := 0; i < spacing; i++ {
				rows = append(rows, "")
			}
		}
	}
	return rows
}

// Viewport is the scroll container of the terminal prompter. Offsets are
// virtual pixels, lineHeight of them per row.
type Viewport struct {
	rows       []string
	visible    int
	lineHeight float64
	offset     float64
	changes    uint64
	onChange   func()
}

// NewViewport creates an empty viewport
func NewViewport(lineHeight float64, visibleRows int) *Viewport {
	if lineHeight <= 0 {
		lineHeight = 16
	}
	return &Viewport{lineHeight: lineHeight, visible: visibleRows}
}

// SetOnChange sets a callback for any offset or layout change
func (v *Viewport) SetOnChange(fn func()) {
	v.onChange = fn
}

// SetRows replaces the laid-out rows
func (v *Viewport) SetRows(rows []string) {
	v.rows = rows
	v.clampOffset()
	v.changed()
}

// SetVisibleRows changes how many rows fit on screen
func (v *Viewport) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	v.visible = n
	v.clampOffset()
	v.changed()
}

// ScrollOffset returns the current offset
func (v *Viewport) ScrollOffset() float64 {
	return v.offset
}

// SetScrollOffset moves the view, clamped to the content
func (v *Viewport) SetScrollOffset(offset float64) {
	offset = v.clampTo(offset)
	if offset == v.offset {
		return
	}
	v.offset = offset
	v.changes++
	v.changed()
}

// ViewportHeight returns the visible height in virtual pixels
func (v *Viewport) ViewportHeight() float64 {
	return float64(v.visible) * v.lineHeight
}

// ContentHeight returns the content height in virtual pixels
func (v *Viewport) ContentHeight() float64 {
	return float64(len(v.rows)) * v.lineHeight
}

// ScrollChanges counts offset changes
func (v *Viewport) ScrollChanges() uint64 {
	return v.changes
}

// ScrollRows moves the view by n rows, as a user scroll would
func (v *Viewport) ScrollRows(n int) {
	v.SetScrollOffset(v.offset + float64(n)*v.lineHeight)
}

// PageRows is the number of rows a page scroll moves
func (v *Viewport) PageRows() int {
	if v.visible > 1 {
		return v.visible - 1
	}
	return 1
}

// TopRow is the first row on screen
func (v *Viewport) TopRow() int {
	return int(v.offset / v.lineHeight)
}

// VisibleRows returns the rows on screen, padded with blanks at the end
func (v *Viewport) VisibleRows() []string {
	out := make([]string, v.visible)
	top := v.TopRow()
	for i := range out {
		if top+i < len(v.rows) {
			out[i] = v.rows[top+i]
		}
	}
	return out
}

// RowCount returns the number of laid-out rows
func (v *Viewport) RowCount() int {
	return len(v.rows)
}

func (v *Viewport) clampTo(offset float64) float64 {
	max := v.ContentHeight() - v.ViewportHeight()
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (v *Viewport) clampOffset() {
	if off := v.clampTo(v.offset); off != v.offset {
		v.offset = off
		v.changes++
	}
}

func (v *Viewport) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}
