package purfectscrollqt

import "github.com/mappu/miqt/qt"

// ScrollBarContainer drives a vertical QScrollBar whose units are pixels,
// as with the scroll bar of a QTextEdit
type ScrollBarContainer struct {
	bar      *qt.QScrollBar
	changes  uint64
	onScroll func()
}

// NewScrollBarContainer wraps bar. onScroll runs after every value
// change, including the container's own writes.
func NewScrollBarContainer(bar *qt.QScrollBar, onScroll func()) *ScrollBarContainer {
	c := &ScrollBarContainer{bar: bar, onScroll: onScroll}
	bar.OnValueChanged(func(value int) {
		c.changes++
		if c.onScroll != nil {
			c.onScroll()
		}
	})
	return c
}

func (c *ScrollBarContainer) ScrollOffset() float64 {
	return float64(c.bar.Value() - c.bar.Minimum())
}

// SetScrollOffset rounds to whole pixels; QScrollBar clamps the range
func (c *ScrollBarContainer) SetScrollOffset(offset float64) {
	c.bar.SetValue(c.bar.Minimum() + int(offset+0.5))
}

func (c *ScrollBarContainer) ViewportHeight() float64 {
	return float64(c.bar.PageStep())
}

func (c *ScrollBarContainer) ContentHeight() float64 {
	return float64(c.bar.Maximum() - c.bar.Minimum() + c.bar.PageStep())
}

func (c *ScrollBarContainer) ScrollChanges() uint64 {
	return c.changes
}
