package purfectscrollgtk

import "github.com/gotk3/gotk3/gtk"

// AdjustmentContainer drives a vertical gtk.Adjustment, usually the one
// of a ScrolledWindow
type AdjustmentContainer struct {
	adj      *gtk.Adjustment
	changes  uint64
	onScroll func()
}

// NewAdjustmentContainer wraps adj. onScroll runs after every value
// change, including the container's own writes.
func NewAdjustmentContainer(adj *gtk.Adjustment, onScroll func()) *AdjustmentContainer {
	c := &AdjustmentContainer{adj: adj, onScroll: onScroll}
	adj.Connect("value-changed", func() {
		c.changes++
		if c.onScroll != nil {
			c.onScroll()
		}
	})
	return c
}

// ScrollOffset returns the adjustment value
func (c *AdjustmentContainer) ScrollOffset() float64 {
	return c.adj.GetValue() - c.adj.GetLower()
}

// SetScrollOffset sets the adjustment value; GTK clamps it
func (c *AdjustmentContainer) SetScrollOffset(offset float64) {
	c.adj.SetValue(c.adj.GetLower() + offset)
}

// ViewportHeight returns the page size
func (c *AdjustmentContainer) ViewportHeight() float64 {
	return c.adj.GetPageSize()
}

// ContentHeight returns the adjustment range
func (c *AdjustmentContainer) ContentHeight() float64 {
	return c.adj.GetUpper() - c.adj.GetLower()
}

// ScrollChanges counts value-changed signals
func (c *AdjustmentContainer) ScrollChanges() uint64 {
	return c.changes
}
