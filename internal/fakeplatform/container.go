package fakeplatform

import "math"

// Container is a scrollable view with settable geometry. Every offset
// change increments Changes, whoever makes it.
type Container struct {
	Offset   float64
	Viewport float64
	Content  float64
	Quantum  float64 // round offsets to this step when > 0

	Changes uint64
	Sets    int
}

// NewContainer creates a container at offset 0
func NewContainer(viewport, content float64) *Container {
	return &Container{Viewport: viewport, Content: content}
}

func (c *Container) ScrollOffset() float64   { return c.Offset }
func (c *Container) ViewportHeight() float64 { return c.Viewport }
func (c *Container) ContentHeight() float64  { return c.Content }
func (c *Container) ScrollChanges() uint64   { return c.Changes }

// SetScrollOffset clamps and optionally quantizes offset
func (c *Container) SetScrollOffset(offset float64) {
	max := c.Content - c.Viewport
	if max < 0 {
		max = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > max {
		offset = max
	}
	if c.Quantum > 0 {
		offset = math.Round(offset/c.Quantum) * c.Quantum
	}
	c.Sets++
	if offset != c.Offset {
		c.Offset = offset
		c.Changes++
	}
}

// UserScroll simulates a human moving the view
func (c *Container) UserScroll(offset float64) {
	c.SetScrollOffset(offset)
}

// Resize changes the content height, keeping the offset in bounds the way
// a toolkit would
func (c *Container) Resize(content float64) {
	c.Content = content
	max := c.Content - c.Viewport
	if max < 0 {
		max = 0
	}
	if c.Offset > max {
		c.Offset = max
		c.Changes++
	}
}

// Uncounted hides the change counter, for containers that cannot report one
type Uncounted struct {
	C *Container
}

func (u Uncounted) ScrollOffset() float64       { return u.C.ScrollOffset() }
func (u Uncounted) SetScrollOffset(off float64) { u.C.SetScrollOffset(off) }
func (u Uncounted) ViewportHeight() float64     { return u.C.ViewportHeight() }
func (u Uncounted) ContentHeight() float64      { return u.C.ContentHeight() }
