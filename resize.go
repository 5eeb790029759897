package purfectscroll

import "pkt.systems/pslog"

// ResizeCoordinator keeps the scroll ratio across layout changes such as a
// font size change. Begin captures the ratio before reflow and End applies
// it to the new geometry, both within the same UI update.
type ResizeCoordinator struct {
	container Container
	driver    *Driver
	log       pslog.Logger

	pending bool
	ratio   float64
}

// NewResizeCoordinator creates a coordinator for driver's container
func NewResizeCoordinator(container Container, driver *Driver, logger pslog.Logger) *ResizeCoordinator {
	return &ResizeCoordinator{
		container: container,
		driver:    driver,
		log:       loggerOrDefault(logger),
	}
}

// Begin captures the current scroll ratio and holds the driver in place
// until End. A second Begin before End keeps the first capture.
func (r *ResizeCoordinator) Begin() {
	if r.pending {
		return
	}
	r.ratio = scrollRatio(r.driver.position(), r.container.ContentHeight(), r.container.ViewportHeight())
	r.pending = true
	r.driver.holdForReflow()
}

// End reapplies the captured ratio against the new content height
func (r *ResizeCoordinator) End() {
	if !r.pending {
		return
	}
	r.pending = false
	max := maxOffset(r.container.ContentHeight(), r.container.ViewportHeight())
	position := clamp(r.ratio*max, 0, max)
	r.log.Debug("reflow applied", "ratio", r.ratio, "position", position)
	r.driver.relocate(position)
}

// Reflow runs apply between Begin and End
func (r *ResizeCoordinator) Reflow(apply func()) {
	r.Begin()
	defer r.End()
	apply()
}

// Ratio returns the ratio captured by the last Begin
func (r *ResizeCoordinator) Ratio() float64 {
	return r.ratio
}
