package purfectscroll

import "math"

// Detector tells driver-originated container writes from everything else.
//
// Every driver write goes through Write, which bumps the write generation
// and records what the container reported afterwards. Check compares the
// container against that record. Containers implementing
// ScrollChangeCounter let Check skip the comparison entirely when nothing
// wrote to the container since the driver did.
type Detector struct {
	container Container
	counter   ScrollChangeCounter
	tolerance float64

	gen      uint64 // driver write generation
	written  float64
	changes  uint64
	armed    bool
	inWrite  bool
	detected uint64
}

// NewDetector creates a detector for container
func NewDetector(container Container, tolerance float64) *Detector {
	d := &Detector{container: container, tolerance: tolerance}
	if counter, ok := container.(ScrollChangeCounter); ok {
		d.counter = counter
	}
	return d
}

// Write sets the container offset on behalf of the driver
func (d *Detector) Write(offset float64) {
	d.gen++
	d.inWrite = true
	d.container.SetScrollOffset(offset)
	d.inWrite = false
	d.baseline()
}

// Sync takes the container's current offset as the driver's own, without
// writing. Used when the driver adopts a position it did not write.
func (d *Detector) Sync() {
	d.baseline()
}

// Disarm stops reporting until the next Write or Sync
func (d *Detector) Disarm() {
	d.armed = false
}

func (d *Detector) baseline() {
	d.written = d.container.ScrollOffset()
	if d.counter != nil {
		d.changes = d.counter.ScrollChanges()
	}
	d.armed = true
}

// Check returns the container's offset and whether it was moved by someone
// other than the driver since the driver's last write. Change notifications
// the container emits while the driver's own write is in progress never
// count.
func (d *Detector) Check() (observed float64, interfered bool) {
	observed = d.container.ScrollOffset()
	if !d.armed || d.inWrite {
		return observed, false
	}
	if d.counter != nil && d.counter.ScrollChanges() == d.changes {
		return observed, false
	}
	if math.Abs(observed-d.written) <= d.tolerance {
		return observed, false
	}
	d.detected++
	return observed, true
}

// Generation returns the number of driver writes so far
func (d *Detector) Generation() uint64 {
	return d.gen
}

// Detections returns how many interference reports Check has made
func (d *Detector) Detections() uint64 {
	return d.detected
}
