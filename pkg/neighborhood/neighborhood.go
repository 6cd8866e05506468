// Package neighborhood defines pixel connectivity: ordered displacement sets
// with flat offsets cached against a bound image size.
package neighborhood

// Point is an integer displacement on the three image axes.
type Point struct {
	DX, DY, DZ int
}

// Neighborhood is an ordered list of displacements. Binding it to an image
// size caches the matching linear offsets; the per-axis extents are used as
// border-pad widths so every neighbor probe of an interior pixel stays inside
// the padded buffer.
//
// Cached offsets are only valid for the size they were bound against; rebind
// after switching to a differently sized image.
type Neighborhood struct {
	points  []Point
	offsets []int
	boundW  int
	boundH  int
	boundD  int
}

// New creates an empty neighborhood.
func New() *Neighborhood {
	return &Neighborhood{}
}

// Add appends a displacement. Insertion order is preserved.
func (n *Neighborhood) Add(dx, dy, dz int) {
	n.points = append(n.points, Point{DX: dx, DY: dy, DZ: dz})
	n.offsets = nil
	n.boundW, n.boundH, n.boundD = 0, 0, 0
}

// Points returns the displacements in insertion order.
func (n *Neighborhood) Points() []Point {
	return n.points
}

// Size returns the number of displacements.
func (n *Neighborhood) Size() int {
	return len(n.points)
}

// Bind recomputes the flat offsets against a (w, h, d) image size.
func (n *Neighborhood) Bind(w, h, d int) {
	n.offsets = make([]int, len(n.points))
	for i, p := range n.points {
		n.offsets[i] = p.DX + p.DY*w + p.DZ*w*h
	}
	n.boundW, n.boundH, n.boundD = w, h, d
}

// Offsets returns the flat offsets from the last Bind call, or nil if the
// neighborhood was never bound (or was modified since).
func (n *Neighborhood) Offsets() []int {
	return n.offsets
}

// BoundSize returns the size the offsets are currently bound to.
func (n *Neighborhood) BoundSize() (w, h, d int) {
	return n.boundW, n.boundH, n.boundD
}

// NegativeExtents returns the per-axis minimum displacements, clamped at
// zero. Their magnitudes are the low-side border-pad widths.
func (n *Neighborhood) NegativeExtents() (dx, dy, dz int) {
	for _, p := range n.points {
		if p.DX < dx {
			dx = p.DX
		}
		if p.DY < dy {
			dy = p.DY
		}
		if p.DZ < dz {
			dz = p.DZ
		}
	}
	return
}

// PositiveExtents returns the per-axis maximum displacements, clamped at
// zero. They are the high-side border-pad widths.
func (n *Neighborhood) PositiveExtents() (dx, dy, dz int) {
	for _, p := range n.points {
		if p.DX > dx {
			dx = p.DX
		}
		if p.DY > dy {
			dy = p.DY
		}
		if p.DZ > dz {
			dz = p.DZ
		}
	}
	return
}

// Make2DN8 returns the 8-connected 2D preset. The origin is excluded: the
// center pixel is not its own neighbor.
func Make2DN8() *Neighborhood {
	n := New()
	n.Add(-1, 0, 0)
	n.Add(1, 0, 0)
	n.Add(0, -1, 0)
	n.Add(0, 1, 0)
	n.Add(-1, -1, 0)
	n.Add(1, -1, 0)
	n.Add(-1, 1, 0)
	n.Add(1, 1, 0)
	return n
}

// Make2DN4 returns the 4-connected 2D preset.
func Make2DN4() *Neighborhood {
	n := New()
	n.Add(-1, 0, 0)
	n.Add(1, 0, 0)
	n.Add(0, -1, 0)
	n.Add(0, 1, 0)
	return n
}

// Make3DN6 returns the 6-connected 3D preset.
func Make3DN6() *Neighborhood {
	n := Make2DN4()
	n.Add(0, 0, -1)
	n.Add(0, 0, 1)
	return n
}

// Ball2D returns all 2D displacements within Euclidean distance r of the
// origin, origin excluded. Used by the neighborhood-ring statistics.
func Ball2D(r int) *Neighborhood {
	n := New()
	if r <= 0 {
		return n
	}
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy <= rr {
				n.Add(dx, dy, 0)
			}
		}
	}
	return n
}

// Ball3D returns all 3D displacements within Euclidean distance r of the
// origin, origin excluded.
func Ball3D(r int) *Neighborhood {
	n := New()
	if r <= 0 {
		return n
	}
	rr := r * r
	for dz := -r; dz <= r; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if dx*dx+dy*dy+dz*dz <= rr {
					n.Add(dx, dy, dz)
				}
			}
		}
	}
	return n
}
