package ctree

import (
	"fmt"

	"github.com/ctree-analysis/pkg/image"
	"github.com/ctree-analysis/pkg/neighborhood"
)

// Status-image sentinels. Non-negative values are per-level node labels.
const (
	statusActive    int32 = -1 // not yet queued
	statusNotActive int32 = -2 // queued but not yet popped
	statusBorder    int32 = -3 // padded cell, never processed
)

// flooder holds the per-construction state of the Salembier hierarchical
// queue flooding: the bordered workspace, the status image, one FIFO per
// intensity level, and the per-level node index.
//
// All of it is private to one Build call; the nodes it allocates are handed
// to the Tree on completion.
type flooder[T image.Pixel] struct {
	orig     *image.Image[T]
	bordered *image.Image[T]
	nbh      *neighborhood.Neighborhood
	offsets  []int

	status      []int32
	queues      [][]int // FIFO per level, indexed by h - hMin
	heads       []int
	numberNodes []int32
	nodeAtLevel []bool
	index       [][]*Node

	hMin   int
	hMax   int
	levels int

	negX, negY, negZ int

	nextID int
}

func newFlooder[T image.Pixel](img *image.Image[T], nbh *neighborhood.Neighborhood) (*flooder[T], error) {
	if nbh.Size() == 0 {
		return nil, fmt.Errorf("empty neighborhood")
	}
	for _, p := range nbh.Points() {
		if p.DX == 0 && p.DY == 0 && p.DZ == 0 {
			return nil, fmt.Errorf("neighborhood must not contain the origin")
		}
	}

	minV, maxV := img.MinMax()
	hMin, hMax := int(minV), int(maxV)
	levels := hMax - hMin + 1

	nx, ny, nz := nbh.NegativeExtents()
	px, py, pz := nbh.PositiveExtents()
	neg := [3]int{-nx, -ny, -nz}
	pos := [3]int{px, py, pz}

	bordered, err := img.PadBorder(neg, pos, minV)
	if err != nil {
		return nil, err
	}
	nbh.Bind(bordered.Width(), bordered.Height(), bordered.Depth())

	f := &flooder[T]{
		orig:        img,
		bordered:    bordered,
		nbh:         nbh,
		offsets:     nbh.Offsets(),
		status:      make([]int32, bordered.Len()),
		queues:      make([][]int, levels),
		heads:       make([]int, levels),
		numberNodes: make([]int32, levels),
		nodeAtLevel: make([]bool, levels),
		index:       make([][]*Node, levels),
		hMin:        hMin,
		hMax:        hMax,
		levels:      levels,
		negX:        neg[0],
		negY:        neg[1],
		negZ:        neg[2],
	}

	for i := range f.status {
		f.status[i] = statusBorder
	}

	// Mark interior cells active and build the per-level histogram that
	// pre-sizes the queues.
	hist := make([]int, levels)
	img.ForEach(func(x, y, z, off int) {
		b := bordered.Offset(x+f.negX, y+f.negY, z+f.negZ)
		f.status[b] = statusActive
		hist[int(img.AtOffset(off))-hMin]++
	})
	for h, count := range hist {
		if count > 0 {
			f.queues[h] = make([]int, 0, count)
		}
	}

	return f, nil
}

// nodeAt materializes (if needed) and returns the k-th node at level h.
func (f *flooder[T]) nodeAt(h, k int) *Node {
	for len(f.index[h]) <= k {
		n := newNode(f.nextID, h+f.hMin)
		f.nextID++
		f.index[h] = append(f.index[h], n)
	}
	return f.index[h][k]
}

// run performs the flooding and returns the root and the per-level index.
func (f *flooder[T]) run() (*Node, [][]*Node, error) {
	// Seed: the first active pixel at level hMin in offset order.
	seed := -1
	for off, st := range f.status {
		if st == statusActive && int(f.bordered.AtOffset(off)) == f.hMin {
			seed = off
			break
		}
	}
	if seed < 0 {
		return nil, nil, fmt.Errorf("no pixel found at minimum level %d", f.hMin)
	}
	f.queues[0] = append(f.queues[0], seed)
	f.status[seed] = statusNotActive
	f.nodeAtLevel[0] = true

	if m := f.flood(0); m >= 0 {
		return nil, nil, fmt.Errorf("flood terminated at level %d, expected below %d", m+f.hMin, f.hMin)
	}
	if len(f.index[0]) == 0 {
		return nil, nil, fmt.Errorf("flood produced no root node")
	}

	root := f.index[0][0]
	if !root.IsRoot() {
		return nil, nil, fmt.Errorf("flood root is not self-parented")
	}
	return root, f.index, nil
}

// flood drains the level-h queue, recursing into strictly higher levels as
// regional maxima are discovered, then links the completed component to the
// nearest lower level with pending pixels. Returns that level, or h-1 (< 0
// at the root) when none remains.
//
// The recursion depth is bounded by hMax-hMin; Go's growable stacks make
// this safe even for 16-bit data.
func (f *flooder[T]) flood(h int) int {
	for f.heads[h] < len(f.queues[h]) {
		p := f.queues[h][f.heads[h]]
		f.heads[h]++

		label := f.numberNodes[h]
		f.status[p] = label
		node := f.nodeAt(h, int(label))

		// Record the pixel against the original image coordinates.
		bx, by, bz := f.bordered.Coords(p)
		x, y, z := bx-f.negX, by-f.negY, bz-f.negZ
		off := f.orig.Offset(x, y, z)
		v := int64(h + f.hMin)
		node.Pixels = append(node.Pixels, off)
		node.Area++
		node.Sum += v
		node.SumSquare += v * v
		node.growBBox(x, y, z)

		for _, d := range f.offsets {
			q := p + d
			if f.status[q] != statusActive {
				continue
			}
			hq := int(f.bordered.AtOffset(q)) - f.hMin
			f.queues[hq] = append(f.queues[hq], q)
			f.status[q] = statusNotActive
			f.nodeAtLevel[hq] = true
			if hq > h {
				m := hq
				for m > h {
					m = f.flood(m)
				}
			}
		}
	}

	f.numberNodes[h]++
	child := f.nodeAt(h, int(f.numberNodes[h])-1)

	m := h - 1
	for m >= 0 && !f.nodeAtLevel[m] {
		m--
	}
	if m >= 0 {
		parent := f.nodeAt(m, int(f.numberNodes[m]))
		parent.AddChild(child)
	} else {
		child.Parent = child
	}

	f.nodeAtLevel[h] = false
	return m
}

// croppedStatus projects the bordered status image back onto the original
// image dimensions.
func (f *flooder[T]) croppedStatus() []int32 {
	out := make([]int32, f.orig.Len())
	f.orig.ForEach(func(x, y, z, off int) {
		b := f.bordered.Offset(x+f.negX, y+f.negY, z+f.negZ)
		out[off] = f.status[b]
	})
	return out
}
