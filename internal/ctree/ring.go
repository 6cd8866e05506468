package ctree

import (
	"github.com/ctree-analysis/pkg/collections"
	"github.com/ctree-analysis/pkg/neighborhood"
)

// computeRingStats accumulates, for every node, the statistics of the
// Euclidean ball of radius ringRadius around the node's subtree, excluding
// the subtree's own pixels. Each ring pixel is consumed once per node.
//
// The scratch mask is re-armed per node; the versioned bitset makes that
// O(1) instead of O(image).
func (t *Tree[T]) computeRingStats() {
	var ball *neighborhood.Neighborhood
	if t.img.Depth() == 1 {
		ball = neighborhood.Ball2D(t.ringRadius)
	} else {
		ball = neighborhood.Ball3D(t.ringRadius)
	}
	points := ball.Points()

	scratch := collections.NewVersionedBitset(t.img.Len())
	var buf []int

	for _, n := range t.Nodes() {
		scratch.Reset()
		buf = collectSubtreePixels(n, buf[:0])
		for _, off := range buf {
			scratch.Set(off)
		}

		var area, sum, sumSq int64
		for _, off := range buf {
			x, y, z := t.img.Coords(off)
			for _, p := range points {
				nx, ny, nz := x+p.DX, y+p.DY, z+p.DZ
				if !t.img.Contains(nx, ny, nz) {
					continue
				}
				q := t.img.Offset(nx, ny, nz)
				if scratch.Test(q) {
					continue
				}
				scratch.Set(q)
				v := int64(t.img.AtOffset(q))
				area++
				sum += v
				sumSq += v * v
			}
		}

		n.AreaNghb = area
		n.SumNghb = sum
		n.SumSquareNghb = sumSq
		if area > 0 {
			n.MeanNghb = float64(sum) / float64(area)
			n.VarianceNghb = float64(sumSq)/float64(area) - n.MeanNghb*n.MeanNghb
		}

		if d := n.Variance + n.VarianceNghb; area > 0 && d > 0 {
			diff := n.Mean - n.MeanNghb
			n.Otsu = diff * diff / d
		} else {
			n.Otsu = 0
		}
	}
}
