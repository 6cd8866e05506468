package ctree

import "math"

// computeAttributes runs the selected attribute recursions in dependency
// order. Reverse BFS order gives a post-order schedule (children before
// parents); forward BFS gives pre-order.
func (t *Tree[T]) computeAttributes() {
	order := t.Nodes()

	// Base aggregation: turn the flood-time local area/sum/sumSquare into
	// subtree aggregates. Everything else depends on these.
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		for _, c := range n.Children {
			n.Area += c.Area
			n.Sum += c.Sum
			n.SumSquare += c.SumSquare
		}
		a := float64(n.Area)
		n.Mean = float64(n.Sum) / a
		n.Variance = float64(n.SumSquare)/a - n.Mean*n.Mean
	}

	if t.attrs.Has(AttrContrast) {
		for i := len(order) - 1; i >= 0; i-- {
			n := order[i]
			for _, c := range n.Children {
				if cc := int64(c.H-n.H) + c.Contrast; cc > n.Contrast {
					n.Contrast = cc
				}
			}
		}
	}

	if t.attrs.Has(AttrVolume) {
		for i := len(order) - 1; i >= 0; i-- {
			n := order[i]
			// Root convention: h - 0, so the root volume equals the sum of
			// all pixel intensities.
			parentH := 0
			if !n.IsRoot() {
				parentH = n.Parent.H
			}
			n.Volume = n.Area * int64(n.H-parentH)
			for _, c := range n.Children {
				n.Volume += c.Volume
			}
		}
	}

	if t.attrs.Has(AttrSubNodes) {
		for i := len(order) - 1; i >= 0; i-- {
			n := order[i]
			n.SubNodes = int64(len(n.Children))
			for _, c := range n.Children {
				n.SubNodes += c.SubNodes
			}
		}
	}

	if t.attrs.Has(AttrBoundingBox) {
		for i := len(order) - 1; i >= 0; i-- {
			n := order[i]
			for _, c := range n.Children {
				n.unionBBox(c)
			}
		}
	}

	if t.attrs.Has(AttrAreaDerivatives) {
		for _, n := range order {
			if n.IsRoot() {
				continue
			}
			p := n.Parent
			dh := float64(n.H - p.H)
			da := float64(p.Area - n.Area)
			n.AreaDerivativeH = da / dh
			n.AreaDerivativeAreaN = da / float64(n.Area)
			n.AreaDerivativeAreaNH = n.AreaDerivativeAreaN / float64(n.Area)
			n.AreaDerivativeAreaNHDerivative = p.AreaDerivativeAreaNH - n.AreaDerivativeAreaNH
		}
	}

	if t.attrs.Has(AttrMSER) {
		t.computeMSER()
	}

	if t.attrs.Has(AttrComplexityCompacity) {
		for _, n := range order {
			if n.Area > 0 {
				n.Complexity = 1000 * n.ContourLength / n.Area
			}
			if n.ContourLength > 0 {
				n.Compacity = int64(1000.0 * 4.0 * math.Pi * float64(n.Area) /
					float64(n.ContourLength*n.ContourLength))
			} else {
				n.Compacity = 0
			}
		}
	}

	if t.attrs.needsRing() {
		t.computeRingStats()
	}

	if t.attrs.Has(AttrBorderGradient) {
		t.computeBorderGradient()
	}
}

// computeMSER walks each node's ancestor chain until the level gap reaches
// delta. Nodes whose chain hits the root before the gap is reached are
// maximally unstable: +Inf.
func (t *Tree[T]) computeMSER() {
	for _, n := range t.Nodes() {
		anc := n
		for !anc.IsRoot() && n.H-anc.H < t.delta {
			anc = anc.Parent
		}
		if n.H-anc.H >= t.delta {
			da := float64(anc.Area - n.Area)
			n.MSER = da / float64(n.Area)
			n.AreaDerivativeDeltaH = da / float64(n.H-anc.H)
			n.AreaDerivativeDeltaAreaF = da / float64(anc.Area)
		} else {
			n.MSER = math.Inf(1)
			n.AreaDerivativeDeltaH = math.Inf(1)
			n.AreaDerivativeDeltaAreaF = math.Inf(1)
		}
	}
}

// computeBorderGradient averages the gradient image over each node's
// recorded contour pixels.
func (t *Tree[T]) computeBorderGradient() {
	for _, n := range t.Nodes() {
		if len(n.PixelsBorder) == 0 {
			continue
		}
		var sum int64
		for _, off := range n.PixelsBorder {
			sum += int64(t.gradient.AtOffset(off))
		}
		n.MeanGradientBorder = float64(sum) / float64(len(n.PixelsBorder))
	}
}
