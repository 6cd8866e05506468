package ctree

// scanContours makes one pass over the bordered workspace and accumulates
// contour lengths (and optionally contour pixels) up the ancestor chains.
//
// A pixel is contour when it has a strictly darker neighbor or touches the
// padded frame; the frame counts as infinitely dark, so frame-adjacent
// pixels are contour for every ancestor up to and including the root.
func (t *Tree[T]) scanContours(f *flooder[T]) {
	bordered := f.bordered
	for p := 0; p < bordered.Len(); p++ {
		if f.status[p] == statusBorder {
			continue
		}
		v := int(bordered.AtOffset(p))

		hitsBorder := false
		darker := false
		minValue := v
		for _, d := range f.offsets {
			q := p + d
			if f.status[q] == statusBorder {
				hitsBorder = true
				minValue = t.hMin
				continue
			}
			if nv := int(bordered.AtOffset(q)); nv < v {
				darker = true
				if nv < minValue {
					minValue = nv
				}
			}
		}
		if !darker && !hitsBorder {
			continue
		}

		bx, by, bz := bordered.Coords(p)
		off := t.img.Offset(bx-f.negX, by-f.negY, bz-f.negZ)

		n := t.index[v-t.hMin][f.status[p]]
		if hitsBorder {
			for {
				n.ContourLength++
				if t.saveBorder {
					n.PixelsBorder = append(n.PixelsBorder, off)
				}
				if n.IsRoot() {
					break
				}
				n = n.Parent
			}
		} else {
			for n.H > minValue {
				n.ContourLength++
				if t.saveBorder {
					n.PixelsBorder = append(n.PixelsBorder, off)
				}
				if n.IsRoot() {
					break
				}
				n = n.Parent
			}
		}
	}
}
