package ctree

import (
	"fmt"

	"github.com/ctree-analysis/pkg/collections"
	"github.com/ctree-analysis/pkg/image"
)

// ReconstructionRule selects how inactive subtrees are repainted from their
// nearest active ancestor.
type ReconstructionRule int

const (
	// ReconstructDirect paints each active node at its own level and each
	// connected chain of inactive descendants at the level of its active
	// parent; active nodes below such chains are processed independently.
	ReconstructDirect ReconstructionRule = iota
	// ReconstructMin prunes: an inactive child collapses its whole subtree
	// onto the nearest active ancestor, regardless of deeper active nodes.
	ReconstructMin
	// ReconstructMax walks up from each leaf to the first active ancestor
	// and paints that ancestor's pixel subtree at its own level.
	ReconstructMax
)

// ParseRule converts a rule name from config or command line.
func ParseRule(name string) (ReconstructionRule, error) {
	switch name {
	case "direct", "DIRECT":
		return ReconstructDirect, nil
	case "min", "MIN":
		return ReconstructMin, nil
	case "max", "MAX":
		return ReconstructMax, nil
	default:
		return 0, fmt.Errorf("unknown reconstruction rule %q", name)
	}
}

// String returns the rule name.
func (r ReconstructionRule) String() string {
	switch r {
	case ReconstructDirect:
		return "direct"
	case ReconstructMin:
		return "min"
	case ReconstructMax:
		return "max"
	default:
		return "unknown"
	}
}

// Reconstruct produces an image from the (possibly filtered) tree under the
// given rule. An unfiltered tree reconstructs to the input exactly under
// every rule that visits all nodes.
func (t *Tree[T]) Reconstruct(rule ReconstructionRule) (*image.Image[T], error) {
	out, err := image.New[T](t.img.Width(), t.img.Height(), t.img.Depth())
	if err != nil {
		return nil, err
	}

	switch rule {
	case ReconstructDirect:
		t.reconstructDirect(out)
	case ReconstructMin:
		t.reconstructMin(out)
	case ReconstructMax:
		t.reconstructMax(out)
	default:
		return nil, fmt.Errorf("unknown reconstruction rule %d", rule)
	}
	return out, nil
}

func (t *Tree[T]) paint(out *image.Image[T], pixels []int, h int) {
	v := T(h)
	for _, off := range pixels {
		out.SetOffset(off, v)
	}
}

func (t *Tree[T]) reconstructDirect(out *image.Image[T]) {
	var buf []int
	for _, n := range t.Nodes() {
		if !n.Active {
			continue
		}
		t.paint(out, n.Pixels, n.H)
		for _, c := range n.Children {
			if c.Active {
				continue
			}
			// Aggregate the connected chain of inactive descendants; active
			// descendants paint themselves on their own BFS visit.
			buf = buf[:0]
			stack := []*Node{c}
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				buf = append(buf, cur.Pixels...)
				for _, cc := range cur.Children {
					if !cc.Active {
						stack = append(stack, cc)
					}
				}
			}
			t.paint(out, buf, n.H)
		}
	}
}

func (t *Tree[T]) reconstructMin(out *image.Image[T]) {
	if !t.root.Active {
		return
	}
	var buf []int
	queue := []*Node{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		t.paint(out, n.Pixels, n.H)
		for _, c := range n.Children {
			if c.Active {
				queue = append(queue, c)
			} else {
				buf = collectSubtreePixels(c, buf[:0])
				t.paint(out, buf, n.H)
			}
		}
	}
}

func (t *Tree[T]) reconstructMax(out *image.Image[T]) {
	painted := collections.NewBitset(t.nodeCount)
	var buf []int
	for _, n := range t.Nodes() {
		if !n.IsLeaf() {
			continue
		}
		anc := n
		for !anc.Active && !anc.IsRoot() {
			anc = anc.Parent
		}
		if !anc.Active || painted.Test(anc.ID) {
			continue
		}
		painted.Set(anc.ID)
		buf = collectSubtreePixels(anc, buf[:0])
		t.paint(out, buf, anc.H)
	}
}

// AttributeImage is a float-valued image produced by attribute-indexed
// reconstruction.
type AttributeImage struct {
	W, H, D int
	Data    []float64
}

// At returns the value at (x, y, z).
func (a *AttributeImage) At(x, y, z int) float64 {
	return a.Data[x+y*a.W+z*a.W*a.H]
}

// ReconstructAttribute paints each pixel with the selection attribute of a
// node chosen on the pixel's owning-node chain walked toward the root. The
// root itself is never a candidate. Candidates whose limit attribute lies
// outside [limitMin, limitMax] are skipped. Under MIN/MAX the candidate with
// the extremal selection attribute wins; under DIRECT the first (deepest)
// candidate wins. Pixels with no candidate stay at zero.
func (t *Tree[T]) ReconstructAttribute(rule ReconstructionRule, selAttr, limitAttr string,
	limitMin, limitMax float64) (*AttributeImage, error) {

	sel, err := attributeAccessor(selAttr)
	if err != nil {
		return nil, err
	}
	var limit func(*Node) float64
	if limitAttr != "" {
		if limit, err = attributeAccessor(limitAttr); err != nil {
			return nil, err
		}
	}

	out := &AttributeImage{
		W:    t.img.Width(),
		H:    t.img.Height(),
		D:    t.img.Depth(),
		Data: make([]float64, t.img.Len()),
	}

	for off := 0; off < t.img.Len(); off++ {
		var chosen *Node
		for n := t.NodeOfOffset(off); !n.IsRoot(); n = n.Parent {
			if limit != nil {
				if v := limit(n); v < limitMin || v > limitMax {
					continue
				}
			}
			switch {
			case chosen == nil:
				chosen = n
			case rule == ReconstructMin && sel(n) < sel(chosen):
				chosen = n
			case rule == ReconstructMax && sel(n) > sel(chosen):
				chosen = n
			}
			if rule == ReconstructDirect && chosen != nil {
				break
			}
		}
		if chosen != nil {
			out.Data[off] = sel(chosen)
		}
	}
	return out, nil
}

// attributeAccessor resolves an attribute name to a node accessor.
func attributeAccessor(name string) (func(*Node) float64, error) {
	switch name {
	case "level", "h":
		return func(n *Node) float64 { return float64(n.H) }, nil
	case "area":
		return func(n *Node) float64 { return float64(n.Area) }, nil
	case "contrast":
		return func(n *Node) float64 { return float64(n.Contrast) }, nil
	case "volume":
		return func(n *Node) float64 { return float64(n.Volume) }, nil
	case "mean":
		return func(n *Node) float64 { return n.Mean }, nil
	case "variance":
		return func(n *Node) float64 { return n.Variance }, nil
	case "mser":
		return func(n *Node) float64 { return n.MSER }, nil
	case "otsu":
		return func(n *Node) float64 { return n.Otsu }, nil
	case "contour_length":
		return func(n *Node) float64 { return float64(n.ContourLength) }, nil
	case "complexity":
		return func(n *Node) float64 { return float64(n.Complexity) }, nil
	case "compacity":
		return func(n *Node) float64 { return float64(n.Compacity) }, nil
	case "sub_nodes":
		return func(n *Node) float64 { return float64(n.SubNodes) }, nil
	case "mean_gradient_border":
		return func(n *Node) float64 { return n.MeanGradientBorder }, nil
	case "area_nghb":
		return func(n *Node) float64 { return float64(n.AreaNghb) }, nil
	case "mean_nghb":
		return func(n *Node) float64 { return n.MeanNghb }, nil
	case "variance_nghb":
		return func(n *Node) float64 { return n.VarianceNghb }, nil
	default:
		return nil, fmt.Errorf("unknown attribute %q", name)
	}
}
