package ctree

import (
	"fmt"

	"github.com/ctree-analysis/pkg/image"
	"github.com/ctree-analysis/pkg/neighborhood"
	"github.com/ctree-analysis/pkg/utils"
)

// Tree is a built component tree (max-tree): the connected components of the
// upper level sets of an image, ordered by inclusion, annotated with the
// selected attribute bundles.
type Tree[T image.Pixel] struct {
	img   *image.Image[T]
	nbh   *neighborhood.Neighborhood
	root  *Node
	index [][]*Node
	// status holds, per original-image offset, the per-level label of the
	// owning node; combined with the pixel's intensity it resolves the node.
	status []int32

	hMin, hMax int
	nodeCount  int

	attrs      AttributeSet
	delta      int
	ringRadius int
	gradient   *image.Image[T]
	saveBorder bool
	logger     utils.Logger

	bfs []*Node
}

// Option configures a Build call.
type Option[T image.Pixel] func(*Tree[T])

// WithNeighborhood overrides the default 8-connected 2D connectivity.
func WithNeighborhood[T image.Pixel](n *neighborhood.Neighborhood) Option[T] {
	return func(t *Tree[T]) { t.nbh = n }
}

// WithAttributes selects the attribute bundles to compute.
func WithAttributes[T image.Pixel](attrs AttributeSet) Option[T] {
	return func(t *Tree[T]) { t.attrs = attrs }
}

// WithDelta sets the MSER stability step. It also selects the MSER bundle.
func WithDelta[T image.Pixel](delta int) Option[T] {
	return func(t *Tree[T]) {
		t.delta = delta
		t.attrs |= AttrMSER
	}
}

// WithRingRadius sets the neighborhood-ring radius used by the OTSU bundle.
// When unset the radius defaults to the MSER delta.
func WithRingRadius[T image.Pixel](r int) Option[T] {
	return func(t *Tree[T]) { t.ringRadius = r }
}

// WithGradient provides the gradient image averaged by the border-gradient
// bundle. It must have the same dimensions as the input.
func WithGradient[T image.Pixel](g *image.Image[T]) Option[T] {
	return func(t *Tree[T]) { t.gradient = g }
}

// WithBorderPixels makes the contour pass record per-node contour pixels.
// Implied by the border-gradient bundle.
func WithBorderPixels[T image.Pixel]() Option[T] {
	return func(t *Tree[T]) { t.saveBorder = true }
}

// WithLogger sets the construction logger.
func WithLogger[T image.Pixel](l utils.Logger) Option[T] {
	return func(t *Tree[T]) { t.logger = l }
}

// Build constructs the component tree of img and computes the selected
// attribute bundles. With no options it uses 8-connected 2D connectivity and
// computes the area bundle.
func Build[T image.Pixel](img *image.Image[T], opts ...Option[T]) (*Tree[T], error) {
	if img == nil || img.Len() == 0 {
		return nil, fmt.Errorf("nil or empty image")
	}

	t := &Tree[T]{
		img:    img,
		attrs:  AttrArea,
		delta:  1,
		logger: &utils.NullLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.nbh == nil {
		t.nbh = neighborhood.Make2DN8()
	}
	t.attrs = t.attrs.normalize()
	if t.ringRadius <= 0 {
		t.ringRadius = t.delta
	}
	if t.attrs.Has(AttrBorderGradient) {
		t.saveBorder = true
		if t.gradient == nil {
			return nil, fmt.Errorf("border-gradient bundle requires a gradient image")
		}
		if t.gradient.Width() != img.Width() || t.gradient.Height() != img.Height() ||
			t.gradient.Depth() != img.Depth() {
			return nil, fmt.Errorf("gradient image dimensions do not match input")
		}
	}

	f, err := newFlooder(img, t.nbh)
	if err != nil {
		return nil, err
	}
	root, index, err := f.run()
	if err != nil {
		return nil, err
	}

	t.root = root
	t.index = index
	t.hMin = f.hMin
	t.hMax = f.hMax
	t.status = f.croppedStatus()
	t.nodeCount = f.nextID

	t.logger.Debug("flooded %d pixels into %d nodes over %d levels",
		img.Len(), t.nodeCount, f.levels)

	// The contour pass scans the bordered workspace, so it runs while the
	// flooder still holds it.
	if t.attrs.needsContour() {
		t.scanContours(f)
	}
	t.computeAttributes()

	return t, nil
}

// Root returns the root node. The root is its own parent.
func (t *Tree[T]) Root() *Node {
	return t.root
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree[T]) NodeCount() int {
	return t.nodeCount
}

// HMin returns the minimum intensity level of the input.
func (t *Tree[T]) HMin() int { return t.hMin }

// HMax returns the maximum intensity level of the input.
func (t *Tree[T]) HMax() int { return t.hMax }

// Image returns the input image the tree was built from.
func (t *Tree[T]) Image() *image.Image[T] { return t.img }

// Attributes returns the normalized attribute selection.
func (t *Tree[T]) Attributes() AttributeSet { return t.attrs }

// Delta returns the MSER stability step.
func (t *Tree[T]) Delta() int { return t.delta }

// Nodes returns all nodes in BFS order from the root. The slice is cached;
// callers must not modify it.
func (t *Tree[T]) Nodes() []*Node {
	if t.bfs != nil {
		return t.bfs
	}
	order := make([]*Node, 0, t.nodeCount)
	order = append(order, t.root)
	for i := 0; i < len(order); i++ {
		order = append(order, order[i].Children...)
	}
	t.bfs = order
	return order
}

// NodeOfOffset returns the node owning the pixel at a linear offset of the
// original image.
func (t *Tree[T]) NodeOfOffset(off int) *Node {
	level := int(t.img.AtOffset(off)) - t.hMin
	return t.index[level][t.status[off]]
}

// NodeOf returns the node owning the pixel at (x, y, z).
func (t *Tree[T]) NodeOf(x, y, z int) *Node {
	return t.NodeOfOffset(t.img.Offset(x, y, z))
}

// collectSubtreePixels appends to buf the offsets of every pixel in n's
// subtree (n included) and returns the extended slice.
func collectSubtreePixels(n *Node, buf []int) []int {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		buf = append(buf, cur.Pixels...)
		stack = append(stack, cur.Children...)
	}
	return buf
}
