package neighborhood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake2DN8(t *testing.T) {
	n := Make2DN8()
	require.Equal(t, 8, n.Size())

	for _, p := range n.Points() {
		assert.False(t, p.DX == 0 && p.DY == 0 && p.DZ == 0, "origin must be excluded")
		assert.Equal(t, 0, p.DZ)
		assert.LessOrEqual(t, p.DX*p.DX+p.DY*p.DY, 2)
	}

	// Symmetric: every displacement has its negation
	seen := make(map[Point]bool)
	for _, p := range n.Points() {
		seen[p] = true
	}
	for _, p := range n.Points() {
		assert.True(t, seen[Point{-p.DX, -p.DY, -p.DZ}])
	}
}

func TestMake2DN4_And3DN6(t *testing.T) {
	assert.Equal(t, 4, Make2DN4().Size())
	assert.Equal(t, 6, Make3DN6().Size())
}

func TestBind_Offsets(t *testing.T) {
	n := Make2DN8()
	n.Bind(10, 5, 1)

	offs := n.Offsets()
	require.Len(t, offs, 8)
	assert.Equal(t, -1, offs[0])  // (-1, 0, 0)
	assert.Equal(t, 1, offs[1])   // (1, 0, 0)
	assert.Equal(t, -10, offs[2]) // (0, -1, 0)
	assert.Equal(t, 10, offs[3])  // (0, 1, 0)
	assert.Equal(t, -11, offs[4]) // (-1, -1, 0)
	assert.Equal(t, 11, offs[7])  // (1, 1, 0)

	w, h, d := n.BoundSize()
	assert.Equal(t, [3]int{10, 5, 1}, [3]int{w, h, d})
}

func TestBind_Rebinding(t *testing.T) {
	n := Make2DN4()
	n.Bind(10, 10, 1)
	first := n.Offsets()[3]

	n.Bind(20, 10, 1)
	assert.NotEqual(t, first, n.Offsets()[3])
	assert.Equal(t, 20, n.Offsets()[3])
}

func TestAdd_InvalidatesBinding(t *testing.T) {
	n := Make2DN4()
	n.Bind(10, 10, 1)
	require.NotNil(t, n.Offsets())

	n.Add(0, 0, -1)
	assert.Nil(t, n.Offsets())
}

func TestExtents(t *testing.T) {
	n := Make2DN8()
	nx, ny, nz := n.NegativeExtents()
	px, py, pz := n.PositiveExtents()

	assert.Equal(t, [3]int{-1, -1, 0}, [3]int{nx, ny, nz})
	assert.Equal(t, [3]int{1, 1, 0}, [3]int{px, py, pz})
}

func TestExtents_Asymmetric(t *testing.T) {
	n := New()
	n.Add(2, 0, 0)
	n.Add(0, -3, 0)

	nx, ny, _ := n.NegativeExtents()
	px, py, _ := n.PositiveExtents()
	assert.Equal(t, 0, nx)
	assert.Equal(t, -3, ny)
	assert.Equal(t, 2, px)
	assert.Equal(t, 0, py)
}

func TestBall2D(t *testing.T) {
	// r=1 is the 4-neighborhood
	assert.Equal(t, 4, Ball2D(1).Size())

	// r=2: all |d|^2 <= 4, origin excluded -> 12 points
	b2 := Ball2D(2)
	assert.Equal(t, 12, b2.Size())
	for _, p := range b2.Points() {
		assert.LessOrEqual(t, p.DX*p.DX+p.DY*p.DY, 4)
		assert.False(t, p.DX == 0 && p.DY == 0)
	}

	assert.Equal(t, 0, Ball2D(0).Size())
}

func TestBall3D(t *testing.T) {
	// r=1 is the 6-neighborhood
	assert.Equal(t, 6, Ball3D(1).Size())
	assert.Equal(t, 0, Ball3D(0).Size())
}
