package geom

import (
	"fmt"
	"math"
)

// sixtyDegrees is pi/3, the fixed angular step between adjacent hexagon
// vertices.
const sixtyDegrees = math.Pi / 3

// vertexOrder names the six vertex slots, matching the data model's
// N, NE, SE, S, SW, NW ordering.
var vertexOrder = [6]string{"N", "NE", "SE", "S", "SW", "NW"}

// Hexagon is a planar regular hexagon, and also a node in the recursive
// subdivision tree: it owns up to seven children and keeps a non-owning
// back-reference to its parent.
type Hexagon struct {
	Center     Point
	NorthUnit  Point
	SideLength float64
	Vertices   [6]Point

	Depth    int
	Parent   *Hexagon
	Children [7]*Hexagon // N, NE, SE, S, SW, NW, center; all nil means leaf
}

// New builds a hexagon from its center, the unit vector pointing at its
// northern-most vertex, and its side length. The remaining five vertices
// are found by rotating the scaled north vector by -pi/3 five times.
func New(center, northUnit Point, sideLength float64) (*Hexagon, error) {
	if sideLength <= 0 {
		return nil, fmt.Errorf("%w: side length %v is not positive", ErrInvalidGeometry, sideLength)
	}
	if northUnit.Len() == 0 {
		return nil, fmt.Errorf("%w: degenerate orientation vector", ErrInvalidGeometry)
	}

	unit := northUnit.Scale(1 / northUnit.Len())
	h := &Hexagon{
		Center:     center,
		NorthUnit:  unit,
		SideLength: sideLength,
		Depth:      0,
		Parent:     nil,
	}
	h.Vertices = buildVertices(center, unit, sideLength)
	return h, nil
}

// buildVertices generates the north-offset vector and rotates it five
// times by -pi/3 to produce the remaining five vertices, in N, NE, SE, S,
// SW, NW order.
func buildVertices(center, northUnit Point, sideLength float64) [6]Point {
	var verts [6]Point
	dir := northUnit.Scale(sideLength)
	verts[0] = center.Add(dir)
	for i := 1; i < 6; i++ {
		dir = dir.Rotate(-sixtyDegrees)
		verts[i] = center.Add(dir)
	}
	return verts
}

// VertexName returns the compass label of vertex i.
func VertexName(i int) string {
	return vertexOrder[i%6]
}

// Contains reports whether point lies inside the hexagon, using a
// half-open-edge ray-casting (crossing-number) test. Boundary points are
// therefore not all excluded: a point exactly on an edge shared by two
// adjacent hexagons is counted inside exactly one of them.
func (h *Hexagon) Contains(point Point) bool {
	inside := false
	v := h.Vertices
	for i, j := 0, 5; i < 6; j, i = i, i+1 {
		vi, vj := v[i], v[j]
		crosses := (vi.Y > point.Y) != (vj.Y > point.Y)
		if !crosses {
			continue
		}
		xIntersect := vj.X + (point.Y-vj.Y)*(vi.X-vj.X)/(vi.Y-vj.Y)
		if point.X < xIntersect {
			inside = !inside
		}
	}
	return inside
}

// mat2 is a 2x2 matrix applied to free vectors, used for the fixed
// rotation that relates a parent hexagon's orientation to its children's.
type mat2 struct {
	a, b, c, d float64 // [[a b] [c d]]
}

func (m mat2) apply(v Point) Point {
	return Point{
		X: m.a*v.X + m.b*v.Y,
		Y: m.c*v.X + m.d*v.Y,
	}
}

func (m mat2) inverse() mat2 {
	det := m.a*m.d - m.b*m.c
	return mat2{
		a: m.d / det, b: -m.b / det,
		c: -m.c / det, d: m.a / det,
	}
}

func rotationMatrix(theta float64) mat2 {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat2{a: c, b: -s, c: s, d: c}
}

// childNorth computes the north direction used to orient this hexagon's
// children, following the M*n' = n_NE relation: M = 2*R(pi/3) + I, n_NE
// is the current north-east vertex offset, and n' = M^-1 * n_NE. The
// magnitude of n' is the child's side length; its direction (normalized)
// is the child's computed north unit vector.
func (h *Hexagon) childNorth() (unit Point, sideLength float64) {
	m := rotationMatrix(sixtyDegrees)
	m.a, m.b, m.c, m.d = 2*m.a+1, 2*m.b, 2*m.c, 2*m.d+1
	nNE := h.Vertices[1].Sub(h.Center)
	nPrime := m.inverse().apply(nNE)
	length := nPrime.Len()
	if length == 0 {
		return h.NorthUnit, h.SideLength
	}
	return nPrime.Scale(1 / length), length
}

// CreateChildren subdivides the hexagon into seven children tiling it: six
// around the edges (N, NE, SE, S, SW, NW) plus one sharing the parent's
// center. Even child depths re-align to the global north (0,1); odd
// depths inherit the computed orientation from childNorth, keeping the
// tiling's rotation stable across levels.
func (h *Hexagon) CreateChildren() error {
	computedUnit, childSide := h.childNorth()

	childDepth := h.Depth + 1
	orientation := computedUnit
	if childDepth%2 == 0 {
		orientation = Point{X: 0, Y: 1}
	}

	offsets := childCenterOffsets(computedUnit, childSide)

	for i := 0; i < 6; i++ {
		center := h.Center.Add(offsets[i])
		child, err := New(center, orientation, childSide)
		if err != nil {
			return err
		}
		child.Depth = childDepth
		child.Parent = h
		h.Children[i] = child
	}

	center, err := New(h.Center, orientation, childSide)
	if err != nil {
		return err
	}
	center.Depth = childDepth
	center.Parent = h
	h.Children[6] = center

	return nil
}

// childCenterOffsets returns the six radial offsets, in N, NE, SE, S, SW,
// NW order, from a parent's center to its six outer children's centers.
// The radial step is twice the child's north vector, mirroring the factor
// of two introduced by M = 2*R(pi/3) + I in childNorth.
func childCenterOffsets(computedNorth Point, childSide float64) [6]Point {
	var offsets [6]Point
	step := computedNorth.Scale(2 * childSide / computedNorth.Len())
	offsets[0] = step
	for i := 1; i < 6; i++ {
		step = step.Rotate(-sixtyDegrees)
		offsets[i] = step
	}
	return offsets
}

// NeighborCenter returns the center of the i-th edge-neighbor hexagon
// (0=NE, 1=E, 2=SE, 3=SW, 4=W, 5=NW), a same-level hexagon sharing an
// edge with h, used only for neighbor indexing and never for subdivision.
func (h *Hexagon) NeighborCenter(i int) Point {
	// Adjacent same-level hexagons are centered 2*apothem-equivalent steps
	// away along the direction bisecting the shared edge; we reuse the
	// vertex directions already computed for h to avoid re-deriving the
	// edge geometry.
	vi := h.Vertices[i%6].Sub(h.Center)
	vj := h.Vertices[(i+1)%6].Sub(h.Center)
	return h.Center.Add(vi).Add(vj)
}
