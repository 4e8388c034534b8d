// Package ratree builds the fixed-depth registration-area tree by
// recursively subdividing a root hexagon, and exposes containment-based
// leaf lookup for the phone model.
package ratree

import (
	"fmt"
	"sync"

	"github.com/sarchlab/hexloc/geom"
)

// Tree is the geometric shape of the registration-area hierarchy: a root
// hexagon recursively subdivided to a fixed depth. It carries no
// policy-specific state; policy.BuildTree mirrors this shape with the
// per-node tables each location-management policy needs.
type Tree struct {
	Root   *geom.Hexagon
	Leaves []*geom.Hexagon
	Depth  int

	// mu guards nothing on the current single-threaded dispatch path; it is
	// reserved for a future multi-threaded variant that locks per subtree,
	// the same way cgra.Side guards its name table independent of the
	// simulation's main dataflow.
	mu sync.RWMutex
}

// Lock and Unlock expose mu for a future multi-threaded caller; the CLI
// never calls them.
func (t *Tree) Lock()    { t.mu.Lock() }
func (t *Tree) Unlock()  { t.mu.Unlock() }
func (t *Tree) RLock()   { t.mu.RLock() }
func (t *Tree) RUnlock() { t.mu.RUnlock() }

// Builder assembles a Tree with the same fluent, chain-returning-value
// style used throughout this codebase's component builders.
type Builder struct {
	center     geom.Point
	northUnit  geom.Point
	sideLength float64
	depth      int
}

// NewBuilder returns a Builder with the reference configuration's
// defaults: north-facing root orientation and depth 2, meaning two rounds
// of 7-way subdivision below the root (root, 7 children, 49 grandchildren
// as leaves).
func NewBuilder() Builder {
	return Builder{
		northUnit: geom.Point{X: 0, Y: 1},
		depth:     2,
	}
}

// WithCenter sets the root hexagon's center.
func (b Builder) WithCenter(c geom.Point) Builder {
	b.center = c
	return b
}

// WithNorthUnit sets the root hexagon's orientation.
func (b Builder) WithNorthUnit(n geom.Point) Builder {
	b.northUnit = n
	return b
}

// WithSideLength sets the root hexagon's side length.
func (b Builder) WithSideLength(s float64) Builder {
	b.sideLength = s
	return b
}

// WithDepth sets the number of 7-way subdivision rounds applied below the
// root (0 means the root itself is the only leaf; 2 is the reference
// configuration's 49-leaf tree).
func (b Builder) WithDepth(d int) Builder {
	b.depth = d
	return b
}

// Build constructs the tree, recursively subdividing every node down to
// the configured depth.
func (b Builder) Build() (*Tree, error) {
	root, err := geom.New(b.center, b.northUnit, b.sideLength)
	if err != nil {
		return nil, fmt.Errorf("ratree: building root: %w", err)
	}

	t := &Tree{Root: root, Depth: b.depth}
	if err := subdivide(root, b.depth); err != nil {
		return nil, fmt.Errorf("ratree: subdividing: %w", err)
	}
	t.Leaves = collectLeaves(root, b.depth)
	return t, nil
}

func subdivide(h *geom.Hexagon, remaining int) error {
	if remaining <= 0 {
		return nil
	}
	if err := h.CreateChildren(); err != nil {
		return err
	}
	for _, child := range h.Children {
		if err := subdivide(child, remaining-1); err != nil {
			return err
		}
	}
	return nil
}

func collectLeaves(h *geom.Hexagon, remaining int) []*geom.Hexagon {
	if remaining <= 0 {
		return []*geom.Hexagon{h}
	}
	var leaves []*geom.Hexagon
	for _, child := range h.Children {
		leaves = append(leaves, collectLeaves(child, remaining-1)...)
	}
	return leaves
}

// Locate returns the leaf hexagon containing point, or nil if point falls
// in a dark spot outside every leaf's coverage.
func (t *Tree) Locate(point geom.Point) *geom.Hexagon {
	for _, leaf := range t.Leaves {
		if leaf.Contains(point) {
			return leaf
		}
	}
	return nil
}
