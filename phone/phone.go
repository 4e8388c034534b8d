// Package phone holds the mobile-phone model: identity, position, the
// leaf cell it currently occupies, and the read/write/mobility counters
// that the location-management policies charge against it.
package phone

import "github.com/sarchlab/hexloc/geom"

// Phone is a single mobile unit tracked by the simulation.
type Phone struct {
	ID       string
	Position geom.Point

	// Cell is the leaf hexagon currently containing Position, or nil if
	// the phone is in a dark spot outside every leaf's coverage.
	Cell *geom.Hexagon

	// Mobility counts every successful leaf transition, including the
	// none->leaf and leaf->none edges.
	Mobility int

	NumReads  int
	NumWrites int
}

// New creates a phone at position with no cell assigned; the caller is
// expected to drive its first location update.
func New(id string, position geom.Point) *Phone {
	return &Phone{ID: id, Position: position}
}

// Move offsets the phone's position by (dx, dy) and returns the leaf the new position falls in, which may differ from
// p.Cell or be nil.
func (p *Phone) Move(dx, dy float64, tree interface {
	Locate(geom.Point) *geom.Hexagon
}) *geom.Hexagon {
	p.Position = p.Position.Add(geom.Point{X: dx, Y: dy})
	return tree.Locate(p.Position)
}

// HasMovedToNewCell reports whether newLeaf differs from the phone's
// currently recorded cell.
func (p *Phone) HasMovedToNewCell(newLeaf *geom.Hexagon) bool {
	return newLeaf != p.Cell
}

// ChargeRead increments the phone's read counter by one, per the uniform
// accounting rule: one read per key-presence check or value fetch against
// any RA table.
func (p *Phone) ChargeRead() {
	p.NumReads++
}

// ChargeWrite increments the phone's write counter by one, per the
// uniform accounting rule: one write per net mutation of any key in an
// RA's tables.
func (p *Phone) ChargeWrite() {
	p.NumWrites++
}
