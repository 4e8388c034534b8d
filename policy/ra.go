// Package policy implements the four interchangeable location-management
// policies (Basic Pointer, Basic Value, Replication, Forwarding Pointer)
// over a shared registration-area tree shape, plus the uniform
// read/write accounting used to compare them.
package policy

import (
	"errors"

	"github.com/sarchlab/hexloc/geom"
	"github.com/sarchlab/hexloc/phone"
	"github.com/sarchlab/hexloc/ratree"
)

// ErrUnknownPhone names the unknown-phone error kind. No function in this
// package returns it; the event loop reports unknown ids with
// simloop.ErrUnknownPhone.
var ErrUnknownPhone = errors.New("policy: unknown phone")

// Logger receives the same register/unregister/search trace lines the
// original implementation printed to standard output. The zero value
// (nil) is valid and discards all output.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Record is the heterogeneous value stored in an RA's registered table.
// Its interpretation depends on the owning policy:
//   - Pointer and Forwarding: Down is the next hop toward the phone's
//     leaf, or, when AtLeaf is true, the record names the phone itself.
//   - Value: Leaf is the absolute leaf cell housing the phone.
type Record struct {
	Down   *RA
	Leaf   *RA
	AtLeaf bool
}

// RA is a registration area: one node of the policy-bearing tree that
// mirrors the geometry kernel's hexagon tree. All per-node tables are
// present on every RA regardless of which policy is active; a policy
// only ever touches the tables its own contract describes.
type RA struct {
	Hex    *geom.Hexagon
	Depth  int
	Parent *RA

	// Children is all nil for a leaf RA, otherwise exactly seven entries
	// in N, NE, SE, S, SW, NW, center order.
	Children [7]*RA

	registered         map[string]Record
	localCalls         map[string]int
	phoneMobility      map[string]int
	replicas           map[string]replicaEntry
	recordInstantiated map[string]bool
}

// replicaEntry distinguishes "no replica cached" (absent from the map)
// from "replica present" with either a resolved leaf or an explicit
// out-of-coverage marker.
type replicaEntry struct {
	leaf       *RA
	inCoverage bool
}

func newRA(hex *geom.Hexagon, depth int) *RA {
	return &RA{
		Hex:                hex,
		Depth:              depth,
		registered:         make(map[string]Record),
		localCalls:         make(map[string]int),
		phoneMobility:      make(map[string]int),
		replicas:           make(map[string]replicaEntry),
		recordInstantiated: make(map[string]bool),
	}
}

// IsLeaf reports whether ra has no children.
func (ra *RA) IsLeaf() bool {
	return ra.Children[0] == nil
}

// BuildTree mirrors t's geometry shape with a parallel tree of RAs. It
// returns the root, the list of leaf RAs in the same order as t.Leaves,
// and a lookup from geometry leaf to RA leaf for use with ratree.Locate.
func BuildTree(t *ratree.Tree) (root *RA, leaves []*RA, byHex map[*geom.Hexagon]*RA) {
	root = buildRA(t.Root, nil, 0)
	leaves = collectLeafRAs(root)

	byHex = make(map[*geom.Hexagon]*RA, len(leaves))
	for i, hex := range t.Leaves {
		byHex[hex] = leaves[i]
	}
	return root, leaves, byHex
}

func buildRA(hex *geom.Hexagon, parent *RA, depth int) *RA {
	ra := newRA(hex, depth)
	ra.Parent = parent
	if hex.Children[0] == nil {
		return ra
	}
	for i, childHex := range hex.Children {
		ra.Children[i] = buildRA(childHex, ra, depth+1)
	}
	return ra
}

func collectLeafRAs(ra *RA) []*RA {
	if ra.IsLeaf() {
		return []*RA{ra}
	}
	var leaves []*RA
	for _, child := range ra.Children {
		leaves = append(leaves, collectLeafRAs(child)...)
	}
	return leaves
}

// Manager is the capability set every location-management policy
// implements over the RA tree it was built with.
type Manager interface {
	// Name is the policy's report name, e.g. "BasicPointerLocationManager".
	Name() string

	// Arrive registers p at leaf, which must be the RA p.Cell now points
	// to. It is called for both the none->leaf and leaf->leaf' movement
	// transitions.
	Arrive(p *phone.Phone, leaf *RA)

	// Depart unregisters p from leaf along every ancestor up to the root,
	// used when p leaves coverage entirely (leaf->none).
	Depart(p *phone.Phone, leaf *RA)

	// Search resolves calleeID starting the walk at startLeaf (the
	// caller's current cell). It returns the leaf RA housing the callee,
	// or ok=false if the callee is not reachable (voicemail).
	Search(caller *phone.Phone, startLeaf *RA, calleeID string) (target *RA, ok bool)
}
