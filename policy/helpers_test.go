package policy

import (
	"github.com/sarchlab/hexloc/geom"
	"github.com/sarchlab/hexloc/ratree"
)

// buildSmallTree constructs a depth-2 tree (root, 7 children, 49 leaves)
// and mirrors it into an RA tree, for use by every policy's test suite.
func buildSmallTree() (root *RA, leaves []*RA) {
	t, err := ratree.NewBuilder().
		WithCenter(geom.Point{X: 0, Y: 0}).
		WithSideLength(300).
		WithDepth(2).
		Build()
	if err != nil {
		panic(err)
	}
	root, leaves, _ = BuildTree(t)
	return root, leaves
}

// ancestors returns ra and every ancestor up to and including the root.
func ancestors(ra *RA) []*RA {
	var out []*RA
	for ; ra != nil; ra = ra.Parent {
		out = append(out, ra)
	}
	return out
}
