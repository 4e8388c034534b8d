package policy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hexloc/phone"
)

var _ = Describe("ValueManager", func() {
	var (
		root   *RA
		leaves []*RA
		mgr    *ValueManager
	)

	BeforeEach(func() {
		root, leaves = buildSmallTree()
		mgr = NewValueManager(nil)
	})

	It("stores the absolute leaf at every ancestor", func() {
		p := &phone.Phone{ID: "A"}
		leaf := leaves[0]

		mgr.Arrive(p, leaf)

		for _, ra := range ancestors(leaf) {
			rec, ok := ra.registered[p.ID]
			Expect(ok).To(BeTrue())
			if ra == leaf {
				Expect(rec.AtLeaf).To(BeTrue())
			} else {
				Expect(rec.Leaf).To(Equal(leaf))
			}
		}
		Expect(root.registered[p.ID].Leaf).To(Equal(leaf))
	})

	It("rewrites every ancestor to the new leaf on a move, leaving none stale", func() {
		p := &phone.Phone{ID: "A"}
		oldLeaf := leaves[0]
		newLeaf := leaves[1]

		mgr.Arrive(p, oldLeaf)
		mgr.Arrive(p, newLeaf)

		_, stillThere := oldLeaf.registered[p.ID]
		Expect(stillThere).To(BeFalse())

		for _, ra := range ancestors(newLeaf) {
			rec, ok := ra.registered[p.ID]
			Expect(ok).To(BeTrue())
			if ra != newLeaf {
				Expect(rec.Leaf).To(Equal(newLeaf))
			}
		}
	})

	It("resolves a search in at most one hop past the first hit", func() {
		caller := &phone.Phone{ID: "CALLER"}
		callee := &phone.Phone{ID: "CALLEE"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)

		before := caller.NumReads
		target, ok := mgr.Search(caller, callerLeaf, callee.ID)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(calleeLeaf))
		// Caller's leaf miss, its parent miss, root hit: the root's record
		// names the leaf, so no read is charged past the hit.
		Expect(caller.NumReads - before).To(Equal(3))
	})

	It("clears every ancestor's record on dark-spot deregistration", func() {
		p := &phone.Phone{ID: "A"}
		leaf := leaves[0]
		mgr.Arrive(p, leaf)

		mgr.Depart(p, leaf)

		for _, ra := range ancestors(leaf) {
			Expect(ra.registered).NotTo(HaveKey(p.ID))
		}
	})
})
