package policy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hexloc/phone"
)

var _ = Describe("PointerManager", func() {
	var (
		root   *RA
		leaves []*RA
		mgr    *PointerManager
	)

	BeforeEach(func() {
		root, leaves = buildSmallTree()
		mgr = NewPointerManager(nil)
	})

	It("leaves an ancestor-chain pointer on every RA from leaf to root", func() {
		p := &phone.Phone{ID: "A"}
		leaf := leaves[0]

		mgr.Arrive(p, leaf)

		for _, ra := range ancestors(leaf) {
			rec, ok := ra.registered[p.ID]
			Expect(ok).To(BeTrue(), "missing record at depth %d", ra.Depth)
			if ra == leaf {
				Expect(rec.AtLeaf).To(BeTrue())
			} else {
				Expect(rec.AtLeaf).To(BeFalse())
				Expect(rec.Down).NotTo(BeNil())
			}
		}
		Expect(root.registered).To(HaveKey(p.ID))
		Expect(p.NumWrites).To(BeNumerically(">", 0))
	})

	It("prunes the stale path down to the LCA on a move within the same branch", func() {
		p := &phone.Phone{ID: "A"}
		oldLeaf := leaves[0]
		// leaves[0..6] share root.Children[0] as their common parent for a
		// depth-2 tree whose first seven leaves are root's grandchildren
		// through its first child.
		newLeaf := leaves[1]

		mgr.Arrive(p, oldLeaf)
		mgr.Arrive(p, newLeaf)

		_, stillThere := oldLeaf.registered[p.ID]
		Expect(stillThere).To(BeFalse())

		for _, ra := range ancestors(newLeaf) {
			Expect(ra.registered).To(HaveKey(p.ID))
		}
	})

	It("resolves a search to the phone's current leaf", func() {
		caller := &phone.Phone{ID: "CALLER"}
		callee := &phone.Phone{ID: "CALLEE"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)

		target, ok := mgr.Search(caller, callerLeaf, callee.ID)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(calleeLeaf))
		Expect(caller.NumReads).To(BeNumerically(">", 0))
	})

	It("reports voicemail for a callee never registered", func() {
		caller := &phone.Phone{ID: "CALLER"}
		callerLeaf := leaves[0]
		mgr.Arrive(caller, callerLeaf)

		_, ok := mgr.Search(caller, callerLeaf, "GHOST")
		Expect(ok).To(BeFalse())
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
