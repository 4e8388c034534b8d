package policy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hexloc/phone"
)

var _ = Describe("ForwardingManager", func() {
	var (
		root   *RA
		leaves []*RA
		mgr    *ForwardingManager
	)

	BeforeEach(func() {
		root, leaves = buildSmallTree()
		mgr = NewForwardingManager(nil)
	})

	It("leaves an ancestor-chain pointer on first arrival, same as Basic Pointer", func() {
		p := &phone.Phone{ID: "A"}
		leaf := leaves[0]

		mgr.Arrive(p, leaf)

		for _, ra := range ancestors(leaf) {
			rec, ok := ra.registered[p.ID]
			Expect(ok).To(BeTrue())
			if ra == leaf {
				Expect(rec.AtLeaf).To(BeTrue())
			} else {
				Expect(rec.Down).NotTo(BeNil())
			}
		}
	})

	It("installs a lateral forwarding pointer at the LCA's stale next hop instead of tearing it down", func() {
		p := &phone.Phone{ID: "A"}
		oldLeaf := leaves[0]
		newLeaf := leaves[1]

		mgr.Arrive(p, oldLeaf)
		mgr.Arrive(p, newLeaf)

		lca := oldLeaf.Parent
		Expect(lca).To(Equal(newLeaf.Parent))

		rec, ok := lca.registered[p.ID]
		Expect(ok).To(BeTrue())
		staleNextHop := rec.Down
		Expect(staleNextHop).To(Equal(oldLeaf))

		forwardRec, ok := staleNextHop.registered[p.ID]
		Expect(ok).To(BeTrue())
		Expect(forwardRec.AtLeaf).To(BeFalse())
		Expect(forwardRec.Down).To(Equal(newLeaf))
	})

	It("resolves a search by following the lateral forwarding pointer to the new leaf", func() {
		caller := &phone.Phone{ID: "CALLER"}
		callee := &phone.Phone{ID: "CALLEE"}
		callerLeaf := leaves[len(leaves)-1]
		oldCalleeLeaf := leaves[0]
		newCalleeLeaf := leaves[1]

		mgr.Arrive(caller, callerLeaf)
		mgr.Arrive(callee, oldCalleeLeaf)
		mgr.Arrive(callee, newCalleeLeaf)

		target, ok := mgr.Search(caller, callerLeaf, callee.ID)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(newCalleeLeaf))
	})

	It("inherits dark-spot deregistration from Basic Pointer, clearing every ancestor", func() {
		p := &phone.Phone{ID: "A"}
		leaf := leaves[0]
		mgr.Arrive(p, leaf)

		mgr.Depart(p, leaf)

		for _, ra := range ancestors(leaf) {
			Expect(ra.registered).NotTo(HaveKey(p.ID))
		}
	})
})
