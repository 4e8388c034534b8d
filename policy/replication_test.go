package policy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hexloc/phone"
)

var _ = Describe("ReplicationManager", func() {
	var (
		root   *RA
		leaves []*RA
		mgr    *ReplicationManager
	)

	BeforeEach(func() {
		root, leaves = buildSmallTree()
		mgr = NewReplicationManager(root, nil)
	})

	It("falls back to the ordinary pointer chain when no replica is cached", func() {
		caller := &phone.Phone{ID: "CALLER"}
		callee := &phone.Phone{ID: "CALLEE"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)

		target, ok := mgr.Search(caller, callerLeaf, callee.ID)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(calleeLeaf))

		for _, ra := range ancestors(callerLeaf) {
			Expect(ra.replicas).NotTo(HaveKey(callee.ID))
		}
	})

	It("installs a replica once repeated local calls push the LCMR past SMax", func() {
		callee := &phone.Phone{ID: "CALLEE", Mobility: 1}
		caller := &phone.Phone{ID: "CALLER"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)

		for i := 0; i < 3; i++ {
			mgr.Search(caller, callerLeaf, callee.ID)
		}

		rep, ok := root.replicas[callee.ID]
		Expect(ok).To(BeTrue())
		Expect(rep.inCoverage).To(BeTrue())
		Expect(rep.leaf).To(Equal(calleeLeaf))
	})

	It("evicts a replica once rising mobility drags the LCMR back below SMax", func() {
		callee := &phone.Phone{ID: "CALLEE", Mobility: 1}
		caller := &phone.Phone{ID: "CALLER"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)
		for i := 0; i < 3; i++ {
			mgr.Search(caller, callerLeaf, callee.ID)
		}
		Expect(root.replicas).To(HaveKey(callee.ID))

		callee.Mobility = 100
		mgr.Arrive(callee, calleeLeaf)

		Expect(root.replicas).NotTo(HaveKey(callee.ID))
	})

	It("resolves directly from an in-coverage replica without walking deeper", func() {
		callee := &phone.Phone{ID: "CALLEE", Mobility: 1}
		caller := &phone.Phone{ID: "CALLER"}
		calleeLeaf := leaves[len(leaves)-1]
		callerLeaf := leaves[0]

		mgr.Arrive(callee, calleeLeaf)
		mgr.Arrive(caller, callerLeaf)
		for i := 0; i < 3; i++ {
			mgr.Search(caller, callerLeaf, callee.ID)
		}

		before := caller.NumReads
		target, ok := mgr.Search(caller, callerLeaf, callee.ID)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(calleeLeaf))
		// One read at the caller's leaf, where the replica resolves, plus one
		// read per RA (leaf, parent, root) while recording the call.
		Expect(caller.NumReads - before).To(Equal(4))
	})
})
