package policy

import "github.com/sarchlab/hexloc/phone"

// ReplicationManager implements PCS replica caching on top of Basic
// Pointer registration: every RA also tracks a local-call-to-mobility
// ratio (LCMR) per callee and installs or evicts a replica entry as that
// ratio crosses the configured threshold.
type ReplicationManager struct {
	*PointerManager
	Root *RA

	// SMin and SMax are the reference LCMR parameters (default 2, 2). The
	// documented install/evict rule in §4.6 thresholds only on SMax; SMin
	// is carried for configurability but unused by the current rule, same
	// as S_min in the original manager.
	SMin, SMax float64
}

// NewReplicationManager returns a Replication manager rooted at root with
// the reference S_min = S_max = 2 defaults. log may be nil.
func NewReplicationManager(root *RA, log Logger) *ReplicationManager {
	if log == nil {
		log = nopLogger{}
	}
	return &ReplicationManager{
		PointerManager: &PointerManager{Log: log},
		Root:           root,
		SMin:           2,
		SMax:           2,
	}
}

// Name implements Manager, shadowing the embedded PointerManager's.
func (m *ReplicationManager) Name() string { return "ReplicationLocationManager" }

// Arrive registers the phone exactly as Basic Pointer does, then trickles
// the new mobility count to every RA in the tree, re-evaluating each
// one's LCMR-driven replica.
func (m *ReplicationManager) Arrive(p *phone.Phone, leaf *RA) {
	m.PointerManager.Arrive(p, leaf)
	m.trickleDown(m.Root, p, leaf)
}

func (m *ReplicationManager) trickleDown(ra *RA, p *phone.Phone, leaf *RA) {
	p.ChargeWrite()
	ra.phoneMobility[p.ID] = p.Mobility

	lcmr := lcmrOf(ra, p.ID)
	switch {
	case lcmr > m.SMax:
		ra.replicas[p.ID] = replicaEntry{leaf: leaf, inCoverage: leaf != nil}
	case lcmr < m.SMax:
		delete(ra.replicas, p.ID)
	}

	for _, child := range ra.Children {
		if child != nil {
			m.trickleDown(child, p, leaf)
		}
	}
}

func lcmrOf(ra *RA, calleeID string) float64 {
	mobility := ra.phoneMobility[calleeID]
	if mobility <= 0 {
		return 0
	}
	return float64(ra.localCalls[calleeID]) / float64(mobility)
}

// Search resolves the callee, preferring any cached replica along the
// way, then charges the caller's subtree walk against local-call
// statistics and installs newly-qualifying replicas.
func (m *ReplicationManager) Search(caller *phone.Phone, startLeaf *RA, calleeID string) (*RA, bool) {
	target, ok := m.resolve(caller, startLeaf, calleeID)
	m.updateCallStats(caller, startLeaf, calleeID, target, ok)
	return target, ok
}

// resolve walks the replica-aware pointer chain: a cached replica
// terminates the search immediately (even if stale; the next movement's
// trickleDown repairs it), otherwise it behaves like Basic Pointer.
func (m *ReplicationManager) resolve(caller *phone.Phone, ra *RA, calleeID string) (*RA, bool) {
	caller.ChargeRead()
	if rep, ok := ra.replicas[calleeID]; ok {
		if rep.inCoverage {
			return rep.leaf, true
		}
		return nil, false
	}

	if rec, ok := ra.registered[calleeID]; ok {
		if rec.AtLeaf {
			return ra, true
		}
		return m.resolve(caller, rec.Down, calleeID)
	}
	if ra.Parent != nil {
		return m.resolve(caller, ra.Parent, calleeID)
	}
	return nil, false
}

// updateCallStats increments local_calls[calleeID] for every RA from the
// caller's leaf up to the root, and installs a replica at any RA whose
// LCMR newly crosses SMax.
func (m *ReplicationManager) updateCallStats(caller *phone.Phone, startLeaf *RA, calleeID string, target *RA, ok bool) {
	for ra := startLeaf; ra != nil; ra = ra.Parent {
		caller.ChargeRead()
		caller.ChargeWrite()
		ra.localCalls[calleeID]++

		if lcmrOf(ra, calleeID) <= m.SMax {
			continue
		}
		if _, exists := ra.replicas[calleeID]; exists {
			continue
		}
		caller.ChargeWrite()
		ra.replicas[calleeID] = replicaEntry{leaf: target, inCoverage: ok}
	}
}
