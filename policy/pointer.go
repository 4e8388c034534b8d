package policy

import "github.com/sarchlab/hexloc/phone"

// PointerManager implements the Basic Pointer policy: every ancestor of a
// phone's leaf stores a pointer to the next hop toward it, and the leaf
// itself stores a record marking the phone's presence.
type PointerManager struct {
	Log Logger
}

// NewPointerManager returns a Basic Pointer manager. log may be nil.
func NewPointerManager(log Logger) *PointerManager {
	if log == nil {
		log = nopLogger{}
	}
	return &PointerManager{Log: log}
}

// Name implements Manager.
func (m *PointerManager) Name() string { return "BasicPointerLocationManager" }

// Arrive implements Manager.
func (m *PointerManager) Arrive(p *phone.Phone, leaf *RA) {
	p.ChargeWrite()
	leaf.registered[p.ID] = Record{AtLeaf: true}
	m.Log.Printf("%d - REGISTER for %s at leaf", leaf.Depth, p.ID)

	if leaf.Parent != nil {
		m.register(leaf.Parent, p, leaf)
	}
}

// register climbs toward the root looking for the least common ancestor
// of the phone's old and new leaves: the first RA that already has a
// record for the phone. That RA's stale subtree is torn down by
// unregister, and every RA visited on the way up (and the LCA itself) is
// rewritten to point down the new path.
func (m *PointerManager) register(ra *RA, p *phone.Phone, childCaller *RA) {
	p.ChargeRead()
	if _, ok := ra.registered[p.ID]; ok {
		m.Log.Printf("%d - REGISTER found LCA for %s", ra.Depth, p.ID)
		m.unregister(ra, p)
	} else if ra.Parent != nil {
		m.register(ra.Parent, p, ra)
	}

	p.ChargeWrite()
	ra.registered[p.ID] = Record{Down: childCaller}
}

// unregister tears down the stale downward chain rooted at ra.
func (m *PointerManager) unregister(ra *RA, p *phone.Phone) {
	p.ChargeRead()
	rec, ok := ra.registered[p.ID]
	if !ok {
		panic("policy: unregister found no record for " + p.ID + " at an RA expected to hold one")
	}
	if !rec.AtLeaf {
		m.unregister(rec.Down, p)
	}

	p.ChargeWrite()
	delete(ra.registered, p.ID)
}

// Depart implements Manager: unconditional deletion from leaf up to the
// root, used when a phone leaves coverage entirely.
func (m *PointerManager) Depart(p *phone.Phone, leaf *RA) {
	for ra := leaf; ra != nil; ra = ra.Parent {
		if _, ok := ra.registered[p.ID]; ok {
			p.ChargeWrite()
			delete(ra.registered, p.ID)
		}
		m.Log.Printf("%d - DARK SPOT DEREGISTER for %s", ra.Depth, p.ID)
	}
}

// Search implements Manager.
func (m *PointerManager) Search(caller *phone.Phone, startLeaf *RA, calleeID string) (*RA, bool) {
	return searchPointerStyle(m.Log, caller, startLeaf, calleeID)
}

// searchPointerStyle implements the Basic Pointer / Forwarding Pointer
// search walk: follow a local record down if present, else climb to the
// parent, until a leaf resolves or the root has nothing.
func searchPointerStyle(log Logger, caller *phone.Phone, ra *RA, calleeID string) (*RA, bool) {
	caller.ChargeRead()
	if rec, ok := ra.registered[calleeID]; ok {
		if rec.AtLeaf {
			log.Printf("%d - SEARCH resolved %s at leaf", ra.Depth, calleeID)
			return ra, true
		}
		return searchPointerStyle(log, caller, rec.Down, calleeID)
	}
	if ra.Parent != nil {
		return searchPointerStyle(log, caller, ra.Parent, calleeID)
	}
	log.Printf("VOICEMAIL for %s", calleeID)
	return nil, false
}
