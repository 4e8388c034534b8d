package policy

import "github.com/sarchlab/hexloc/phone"

// ValueManager implements the Basic Value policy: every ancestor of a
// phone's leaf stores the absolute leaf cell directly, trading more
// writes per movement for at most one hop per search.
type ValueManager struct {
	Log Logger
}

// NewValueManager returns a Basic Value manager. log may be nil.
func NewValueManager(log Logger) *ValueManager {
	if log == nil {
		log = nopLogger{}
	}
	return &ValueManager{Log: log}
}

// Name implements Manager.
func (m *ValueManager) Name() string { return "BasicValueLocationManager" }

// Arrive implements Manager.
func (m *ValueManager) Arrive(p *phone.Phone, leaf *RA) {
	p.ChargeWrite()
	leaf.registered[p.ID] = Record{AtLeaf: true}

	if leaf.Parent != nil {
		m.register(leaf.Parent, p, leaf)
	}
}

// register overwrites ra's record with newLeaf. If ra already had a
// (necessarily stale) record, its old leaf is unwound first; the
// subsequent overwrite is not charged again since it is the same net
// mutation the unregister chain already accounted for.
func (m *ValueManager) register(ra *RA, p *phone.Phone, newLeaf *RA) {
	if rec, ok := ra.registered[p.ID]; ok {
		p.ChargeRead()
		m.unregister(rec.Leaf, p)
	} else {
		p.ChargeWrite()
	}

	ra.registered[p.ID] = Record{Leaf: newLeaf}
	m.Log.Printf("%d - REGISTER %s -> leaf", ra.Depth, p.ID)

	if ra.Parent != nil {
		m.register(ra.Parent, p, newLeaf)
	}
}

// unregister deletes oldLeaf's own record, then climbs, deleting every
// ancestor whose record still equals oldLeaf, and stops at the first
// ancestor whose record differs or is missing. register calls it before
// overwriting its own record, so on a move every ancestor still holds
// oldLeaf and the climb clears the chain up to the root; register then
// rewrites ra and each ancestor above it to the new leaf.
func (m *ValueManager) unregister(oldLeaf *RA, p *phone.Phone) {
	p.ChargeWrite()
	delete(oldLeaf.registered, p.ID)

	ra := oldLeaf
	for ra.Parent != nil {
		p.ChargeRead()
		rec, ok := ra.Parent.registered[p.ID]
		if !ok || rec.Leaf != oldLeaf {
			break
		}
		p.ChargeWrite()
		delete(ra.Parent.registered, p.ID)
		ra = ra.Parent
	}
}

// Depart implements Manager: unconditional deletion from leaf up to the
// root.
func (m *ValueManager) Depart(p *phone.Phone, leaf *RA) {
	for ra := leaf; ra != nil; ra = ra.Parent {
		if _, ok := ra.registered[p.ID]; ok {
			p.ChargeWrite()
			delete(ra.registered, p.ID)
		}
	}
}

// Search implements Manager: climb until a record is found; a non-leaf
// record already names the destination leaf, so no further hop is
// needed.
func (m *ValueManager) Search(caller *phone.Phone, startLeaf *RA, calleeID string) (*RA, bool) {
	ra := startLeaf
	for {
		caller.ChargeRead()
		if rec, ok := ra.registered[calleeID]; ok {
			if rec.AtLeaf {
				return ra, true
			}
			return rec.Leaf, true
		}
		if ra.Parent == nil {
			return nil, false
		}
		ra = ra.Parent
	}
}
