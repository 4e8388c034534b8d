package policy

import "github.com/sarchlab/hexloc/phone"

// ForwardingManager implements the Forwarding Pointer policy: built on
// Basic Pointer, but registration never tears the stale path down to the
// LCA. Instead it installs a lateral forwarding pointer at the node that
// used to be the next hop of the stale path, redirecting it into the new
// subtree, and leaves every true ancestor's own record untouched once
// that ancestor has ever been written.
type ForwardingManager struct {
	*PointerManager
}

// NewForwardingManager returns a Forwarding Pointer manager. log may be
// nil.
func NewForwardingManager(log Logger) *ForwardingManager {
	if log == nil {
		log = nopLogger{}
	}
	return &ForwardingManager{PointerManager: &PointerManager{Log: log}}
}

// Name implements Manager, shadowing the embedded PointerManager's.
func (m *ForwardingManager) Name() string { return "ForwardingPointerLocationManager" }

// Arrive duplicates Basic Pointer's leaf write (rather than delegating to
// the embedded Arrive) so that the upward climb calls this type's own
// register, not PointerManager's: Go method sets don't dispatch virtually
// through an embedded field.
func (m *ForwardingManager) Arrive(p *phone.Phone, leaf *RA) {
	p.ChargeWrite()
	leaf.registered[p.ID] = Record{AtLeaf: true}
	m.Log.Printf("%d - REGISTER for %s at leaf", leaf.Depth, p.ID)

	if leaf.Parent != nil {
		m.register(leaf.Parent, p, leaf)
	}
}

// register installs a lateral forwarding pointer rather than tearing the
// stale path down to the LCA.
func (m *ForwardingManager) register(ra *RA, p *phone.Phone, childCaller *RA) {
	p.ChargeRead()
	if rec, ok := ra.registered[p.ID]; ok {
		// ra is the LCA of the old and new leaves. Its own record (rec.Down,
		// the stale next hop) is left as-is; everything strictly below that
		// next hop is torn down, and the next hop itself is rewritten to
		// forward laterally into the new subtree.
		s := rec.Down
		m.PointerManager.unregister(s, p)
		p.ChargeWrite()
		s.registered[p.ID] = Record{Down: childCaller}
		m.Log.Printf("%d - REGISTER installed forwarding pointer for %s", s.Depth, p.ID)
	} else if ra.Parent != nil {
		m.register(ra.Parent, p, ra)
	}

	if !ra.recordInstantiated[p.ID] {
		ra.recordInstantiated[p.ID] = true
		p.ChargeWrite()
		ra.registered[p.ID] = Record{Down: childCaller}
	}
}
