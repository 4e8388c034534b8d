package simloop

import (
	"fmt"

	"github.com/sarchlab/hexloc/geom"
	"github.com/sarchlab/hexloc/phone"
	"github.com/sarchlab/hexloc/policy"
	"github.com/sarchlab/hexloc/ratree"
	"github.com/sarchlab/hexloc/report"
)

// Logger is the trace logger the loop hands to the active policy for its
// register/unregister/search trace lines; the loop itself writes no trace
// lines. The nil value is valid and discards all output.
type Logger = policy.Logger

// Loop is the single-threaded, cooperative event dispatcher: it owns the
// RA tree, the phone directory, and the active policy, and processes one
// event to completion before the next is read.
type Loop struct {
	tree    *ratree.Tree
	root    *policy.RA
	leaves  []*policy.RA
	byHex   map[*geom.Hexagon]*policy.RA
	manager policy.Manager
	phones  map[string]*phone.Phone

	selected  string
	depth     int
	outputDir string
	log       Logger
}

// Builder assembles a Loop with the same fluent, chain-returning-value
// style used by this codebase's other component builders.
type Builder struct {
	tree      *ratree.Tree
	index     policy.Index
	phones    []*phone.Phone
	outputDir string
	log       Logger
}

// NewBuilder returns a Builder with the results file written to the
// current directory by default.
func NewBuilder() Builder {
	return Builder{outputDir: "."}
}

// WithTree sets the registration-area tree the loop runs over.
func (b Builder) WithTree(t *ratree.Tree) Builder {
	b.tree = t
	return b
}

// WithPolicy selects the location-management policy by its CLI index.
func (b Builder) WithPolicy(index policy.Index) Builder {
	b.index = index
	return b
}

// WithPhones seeds the phone directory.
func (b Builder) WithPhones(phones ...*phone.Phone) Builder {
	b.phones = append(b.phones, phones...)
	return b
}

// WithOutputDir sets the directory the results file is written to.
func (b Builder) WithOutputDir(dir string) Builder {
	b.outputDir = dir
	return b
}

// WithLogger sets the trace logger. nil discards all trace output.
func (b Builder) WithLogger(log Logger) Builder {
	b.log = log
	return b
}

// Build constructs the Loop, wiring the RA tree to the chosen policy.
func (b Builder) Build() (*Loop, error) {
	if b.tree == nil {
		return nil, fmt.Errorf("simloop: no tree configured")
	}

	root, leaves, byHex := policy.BuildTree(b.tree)
	mgr, err := policy.New(b.index, root, b.log)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		tree:      b.tree,
		root:      root,
		leaves:    leaves,
		byHex:     byHex,
		manager:   mgr,
		phones:    make(map[string]*phone.Phone, len(b.phones)),
		outputDir: b.outputDir,
		log:       b.log,
	}
	for _, p := range b.phones {
		l.phones[p.ID] = p
	}
	return l, nil
}

// Phones returns the phone directory, keyed by id.
func (l *Loop) Phones() map[string]*phone.Phone { return l.phones }

// PolicyName returns the active policy's report name.
func (l *Loop) PolicyName() string { return l.manager.Name() }

// Dispatch routes one event through the core. A Quit event writes the
// results file and returns ErrQuit; every other event returns nil on
// success or ErrUnknownPhone for a malformed phone/callee id.
func (l *Loop) Dispatch(ev Event) error {
	switch ev.Kind {
	case Move:
		return l.move(ev)
	case Select:
		if _, ok := l.phones[ev.PhoneID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPhone, ev.PhoneID)
		}
		l.selected = ev.PhoneID
		return nil
	case Call:
		return l.call(ev)
	case SetDepth:
		l.depth = ev.Depth // view-only; no core state change
		return nil
	case Quit:
		if err := report.WriteResults(l.outputDir, l.PolicyName(), l.phones); err != nil {
			return err
		}
		return ErrQuit
	default:
		return fmt.Errorf("simloop: unrecognized event kind %d", ev.Kind)
	}
}

func (l *Loop) move(ev Event) error {
	p, ok := l.phones[ev.PhoneID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPhone, ev.PhoneID)
	}

	p.Position = p.Position.Add(geom.Point{X: ev.DX, Y: ev.DY})
	newLeaf := l.tree.Locate(p.Position)
	if !p.HasMovedToNewCell(newLeaf) {
		return nil
	}

	switch {
	case p.Cell == nil && newLeaf != nil:
		p.Cell = newLeaf
		p.Mobility++
		l.manager.Arrive(p, l.byHex[newLeaf])
	case p.Cell != nil && newLeaf != nil:
		p.Cell = newLeaf
		p.Mobility++
		l.manager.Arrive(p, l.byHex[newLeaf])
	case p.Cell != nil && newLeaf == nil:
		l.manager.Depart(p, l.byHex[p.Cell])
		p.Cell = nil
		p.Mobility++
	}
	return nil
}

func (l *Loop) call(ev Event) error {
	caller, ok := l.phones[l.selected]
	if !ok {
		return fmt.Errorf("%w: no phone selected", ErrUnknownPhone)
	}
	if _, ok := l.phones[ev.CalleeID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPhone, ev.CalleeID)
	}
	if caller.Cell == nil {
		// The caller itself is in a dark spot; there is no RA to start the
		// search from, so the call cannot even reach voicemail.
		return nil
	}

	l.manager.Search(caller, l.byHex[caller.Cell], ev.CalleeID)
	return nil
}
