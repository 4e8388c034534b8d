// Command hexloc runs a hierarchical location-management simulation
// under one of four interchangeable policies, selected by a single
// positional argument, and writes a results file on termination.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/hexloc/geom"
	"github.com/sarchlab/hexloc/phone"
	"github.com/sarchlab/hexloc/policy"
	"github.com/sarchlab/hexloc/ratree"
	"github.com/sarchlab/hexloc/report"
	"github.com/sarchlab/hexloc/simloop"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hexloc <policy-index 0-3> [flags]")
		atexit.Exit(1)
		return
	}

	idx, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: malformed policy index %q: %v\n", os.Args[1], err)
		atexit.Exit(1)
		return
	}

	fs := flag.NewFlagSet("hexloc", flag.ExitOnError)
	side := fs.Float64("side", 50, "root hexagon side length")
	depth := fs.Int("depth", 2, "number of 7-way subdivision rounds below the root (2 gives the 49-leaf reference configuration)")
	centerArg := fs.String("center", "0,0", "root hexagon center, \"x,y\"")
	phonesArg := fs.String("phones", "A:0,0;B:0,0", "seed phones, \"id:x,y;id:x,y\"")
	scriptPath := fs.String("script", "", "path to a newline-delimited event script")
	outDir := fs.String("out", ".", "directory the results file is written to")
	trace := fs.Bool("trace", false, "print register/unregister/search trace lines")
	_ = fs.Parse(os.Args[2:])

	center, err := parsePoint(*centerArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		atexit.Exit(1)
		return
	}

	tree, err := ratree.NewBuilder().
		WithCenter(center).
		WithSideLength(*side).
		WithDepth(*depth).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: building tree: %v\n", err)
		atexit.Exit(1)
		return
	}

	phones, err := parsePhones(*phonesArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		atexit.Exit(1)
		return
	}

	var traceLog policy.Logger
	if *trace {
		traceLog = log.New(os.Stderr, "", log.LstdFlags)
	}

	loop, err := simloop.NewBuilder().
		WithTree(tree).
		WithPolicy(policy.Index(idx)).
		WithPhones(phones...).
		WithOutputDir(*outDir).
		WithLogger(traceLog).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		atexit.Exit(1)
		return
	}

	// An arriving phone must register before its first Call or Move event
	// does anything useful; seed registration for every phone already
	// inside coverage.
	for _, ev := range arrivalEvents(phones) {
		_ = loop.Dispatch(ev)
	}

	events, closeFn, err := eventSource(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		atexit.Exit(1)
		return
	}
	defer closeFn()

	for ev := range events {
		err := loop.Dispatch(ev)
		switch {
		case errors.Is(err, simloop.ErrQuit):
			report.PrintCounters(os.Stdout, loop.Phones())
			atexit.Exit(0)
			return
		case errors.Is(err, simloop.ErrUnknownPhone):
			fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		case err != nil:
			fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
			atexit.Exit(1)
			return
		case ev.Kind == simloop.Call:
			report.PrintCounters(os.Stdout, loop.Phones())
		}
	}

	if err := loop.Dispatch(simloop.Event{Kind: simloop.Quit}); err != nil && !errors.Is(err, simloop.ErrQuit) {
		fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
		atexit.Exit(1)
		return
	}
	report.PrintCounters(os.Stdout, loop.Phones())
	atexit.Exit(0)
}

// arrivalEvents synthesizes a Move-in-place event per phone so its
// initial registration happens without requiring the script to move it
// first.
func arrivalEvents(phones []*phone.Phone) []simloop.Event {
	evs := make([]simloop.Event, 0, len(phones))
	for _, p := range phones {
		evs = append(evs, simloop.Event{Kind: simloop.Move, PhoneID: p.ID, DX: 0, DY: 0})
	}
	return evs
}

func parsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Point{}, fmt.Errorf("malformed point %q, want \"x,y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	return geom.Point{X: x, Y: y}, nil
}

// parsePhones parses "id:x,y;id:x,y" into seed phones.
func parsePhones(s string) ([]*phone.Phone, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var phones []*phone.Phone
	for _, entry := range strings.Split(s, ";") {
		idAndPoint := strings.SplitN(entry, ":", 2)
		if len(idAndPoint) != 2 {
			return nil, fmt.Errorf("malformed phone entry %q, want \"id:x,y\"", entry)
		}
		pos, err := parsePoint(idAndPoint[1])
		if err != nil {
			return nil, err
		}
		phones = append(phones, phone.New(strings.TrimSpace(idAndPoint[0]), pos))
	}
	return phones, nil
}

// eventSource returns a channel of events read from scriptPath, or, when
// scriptPath is empty, a channel fed a single Quit event (a no-op run
// useful for smoke-testing the tree and report-file wiring).
func eventSource(scriptPath string) (<-chan simloop.Event, func(), error) {
	if scriptPath == "" {
		ch := make(chan simloop.Event, 1)
		ch <- simloop.Event{Kind: simloop.Quit}
		close(ch)
		return ch, func() {}, nil
	}

	f, err := os.Open(scriptPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening script: %w", err)
	}

	ch := make(chan simloop.Event)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			ev, ok, err := parseScriptLine(scanner.Text())
			if err != nil {
				fmt.Fprintf(os.Stderr, "hexloc: %v\n", err)
				continue
			}
			if !ok {
				continue
			}
			ch <- ev
		}
	}()

	return ch, func() { f.Close() }, nil
}

func parseScriptLine(line string) (simloop.Event, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return simloop.Event{}, false, nil
	}

	fields := strings.Fields(line)
	switch strings.ToUpper(fields[0]) {
	case "MOVE":
		if len(fields) != 4 {
			return simloop.Event{}, false, fmt.Errorf("malformed MOVE line %q", line)
		}
		dx, err1 := strconv.ParseFloat(fields[2], 64)
		dy, err2 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil {
			return simloop.Event{}, false, fmt.Errorf("malformed MOVE line %q", line)
		}
		return simloop.Event{Kind: simloop.Move, PhoneID: fields[1], DX: dx, DY: dy}, true, nil
	case "SELECT":
		if len(fields) != 2 {
			return simloop.Event{}, false, fmt.Errorf("malformed SELECT line %q", line)
		}
		return simloop.Event{Kind: simloop.Select, PhoneID: fields[1]}, true, nil
	case "CALL":
		if len(fields) != 2 {
			return simloop.Event{}, false, fmt.Errorf("malformed CALL line %q", line)
		}
		return simloop.Event{Kind: simloop.Call, CalleeID: fields[1]}, true, nil
	case "DEPTH":
		if len(fields) != 2 {
			return simloop.Event{}, false, fmt.Errorf("malformed DEPTH line %q", line)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return simloop.Event{}, false, fmt.Errorf("malformed DEPTH line %q", line)
		}
		return simloop.Event{Kind: simloop.SetDepth, Depth: n}, true, nil
	case "QUIT":
		return simloop.Event{Kind: simloop.Quit}, true, nil
	default:
		return simloop.Event{}, false, fmt.Errorf("unrecognized event %q", line)
	}
}
