// Package report renders the per-phone counter view printed after every
// call, and writes the final three-line results file each policy run
// produces on termination.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/hexloc/phone"
)

// ErrIOFailure wraps any error writing the results file, per the error
// handling design's IOFailure kind.
type ErrIOFailure struct {
	Path string
	Err  error
}

func (e *ErrIOFailure) Error() string {
	return fmt.Sprintf("report: writing %s: %v", e.Path, e.Err)
}

func (e *ErrIOFailure) Unwrap() error { return e.Err }

// PrintCounters writes a table of every phone's cumulative reads and
// writes to w, sorted by phone id for a deterministic rendering.
func PrintCounters(w io.Writer, phones map[string]*phone.Phone) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Phone", "Reads", "Writes", "Mobility"})

	for _, p := range sortedPhones(phones) {
		t.AppendRow(table.Row{p.ID, p.NumReads, p.NumWrites, p.Mobility})
	}

	t.Render()
}

func sortedPhones(phones map[string]*phone.Phone) []*phone.Phone {
	ids := make([]string, 0, len(phones))
	for id := range phones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*phone.Phone, len(ids))
	for i, id := range ids {
		out[i] = phones[id]
	}
	return out
}

// WriteResults writes the exact three-line results file the CLI contract
// requires: "<PolicyName>_results.txt" containing the policy name and the
// summed read/write counters across every phone.
func WriteResults(dir, policyName string, phones map[string]*phone.Phone) error {
	path := dir + "/" + policyName + "_results.txt"

	f, err := os.Create(path)
	if err != nil {
		return &ErrIOFailure{Path: path, Err: err}
	}
	defer f.Close()

	var reads, writes int
	for _, p := range phones {
		reads += p.NumReads
		writes += p.NumWrites
	}

	_, err = fmt.Fprintf(f, "%s\nNumber of searches: %d\nNumber of updates:  %d\n",
		policyName, reads, writes)
	if err != nil {
		return &ErrIOFailure{Path: path, Err: err}
	}
	return nil
}
