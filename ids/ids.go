// Package ids allocates short unique phone identifiers.
package ids

import "github.com/rs/xid"

// New returns a new globally-unique, lexicographically-sortable phone id.
func New() string {
	return xid.New().String()
}
