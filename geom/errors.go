package geom

import "errors"

// ErrInvalidGeometry is returned when a hexagon is constructed from a
// non-positive side length or a degenerate (zero-length) orientation
// vector.
var ErrInvalidGeometry = errors.New("geom: invalid geometry")
