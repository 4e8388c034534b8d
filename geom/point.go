// Package geom implements the recursive hexagonal geometry kernel: point
// construction, containment tests, and the seven-way subdivision used to
// build a registration-area tree.
package geom

import "math"

// Point is an absolute or free 2-D vector in the plane.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Len returns the Euclidean length of p treated as a free vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Rotate returns p rotated counter-clockwise by theta radians about the
// origin, treating p as a free vector.
func (p Point) Rotate(theta float64) Point {
	c, s := math.Cos(theta), math.Sin(theta)
	return Point{
		X: p.X*c - p.Y*s,
		Y: p.X*s + p.Y*c,
	}
}
