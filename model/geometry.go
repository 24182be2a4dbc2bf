// Package model's geometry types are trimmed to the subset the pipeline
// actually exercises: point/box containment and centering for token and
// column-region placement, and the affine transform the content-stream
// interpreter needs to map text-space coordinates into page space. The
// teacher's fuller rectangle-algebra surface (intersection, union, area,
// overlap ratio, arbitrary rotation) has no caller anywhere in this
// module's line-grouping/column-segmentation code, which only ever tests
// point containment and box centers.
package model

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// BBox represents a bounding box (rectangle), Y measured downward from
// the page's top-left origin, as on Page.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

func (b BBox) left() float64   { return b.X }
func (b BBox) right() float64  { return b.X + b.Width }
func (b BBox) bottom() float64 { return b.Y }
func (b BBox) top() float64    { return b.Y + b.Height }

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains checks if a point is inside the bounding box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.left() && p.X <= b.right() &&
		p.Y >= b.bottom() && p.Y <= b.top()
}

// Matrix represents a 2D affine transformation matrix, in PDF's
// [a b c d e f] content-stream order.
type Matrix [6]float64

// Identity returns an identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply multiplies two matrices.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// IsIdentity returns true if the matrix is an identity matrix.
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}
