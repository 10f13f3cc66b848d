package pdf

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents a bounding box (rectangle) in PDF user space, where Y
// grows upward.
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom (PDF coordinate system)
	Width  float64
	Height float64
}

// NewBBoxFromPoints creates a bounding box from two opposite corners in
// any order.
func NewBBoxFromPoints(p1, p2 Point) BBox {
	x, y := min(p1.X, p2.X), min(p1.Y, p2.Y)
	return BBox{X: x, Y: y, Width: abs(p2.X - p1.X), Height: abs(p2.Y - p1.Y)}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y + b.Height
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Expand returns a new bounding box grown by margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// Union returns the smallest bounding box containing both boxes
func (b BBox) Union(other BBox) BBox {
	left, bottom := min(b.Left(), other.Left()), min(b.Bottom(), other.Bottom())
	right, top := max(b.Right(), other.Right()), max(b.Top(), other.Top())
	return BBox{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// near reports whether two coordinates are within tol of each other.
func near(a, b, tol float64) bool {
	return abs(a-b) <= tol
}
