package pdfsearch

import "math"

// Intersects reports whether two rectangles overlap. The test is
// open-interval: rectangles that only touch at an edge do not intersect.
func Intersects(a, b Rect) bool {
	return a.X0 < b.X1 && b.X0 < a.X1 && a.Y0 < b.Y1 && b.Y0 < a.Y1
}

// CharBounds computes the min/max bounding box over a set of characters.
func CharBounds(chars []Char) (Rect, error) {
	if len(chars) == 0 {
		return Rect{}, ErrEmptyChars
	}

	r := Rect{X0: chars[0].X, Y0: chars[0].Y, X1: chars[0].X, Y1: chars[0].Y}
	for _, ch := range chars[1:] {
		r.X0 = math.Min(r.X0, ch.X)
		r.Y0 = math.Min(r.Y0, ch.Y)
		r.X1 = math.Max(r.X1, ch.X)
		r.Y1 = math.Max(r.Y1, ch.Y)
	}
	return r, nil
}

// expandRect expands a rectangle by the given amount in all directions.
func expandRect(r Rect, amount float64) Rect {
	return Rect{
		X0: r.X0 - amount,
		Y0: r.Y0 - amount,
		X1: r.X1 + amount,
		Y1: r.Y1 + amount,
	}
}

// mergeRects merges two rectangles into their bounding box.
func mergeRects(a, b Rect) Rect {
	return Rect{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}
