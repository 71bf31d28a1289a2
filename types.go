package pdfsearch

import (
	"strings"
	"sync"
)

// Rect represents a bounding box in page coordinates.
// X grows rightward and Y grows downward, so Y0 is the top edge.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Char is a single glyph placement on a page.
type Char struct {
	Rune rune
	X    float64
	Y    float64

	// SpanID names the span this glyph belongs to. It is a lookup key into
	// the page's span map, never a pointer. Empty when the glyph is not part
	// of any span.
	SpanID string
}

// Span is an ordered run of characters sharing one logical text-object
// identity. Character order is rendering order from the source document.
// A span is immutable once built and safe for concurrent use.
type Span struct {
	ID    string
	Chars []Char

	bboxOnce sync.Once
	bbox     Rect
}

// Text returns the concatenated glyphs in stored order.
func (s *Span) Text() string {
	var b strings.Builder
	for _, ch := range s.Chars {
		b.WriteRune(ch.Rune)
	}
	return b.String()
}

// BoundingBox returns the min/max box over the span's characters, computed
// once and cached.
func (s *Span) BoundingBox() Rect {
	s.bboxOnce.Do(func() {
		if bbox, err := CharBounds(s.Chars); err == nil {
			s.bbox = bbox
		}
	})
	return s.bbox
}

// Occurrence is one match of a search query, as the ordered characters that
// produced it.
type Occurrence []Char

// Text returns the concatenated glyphs of the occurrence.
func (o Occurrence) Text() string {
	var b strings.Builder
	for _, ch := range o {
		b.WriteRune(ch.Rune)
	}
	return b.String()
}

// PageResult is the ordered list of occurrences found on a single page.
type PageResult []Occurrence

// SearchResult maps page numbers to the occurrences found on each page.
// Every queried page appears as a key, even with no occurrences; pages that
// were not queried never do.
type SearchResult map[int]PageResult

// PageInput is what a loader yields for one page: the page extents and the
// positioned characters in rendering order, grouped into runs by SpanID.
type PageInput struct {
	Width  float64
	Height float64
	Chars  []Char
}
