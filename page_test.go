package pdfsearch

import (
	"testing"

	"github.com/pkg/errors"
)

// textChars lays out a string as one character per glyph, starting at
// (x, y) and advancing dx per character.
func textChars(text, spanID string, x, y, dx float64) []Char {
	runes := []rune(text)
	chars := make([]Char, 0, len(runes))
	for i, r := range runes {
		chars = append(chars, Char{Rune: r, X: x + float64(i)*dx, Y: y, SpanID: spanID})
	}
	return chars
}

func TestNewPageIndex_GroupsSpans(t *testing.T) {
	chars := append(
		textChars("Hello", "s1", 100, 100, 7),
		textChars("World", "s2", 100, 120, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	spans := page.Spans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Text() != "Hello" || spans[1].Text() != "World" {
		t.Errorf("span texts = %q, %q", spans[0].Text(), spans[1].Text())
	}

	span, err := page.Span("s1")
	if err != nil {
		t.Fatalf("Span(s1) returned error: %v", err)
	}
	if span.Text() != "Hello" {
		t.Errorf("Span(s1).Text() = %q, want %q", span.Text(), "Hello")
	}
}

func TestSpan_NotFound(t *testing.T) {
	page := NewPageIndex(PageInput{Width: 612, Height: 792}, true, 4)

	_, err := page.Span("missing")
	if !errors.Is(err, ErrSpanNotFound) {
		t.Errorf("Span(missing) error = %v, want ErrSpanNotFound", err)
	}
}

func TestNewPageIndex_DropDuplicateSpans(t *testing.T) {
	// The same run drawn twice at identical positions, the way PDFs fake
	// bold text.
	chars := append(
		textChars("Invoice #123", "s1", 100, 100, 7),
		textChars("Invoice #123", "s2", 100, 100, 7)...,
	)
	in := PageInput{Width: 612, Height: 792, Chars: chars}

	dropped := NewPageIndex(in, true, 4)
	if got := len(dropped.Spans()); got != 1 {
		t.Errorf("with dedup: got %d spans, want 1", got)
	}
	if text := dropped.ExtractTextFromBBox(0, 612, 0, 792); text != "Invoice #123" {
		t.Errorf("with dedup: page text = %q, want %q", text, "Invoice #123")
	}

	kept := NewPageIndex(in, false, 4)
	if got := len(kept.Spans()); got != 2 {
		t.Errorf("without dedup: got %d spans, want 2", got)
	}
}

func TestNewPageIndex_NearDuplicateSpansKept(t *testing.T) {
	// Same text, but one run sits half a point lower. Not a duplicate.
	chars := append(
		textChars("Total", "s1", 100, 100, 7),
		textChars("Total", "s2", 100, 100.5, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	if got := len(page.Spans()); got != 2 {
		t.Errorf("got %d spans, want 2", got)
	}
}

func TestExtractTextFromBBox_ReadingOrder(t *testing.T) {
	// Two visual lines, inserted out of reading order.
	chars := append(
		textChars("second", "s2", 100, 130, 7),
		textChars("first", "s1", 100, 100, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	got := page.ExtractTextFromBBox(0, 612, 0, 792)
	want := "first\nsecond"
	if got != want {
		t.Errorf("ExtractTextFromBBox = %q, want %q", got, want)
	}
}

func TestExtractTextFromBBox_BoundaryInclusive(t *testing.T) {
	page := NewPageIndex(PageInput{
		Width: 612, Height: 792,
		Chars: textChars("abc", "s1", 100, 100, 10),
	}, true, 4)

	// The rectangle's right edge lands exactly on the last character.
	if got := page.ExtractTextFromBBox(100, 120, 100, 100); got != "abc" {
		t.Errorf("ExtractTextFromBBox = %q, want %q", got, "abc")
	}
	// Just short of it excludes the character.
	if got := page.ExtractTextFromBBox(100, 119.9, 100, 100); got != "ab" {
		t.Errorf("ExtractTextFromBBox = %q, want %q", got, "ab")
	}
}

func TestExtractTextFromBBox_NoLineBreakWithinTolerance(t *testing.T) {
	// Characters jittered by less than the line tolerance stay on one line.
	chars := []Char{
		{Rune: 'a', X: 100, Y: 100, SpanID: "s1"},
		{Rune: 'b', X: 107, Y: 101.5, SpanID: "s1"},
		{Rune: 'c', X: 114, Y: 100.5, SpanID: "s1"},
	}
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	if got := page.ExtractTextFromBBox(0, 612, 0, 792); got != "abc" {
		t.Errorf("ExtractTextFromBBox = %q, want %q", got, "abc")
	}
}

func TestExtractTextFromBBox_JitteredLinesKeepReadingOrder(t *testing.T) {
	// Baseline jitter within the tolerance must not reorder a line:
	// characters read in X order per visual line, lines top to bottom.
	chars := []Char{
		{Rune: 'a', X: 100, Y: 100, SpanID: "s1"},
		{Rune: 'b', X: 107, Y: 101.5, SpanID: "s1"},
		{Rune: 'c', X: 114, Y: 100.5, SpanID: "s1"},
		{Rune: 'd', X: 100, Y: 120, SpanID: "s2"},
		{Rune: 'e', X: 107, Y: 121.2, SpanID: "s2"},
	}
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	if got := page.ExtractTextFromBBox(0, 612, 0, 792); got != "abc\nde" {
		t.Errorf("ExtractTextFromBBox = %q, want %q", got, "abc\nde")
	}
}

func TestExtractTextFromBBox_Empty(t *testing.T) {
	page := NewPageIndex(PageInput{
		Width: 612, Height: 792,
		Chars: textChars("text", "s1", 100, 100, 7),
	}, true, 4)

	if got := page.ExtractTextFromBBox(400, 500, 400, 500); got != "" {
		t.Errorf("ExtractTextFromBBox = %q, want empty string", got)
	}
}

func TestFindText_Raw(t *testing.T) {
	chars := append(
		textChars("say hello", "s1", 100, 100, 7),
		textChars("hello again", "s2", 100, 130, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	hits := page.FindText("hello")
	if len(hits) != 2 {
		t.Fatalf("got %d raw hits, want 2", len(hits))
	}
	for i, hit := range hits {
		if hit.Text() != "hello" {
			t.Errorf("hit %d text = %q, want %q", i, hit.Text(), "hello")
		}
	}
}

func TestFindText_RawDuplicates(t *testing.T) {
	// Without span dedup, a double-drawn run produces duplicate raw hits.
	chars := append(
		textChars("bold", "s1", 100, 100, 7),
		textChars("bold", "s2", 100, 100, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, false, 4)

	if hits := page.FindText("bold"); len(hits) != 2 {
		t.Errorf("got %d raw hits, want 2", len(hits))
	}
}

func TestFindText_RawCrossesSpanBoundary(t *testing.T) {
	// Two spans on one line, split mid-word by the writer. The raw scan
	// follows rendering order, so the match crosses the boundary.
	chars := append(
		textChars("data", "s1", 100, 100, 7),
		textChars("base", "s2", 128, 100, 7)...,
	)
	page := NewPageIndex(PageInput{Width: 612, Height: 792, Chars: chars}, true, 4)

	hits := page.FindText("taba")
	if len(hits) != 1 {
		t.Fatalf("got %d raw hits, want 1", len(hits))
	}
	if hits[0][0].SpanID == hits[0][len(hits[0])-1].SpanID {
		t.Error("expected the hit to cover two distinct spans")
	}
}

func TestFindText_RawEmptyQuery(t *testing.T) {
	page := NewPageIndex(PageInput{
		Width: 612, Height: 792,
		Chars: textChars("text", "s1", 100, 100, 7),
	}, true, 4)

	if hits := page.FindText(""); len(hits) != 0 {
		t.Errorf("got %d hits for empty query, want 0", len(hits))
	}
}
