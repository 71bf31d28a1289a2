package pdfsearch

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PageIndex is the spatial text structure for one page. It owns every
// character and span on the page, built once from loader output and
// read-only afterwards, so it can be queried concurrently without locking.
type PageIndex struct {
	width  float64
	height float64

	chars   []Char // rendering order
	spans   map[string]*Span
	spanIDs []string // insertion order, queries iterate spans deterministically

	lineHeightTolerance float64
}

// NewPageIndex builds the index for one page. When dropDuplicateSpans is
// set, a span whose text and character positions exactly match an earlier
// span is discarded together with its characters.
func NewPageIndex(in PageInput, dropDuplicateSpans bool, lineHeightTolerance float64) *PageIndex {
	p := &PageIndex{
		width:               in.Width,
		height:              in.Height,
		spans:               make(map[string]*Span),
		lineHeightTolerance: lineHeightTolerance,
	}

	for _, ch := range in.Chars {
		if ch.SpanID == "" {
			continue
		}
		span, ok := p.spans[ch.SpanID]
		if !ok {
			span = &Span{ID: ch.SpanID}
			p.spans[ch.SpanID] = span
			p.spanIDs = append(p.spanIDs, ch.SpanID)
		}
		span.Chars = append(span.Chars, ch)
	}

	dropped := make(map[string]bool)
	if dropDuplicateSpans {
		seen := make(map[string]bool, len(p.spanIDs))
		kept := p.spanIDs[:0]
		for _, id := range p.spanIDs {
			key := spanKey(p.spans[id])
			if seen[key] {
				dropped[id] = true
				delete(p.spans, id)
				continue
			}
			seen[key] = true
			kept = append(kept, id)
		}
		p.spanIDs = kept
	}

	p.chars = make([]Char, 0, len(in.Chars))
	for _, ch := range in.Chars {
		if ch.SpanID != "" && dropped[ch.SpanID] {
			continue
		}
		p.chars = append(p.chars, ch)
	}
	return p
}

// spanKey builds the identity used for duplicate detection: the span's text
// plus every character position. Near-identical spans that differ in any
// coordinate keep distinct keys and are never merged.
func spanKey(s *Span) string {
	var b strings.Builder
	for _, ch := range s.Chars {
		b.WriteRune(ch.Rune)
	}
	for _, ch := range s.Chars {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(ch.X, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(ch.Y, 'f', -1, 64))
	}
	return b.String()
}

// Width returns the page width.
func (p *PageIndex) Width() float64 { return p.width }

// Height returns the page height.
func (p *PageIndex) Height() float64 { return p.height }

// Span returns the span with the given identifier.
func (p *PageIndex) Span(id string) (*Span, error) {
	span, ok := p.spans[id]
	if !ok {
		return nil, errors.Wrapf(ErrSpanNotFound, "span %q", id)
	}
	return span, nil
}

// Spans returns the page's spans in load order.
func (p *PageIndex) Spans() []*Span {
	out := make([]*Span, 0, len(p.spanIDs))
	for _, id := range p.spanIDs {
		out = append(out, p.spans[id])
	}
	return out
}

// ExtractTextFromBBox returns the text of every character inside the
// rectangle, read top-to-bottom and left-to-right. Characters sitting
// exactly on an edge are included; callers pad X1 with the extraction
// tolerance to capture glyphs on the right boundary. Characters within the
// line-height tolerance of their predecessor form one visual line, read in
// X order regardless of baseline jitter; a line break separates lines. An
// empty selection yields an empty string.
func (p *PageIndex) ExtractTextFromBBox(x0, x1, y0, y1 float64) string {
	var selected []Char
	for _, ch := range p.chars {
		if ch.X >= x0 && ch.X <= x1 && ch.Y >= y0 && ch.Y <= y1 {
			selected = append(selected, ch)
		}
	}
	if len(selected) == 0 {
		return ""
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Y < selected[j].Y
	})

	var b strings.Builder
	var line []Char
	flushLine := func() {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].X < line[j].X
		})
		for _, ch := range line {
			b.WriteRune(ch.Rune)
		}
	}
	for i, ch := range selected {
		if i > 0 && ch.Y-selected[i-1].Y > p.lineHeightTolerance {
			flushLine()
			b.WriteByte('\n')
			line = line[:0]
		}
		line = append(line, ch)
	}
	flushLine()
	return b.String()
}

// FindText scans the page's characters in rendering order and returns every
// contiguous run whose glyphs match the query. The scan is deliberately
// permissive: the same visual occurrence can be reported more than once when
// glyphs are drawn multiple times, and a run may cross span boundaries.
// Callers merge and validate the raw hits afterwards.
func (p *PageIndex) FindText(query string) PageResult {
	q := []rune(query)
	if len(q) == 0 {
		return nil
	}

	var result PageResult
	for i := 0; i+len(q) <= len(p.chars); i++ {
		match := true
		for j, r := range q {
			if p.chars[i+j].Rune != r {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		occ := make(Occurrence, len(q))
		copy(occ, p.chars[i:i+len(q)])
		result = append(result, occ)
	}
	return result
}
