package pdfsearch

import (
	"math"
	"sort"
	"strings"
)

// filterAdjacentMatches merges raw search hits that represent the same
// visual occurrence. Two hits belong together when their bounding boxes
// overlap or sit within the given tolerance of each other; the widest
// character run in each group is kept.
func filterAdjacentMatches(raw PageResult, tolerance float64) PageResult {
	type cluster struct {
		occ   Occurrence
		width float64 // width of the kept occurrence
		bbox  Rect    // union of all member hit boxes
	}

	var clusters []*cluster
	for _, occ := range raw {
		bbox, err := CharBounds(occ)
		if err != nil {
			continue
		}

		var home *cluster
		for _, c := range clusters {
			if Intersects(expandRect(c.bbox, tolerance), bbox) {
				home = c
				break
			}
		}
		if home == nil {
			clusters = append(clusters, &cluster{occ: occ, width: bbox.Width(), bbox: bbox})
			continue
		}
		if bbox.Width() > home.width {
			home.occ = occ
			home.width = bbox.Width()
		}
		home.bbox = mergeRects(home.bbox, bbox)
	}

	out := make(PageResult, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, c.occ)
	}
	return out
}

// processMatches runs one page's raw hits through the match pipeline:
// adjacency merging, optional validation against re-extracted text, optional
// span promotion, span-level dedup, and position sorting. The pipeline never
// fails; empty input yields empty output.
//
// Dedup is keyed by the first character's span identifier and accumulates
// across the whole call, so after promotion a second hit inside the same
// span is dropped even when it was a distinct occurrence. That mirrors the
// span-level result contract: one entry per logical line.
func (p *PageIndex) processMatches(query string, raw PageResult, tolerance float64, opts FindTextOptions) PageResult {
	merged := filterAdjacentMatches(raw, tolerance)

	out := make(PageResult, 0, len(merged))
	seenSpanIDs := make(map[string]struct{})
	for _, occ := range merged {
		bbox, err := CharBounds(occ)
		if err != nil {
			continue
		}

		if opts.Validate {
			text := p.ExtractTextFromBBox(math.Floor(bbox.X0), math.Ceil(bbox.X1+tolerance), bbox.Y0, bbox.Y1)
			if !strings.Contains(text, query) {
				continue
			}
		}

		chars := occ
		if opts.TakeSpan {
			if full := p.fullSpan(occ); full != nil {
				chars = full
			}
		}

		if id := chars[0].SpanID; id != "" {
			if _, ok := seenSpanIDs[id]; ok {
				continue
			}
			for _, ch := range chars {
				if ch.SpanID != "" {
					seenSpanIDs[ch.SpanID] = struct{}{}
				}
			}
		}

		if opts.Sort {
			chars = sortCharsByPosition(chars)
		}
		out = append(out, chars)
	}

	if opts.Sort {
		sortOccurrences(out)
	}
	return out
}

// fullSpan returns a copy of the complete character run of the span
// containing the occurrence. Promotion only applies when every character
// shares one span; an occurrence that crosses span boundaries, or has no
// span at all, returns nil and is kept as-is.
func (p *PageIndex) fullSpan(occ Occurrence) Occurrence {
	id := occ[0].SpanID
	if id == "" {
		return nil
	}
	for _, ch := range occ[1:] {
		if ch.SpanID != id {
			return nil
		}
	}

	span, err := p.Span(id)
	if err != nil {
		return nil
	}
	out := make(Occurrence, len(span.Chars))
	copy(out, span.Chars)
	return out
}

// sortCharsByPosition returns a copy of the characters ordered by (x, y).
func sortCharsByPosition(chars Occurrence) Occurrence {
	out := make(Occurrence, len(chars))
	copy(out, chars)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// sortOccurrences orders occurrences ascending by the (min-x, min-y) of
// their character sets, giving deterministic left-to-right, top-to-bottom
// output.
func sortOccurrences(occs PageResult) {
	sort.SliceStable(occs, func(i, j int) bool {
		bi, erri := CharBounds(occs[i])
		bj, errj := CharBounds(occs[j])
		if erri != nil || errj != nil {
			return false
		}
		if bi.X0 != bj.X0 {
			return bi.X0 < bj.X0
		}
		return bi.Y0 < bj.Y0
	})
}
