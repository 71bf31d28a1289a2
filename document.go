package pdfsearch

import (
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Document is an ordered collection of page indexes with the query surface
// over them. Once loaded it is immutable; reloading means building a new
// Document. All query methods are safe for concurrent use.
type Document struct {
	pages  []*PageIndex
	config Config
}

// NewDocument builds a document directly from per-page loader output.
// Loader implementations hand their pages here; tests use it to construct
// documents without a PDF backend.
func NewDocument(pages []PageInput, config Config) *Document {
	d := &Document{config: config, pages: make([]*PageIndex, 0, len(pages))}
	for _, in := range pages {
		d.pages = append(d.pages, NewPageIndex(in, config.DropDuplicateSpans, config.LineHeightTolerance))
	}
	return d
}

// PageCount returns the number of loaded pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the index for the given 0-indexed page.
func (d *Document) Page(page int) (*PageIndex, error) {
	if err := d.checkPageNumber(page); err != nil {
		return nil, err
	}
	return d.pages[page], nil
}

// FindText searches for query across the document. With no explicit pages
// in opts every loaded page is searched. Pages are independent, so the
// search fans out over a bounded worker pool and results merge by page
// number. Every queried page appears in the result, matches or not.
func (d *Document) FindText(query string, opts FindTextOptions) (SearchResult, error) {
	for _, page := range opts.Pages {
		if err := d.checkPageNumber(page); err != nil {
			return nil, err
		}
	}

	pages := opts.Pages
	if len(pages) == 0 {
		pages = make([]int, len(d.pages))
		for i := range d.pages {
			pages[i] = i
		}
	}

	workers := d.config.MaxConcurrency
	if workers < 1 {
		workers = 1
	}

	result := make(SearchResult, len(pages))
	sem := make(chan struct{}, workers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, pageNum := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(pageNum int) {
			defer wg.Done()
			defer func() { <-sem }()

			page := d.pages[pageNum]
			occs := page.processMatches(query, page.FindText(query), d.config.ExtractionTolerance, opts)

			mu.Lock()
			result[pageNum] = occs
			mu.Unlock()
		}(pageNum)
	}
	wg.Wait()

	return result, nil
}

// ExtractText extracts the text inside the rectangle on the given page.
// The left edge is floored and the right edge padded with the extraction
// tolerance and ceiled, so glyphs on the boundary are captured.
func (d *Document) ExtractText(x0, y0, x1, y1 float64, page int) (string, error) {
	if err := checkCoordinates(x0, y0, x1, y1); err != nil {
		return "", err
	}
	if err := d.checkPageNumber(page); err != nil {
		return "", err
	}

	p := d.pages[page]
	return p.ExtractTextFromBBox(math.Floor(x0), math.Ceil(x1+d.config.ExtractionTolerance), y0, y1), nil
}

// ExtractSpans returns every span whose bounding box intersects the
// rectangle, in span load order.
func (d *Document) ExtractSpans(x0, y0, x1, y1 float64, page int) ([]*Span, error) {
	if err := checkCoordinates(x0, y0, x1, y1); err != nil {
		return nil, err
	}
	if err := d.checkPageNumber(page); err != nil {
		return nil, err
	}

	query := Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
	var spans []*Span
	for _, span := range d.pages[page].Spans() {
		if Intersects(query, span.BoundingBox()) {
			spans = append(spans, span)
		}
	}
	return spans, nil
}

// ExtractSpansText concatenates the text of every span intersecting the
// rectangle, in the order ExtractSpans returns them.
func (d *Document) ExtractSpansText(x0, y0, x1, y1 float64, page int) (string, error) {
	spans, err := d.ExtractSpans(x0, y0, x1, y1, page)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text())
	}
	return b.String(), nil
}

// ExtractPageText extracts the text of the whole page.
func (d *Document) ExtractPageText(page int) (string, error) {
	if err := d.checkPageNumber(page); err != nil {
		return "", err
	}

	p := d.pages[page]
	return p.ExtractTextFromBBox(0, p.width, 0, p.height), nil
}

func (d *Document) checkPageNumber(page int) error {
	if page < 0 || page >= len(d.pages) {
		return errors.Wrapf(ErrInvalidPageNumber, "page %d of %d", page, len(d.pages))
	}
	return nil
}

func checkCoordinates(x0, y0, x1, y1 float64) error {
	if x0 < 0 || y0 < 0 || x1 < 0 || y1 < 0 {
		return errors.Wrapf(ErrInvalidCoordinates, "(%g, %g, %g, %g)", x0, y0, x1, y1)
	}
	return nil
}
