package pdfsearch

import (
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/klippa-app/go-pdfium"
	pdfium_errors "github.com/klippa-app/go-pdfium/errors"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// Loader builds searchable documents from PDF files using pdfium text
// extraction. It handles the binary format, fonts, and decryption; the
// Document it produces is pure in-memory geometry.
type Loader struct {
	instance pdfium.Pdfium
	config   Config
}

// NewLoader creates a loader with the default configuration.
func NewLoader(instance pdfium.Pdfium) *Loader {
	return &Loader{instance: instance, config: DefaultConfig()}
}

// NewLoaderWithConfig creates a loader with a custom configuration.
func NewLoaderWithConfig(instance pdfium.Pdfium, config Config) *Loader {
	return &Loader{instance: instance, config: config}
}

// LoadFile loads a PDF file into a searchable document.
func (l *Loader) LoadFile(path string) (*Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(ErrFileNotFound, path)
	}
	if err := checkPageRange(l.config.FirstPage, l.config.LastPage); err != nil {
		return nil, err
	}

	doc, err := l.openDocument(&requests.OpenDocument{
		FilePath: &path,
		Password: l.password(),
	})
	if err != nil {
		return nil, err
	}
	defer l.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc,
	})

	return l.loadPages(doc)
}

// LoadBytes loads a PDF from memory into a searchable document.
func (l *Loader) LoadBytes(pdfBytes []byte) (*Document, error) {
	if err := checkPageRange(l.config.FirstPage, l.config.LastPage); err != nil {
		return nil, err
	}

	doc, err := l.openDocument(&requests.OpenDocument{
		File:     &pdfBytes,
		Password: l.password(),
	})
	if err != nil {
		return nil, err
	}
	defer l.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc,
	})

	return l.loadPages(doc)
}

// LoadReader loads a PDF from an io.ReadSeeker into a searchable document.
func (l *Loader) LoadReader(reader io.ReadSeeker) (*Document, error) {
	if err := checkPageRange(l.config.FirstPage, l.config.LastPage); err != nil {
		return nil, err
	}

	size, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to measure reader")
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "failed to rewind reader")
	}

	doc, err := l.openDocument(&requests.OpenDocument{
		FileReader:     reader,
		FileReaderSize: size,
		Password:       l.password(),
	})
	if err != nil {
		return nil, err
	}
	defer l.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc,
	})

	return l.loadPages(doc)
}

func (l *Loader) password() *string {
	if l.config.Password == "" {
		return nil
	}
	return &l.config.Password
}

func (l *Loader) openDocument(req *requests.OpenDocument) (references.FPDF_DOCUMENT, error) {
	doc, err := l.instance.OpenDocument(req)
	if err != nil {
		if errors.Is(err, pdfium_errors.ErrPassword) {
			return "", errors.Wrap(ErrAccessDenied, "document requires a valid password")
		}
		// Opaque parser failure, handed back as-is.
		return "", err
	}
	return doc.Document, nil
}

func (l *Loader) loadPages(doc references.FPDF_DOCUMENT) (*Document, error) {
	pageCount, err := l.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	first := l.config.FirstPage
	if first < 1 {
		first = 1
	}
	last := l.config.LastPage
	if last == 0 || last > pageCount.PageCount {
		last = pageCount.PageCount
	}

	// A valid range that starts past the end of the document selects no
	// pages.
	if first > last {
		return NewDocument(nil, l.config), nil
	}

	inputs := make([]PageInput, 0, last-first+1)
	for i := first - 1; i <= last-1; i++ {
		pageStart := time.Now()
		in, err := l.loadPage(doc, i)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load page %d", i+1)
		}
		inputs = append(inputs, *in)

		if l.config.EnableMetricsLogging {
			log.Printf("Page %d/%d loaded in %v (%d chars)", i+1, pageCount.PageCount, time.Since(pageStart), len(in.Chars))
		}
	}

	return NewDocument(inputs, l.config), nil
}

// loadPage pulls the positioned characters of one 0-indexed page.
func (l *Loader) loadPage(doc references.FPDF_DOCUMENT, pageIndex int) (*PageInput, error) {
	pageResp, err := l.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: doc,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}
	defer l.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})
	pageRef := pageResp.Page

	widthResp, err := l.instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{
			ByReference: &pageRef,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page width")
	}

	heightResp, err := l.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &pageRef,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page height")
	}
	pageHeight := float64(heightResp.PageHeight)

	textPage, err := l.instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &pageRef,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer l.instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := l.instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	chars := make([]Char, 0, charCount.Count)
	rightEdges := make([]float64, 0, charCount.Count)
	for i := 0; i < charCount.Count; i++ {
		unicodeResp, err := l.instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeResp.Unicode == 0 {
			continue
		}
		r := rune(unicodeResp.Unicode)
		if r == '\n' || r == '\r' {
			continue
		}

		charBox, err := l.instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		// pdfium uses a bottom-left origin; flip to top-left so that Y
		// grows in reading order.
		chars = append(chars, Char{
			Rune: r,
			X:    charBox.Left,
			Y:    pageHeight - charBox.Bottom,
		})
		rightEdges = append(rightEdges, charBox.Right)
	}

	assignSpans(chars, rightEdges, l.config.LineHeightTolerance)

	return &PageInput{
		Width:  float64(widthResp.PageWidth),
		Height: pageHeight,
		Chars:  chars,
	}, nil
}

// assignSpans groups consecutive characters into spans. pdfium's text API
// flattens text objects into one character stream, so run identity is
// recovered geometrically: a new span starts when the baseline moves by
// more than the line tolerance or the horizontal gap between characters is
// too wide to belong to the same run. rightEdges carries the right edge of
// each character's box, parallel to chars.
func assignSpans(chars []Char, rightEdges []float64, lineTolerance float64) {
	if len(chars) == 0 {
		return
	}

	id := uuid.NewString()
	chars[0].SpanID = id
	for i := 1; i < len(chars); i++ {
		prev := chars[i-1]
		cur := chars[i]

		sameLine := math.Abs(cur.Y-prev.Y) <= lineTolerance
		gap := cur.X - rightEdges[i-1]
		maxGap := math.Max(4.0, (rightEdges[i-1]-prev.X)*2.5)

		if !sameLine || gap > maxGap {
			id = uuid.NewString()
		}
		chars[i].SpanID = id
	}
}

func checkPageRange(first, last int) error {
	if first > last || first < 0 || last < 0 {
		return errors.Wrapf(ErrInvalidPageRange, "pages %d to %d", first, last)
	}
	return nil
}
