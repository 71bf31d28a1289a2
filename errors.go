package pdfsearch

import "github.com/pkg/errors"

var (
	// ErrInvalidCoordinates is returned when a query rectangle has a
	// negative coordinate.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidPageNumber is returned when a page number is outside the
	// loaded document.
	ErrInvalidPageNumber = errors.New("invalid page number")

	// ErrInvalidPageRange is returned when the first page is greater than
	// the last page, or either is negative.
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrFileNotFound is returned when the PDF file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrAccessDenied is returned when the document requires a password or
	// the supplied password is wrong.
	ErrAccessDenied = errors.New("access denied")

	// ErrEmptyChars is returned when a bounding box is requested over an
	// empty character set.
	ErrEmptyChars = errors.New("empty character set")

	// ErrSpanNotFound reports a span identifier with no span behind it.
	// Characters only ever reference spans on their own page, so hitting
	// this means the page data violated its invariants.
	ErrSpanNotFound = errors.New("span not found")
)
