package pdfsearch

// Config controls document loading and extraction behavior.
type Config struct {
	// Password unlocks an encrypted document. Empty means no password.
	Password string

	// DropDuplicateSpans discards a span whose text and character positions
	// exactly match an already-loaded span. PDFs that fake bold text by
	// drawing the same run twice produce such duplicates. (default: true)
	DropDuplicateSpans bool

	// FirstPage and LastPage bound the 1-indexed page range to load.
	// Zero loads the full document. (default: 0, 0)
	FirstPage int
	LastPage  int

	// ExtractionTolerance pads the trailing edge of extraction rectangles
	// to absorb kerning and rounding. (default: 4)
	ExtractionTolerance float64

	// LineHeightTolerance is the vertical distance beyond which two
	// characters are considered to sit on different lines. (default: 4)
	LineHeightTolerance float64

	// MaxConcurrency bounds the worker pool used when a search fans out
	// across pages. (default: 4)
	MaxConcurrency int

	// EnableMetricsLogging enables per-page load timing logs. (default: false)
	EnableMetricsLogging bool
}

// DefaultConfig returns the default document configuration.
func DefaultConfig() Config {
	return Config{
		DropDuplicateSpans:  true,
		ExtractionTolerance: 4,
		LineHeightTolerance: 4,
		MaxConcurrency:      4,
	}
}

// FindTextOptions controls a single FindText call.
type FindTextOptions struct {
	// Pages restricts the search to the given 0-indexed page numbers.
	// Empty searches every loaded page.
	Pages []int

	// Validate re-extracts each occurrence's bounding box and keeps the
	// occurrence only if the query is found in the extracted text. This
	// filters false positives from approximate geometry. (default: true)
	Validate bool

	// TakeSpan replaces each occurrence with the full character run of the
	// span containing it, so results cover the whole logical line rather
	// than only the matched substring. (default: false)
	TakeSpan bool

	// Sort orders occurrences left-to-right, top-to-bottom, and the
	// characters within each occurrence by position. (default: true)
	Sort bool
}

// DefaultFindTextOptions returns the default search options.
func DefaultFindTextOptions() FindTextOptions {
	return FindTextOptions{Validate: true, Sort: true}
}
