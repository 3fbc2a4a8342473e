package digest

// Converter converts HTML markup to plain text, discarding links, images,
// emphasis markers and tables, with unconstrained line width.
type Converter interface {
	Convert(html string) (string, error)
}

// ExtractResult holds content extracted from a raw HTML document.
type ExtractResult struct {
	// Title is the document title, if one was found.
	Title string

	// ContentHTML is the main content area as HTML, stripped of
	// navigation, sidebars, and other chrome.
	ContentHTML string
}

// Extractor identifies and extracts the main article content from raw HTML.
type Extractor interface {
	Extract(rawHTML string) (*ExtractResult, error)
}
