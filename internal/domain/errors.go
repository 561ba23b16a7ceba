package domain

import "errors"

// Error kinds shared by the pipeline stages. Adapters wrap them with context via
// fmt.Errorf("%w: ..."), callers match with errors.Is.
var (
	// ErrFetch is a transport or HTTP-status failure; the caller may retry.
	ErrFetch = errors.New("fetch failed")
	// ErrParse means the search results page no longer has the expected layout.
	ErrParse = errors.New("unexpected search page layout")
	// ErrExtraction means a single article page could not be extracted.
	ErrExtraction = errors.New("article extraction failed")
	// ErrEmptyResult means no article was collected for the keyword.
	ErrEmptyResult = errors.New("no articles collected")
	// ErrStreamDecode marks a malformed event line.
	ErrStreamDecode = errors.New("malformed stream event")
	// ErrCompletionEmpty means the stream finished without any message content.
	ErrCompletionEmpty = errors.New("completion returned no content")

	ErrInvalidProfile = errors.New("invalid user profile")
	ErrNotConfigured  = errors.New("component not configured")
)
