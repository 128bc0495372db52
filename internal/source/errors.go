package source

import "errors"

var (
	// ErrNoResults is returned by Identify when no strategy found anything.
	ErrNoResults = errors.New("no matching books found")

	// ErrNoCover is returned by DownloadCover when no image could be produced.
	ErrNoCover = errors.New("cover not available")

	// ErrNotProductPage is returned when a fetched page has no book info block.
	ErrNotProductPage = errors.New("not a product page")

	// ErrFetchBudgetExhausted is returned when a request already used all of
	// its detail page fetches.
	ErrFetchBudgetExhausted = errors.New("detail fetch budget exhausted")
)
