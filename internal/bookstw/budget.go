package bookstw

import "github.com/lepinkainen/bookstw/internal/source"

// FetchBudget counts detail page fetches within one identify request.
// It is not safe for concurrent use; each request owns its own.
type FetchBudget struct {
	limit int
	used  int
}

// NewFetchBudget returns a budget allowing limit fetches.
func NewFetchBudget(limit int) *FetchBudget {
	return &FetchBudget{limit: limit}
}

// Spend takes one fetch from the budget, or reports it is exhausted.
func (b *FetchBudget) Spend() error {
	if b.used >= b.limit {
		return source.ErrFetchBudgetExhausted
	}
	b.used++
	return nil
}

// Used returns the number of fetches spent so far.
func (b *FetchBudget) Used() int {
	return b.used
}

// Remaining returns the number of fetches left.
func (b *FetchBudget) Remaining() int {
	return b.limit - b.used
}
