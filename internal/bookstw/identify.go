package bookstw

import (
	"context"
	"errors"

	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
)

// identifierOrder is the order identifiers are searched in.
var identifierOrder = []string{metadata.IdentifierISBN, metadata.IdentifierBooksTW}

// Identify searches for q and puts one record per readable candidate on
// queue. At most maxFetches product pages are fetched per call.
func (p *Plugin) Identify(ctx context.Context, q metadata.Query, queue source.Queue) error {
	candidates := p.resolveCandidates(ctx, q)
	if len(candidates) == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.log.Info("Can't find related book", "title", q.Title, "authors", q.Authors)
		return source.ErrNoResults
	}

	budget := NewFetchBudget(p.maxFetches)
	found := 0
	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := p.Extract(ctx, budget, id)
		if errors.Is(err, source.ErrFetchBudgetExhausted) {
			p.log.Info("Detail fetch limit reached", "limit", p.maxFetches, "skipped", len(candidates)-budget.Used())
			break
		}
		if err != nil {
			p.log.Error("Download metadata failed", "id", id, "error", err)
			continue
		}

		queue.Put(rec)
		found++
	}

	if found == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return source.ErrNoResults
	}
	return nil
}

// resolveCandidates tries each known identifier, then falls back to a free
// text search over title and authors.
func (p *Plugin) resolveCandidates(ctx context.Context, q metadata.Query) []string {
	for _, kind := range identifierOrder {
		value := q.Identifier(kind)
		if value == "" {
			continue
		}
		if ids := p.Search(ctx, value); len(ids) > 0 {
			return ids
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return p.Search(ctx, q.FreeText())
}
