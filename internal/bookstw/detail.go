package bookstw

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
)

// Extract fetches the product page for id and turns it into a record.
// It spends one fetch from budget before touching the network and returns
// source.ErrFetchBudgetExhausted once the budget is gone.
func (p *Plugin) Extract(ctx context.Context, budget *FetchBudget, id string) (*metadata.Record, error) {
	if err := budget.Spend(); err != nil {
		return nil, err
	}

	u := p.productPageURL(id)
	p.log.Info("Fetching book details", "id", id, "url", u)

	body, err := p.fetch(ctx, p.pages, u)
	if err != nil {
		return nil, fmt.Errorf("fetching product %s: %w", id, err)
	}

	rec, err := p.parseProductPage(body, id, u)
	if err != nil {
		return nil, fmt.Errorf("parsing product %s: %w", id, err)
	}

	p.rememberCover(rec.CoverURL, id, rec.Identifier(metadata.IdentifierISBN))
	return rec, nil
}

// parseProductPage extracts every field it can find. Only a missing info
// block or title rejects the page; any other missing field is left untouched.
func (p *Plugin) parseProductPage(body []byte, id, pageURL string) (*metadata.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	info := doc.Find("div.type02_p003 > ul > li")
	if info.Length() == 0 {
		return nil, source.ErrNotProductPage
	}

	header := doc.Find("div.type02_p002").First()
	title := strings.TrimSpace(header.ChildrenFiltered("h1").First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", source.ErrNotProductPage)
	}
	if subtitle := strings.TrimSpace(header.ChildrenFiltered("h2").First().Text()); subtitle != "" {
		title += " " + subtitle
	}

	rec := metadata.NewRecord(Name)
	rec.Title = title
	rec.Touched.Add(metadata.FieldTitle)
	rec.Identifiers[metadata.IdentifierBooksTW] = id
	rec.Touched.Add(metadata.FieldCatalogID)

	if src := strings.TrimSpace(doc.Find("div.cover_img img").First().AttrOr("src", "")); src != "" {
		rec.CoverURL = resolveURL(pageURL, src)
	}

	p.scanInfoBlock(rec, info)

	doc.Find("div.type02_m057").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if !strings.Contains(block.Text(), labelSynopsis) {
			return true
		}
		block.Find("br").ReplaceWithHtml("\n")
		block.Find("p, div").AppendHtml("\n")
		if comments := cleanComments(block.Text()); comments != "" {
			rec.Comments = comments
			rec.Touched.Add(metadata.FieldComments)
		}
		return false
	})

	isbnLine := doc.Find("div.type02_m058 > div > ul").First().ChildrenFiltered("li").First()
	if isbn := parseISBN(ownText(isbnLine)); isbn != "" {
		rec.Identifiers[metadata.IdentifierISBN] = isbn
		rec.Touched.Add(metadata.FieldISBN)
	}

	if stars, ok := doc.Find("div.bui-stars.star-s span[title]").First().Attr("title"); ok {
		if rating, ok := parseRating(stars); ok {
			rec.Rating = rating
			rec.Touched.Add(metadata.FieldRating)
		}
	}

	if tags := parseTags(doc.Find("ul.sort > li").First().Text()); len(tags) > 0 {
		rec.Tags = tags
		rec.Touched.Add(metadata.FieldTags)
	}

	p.log.Debug("Parsed book details", "id", id, "title", rec.Title, "touched", rec.Touched.Sorted())
	return rec, nil
}

// rememberCover stores the cover URL under every non-empty identifier.
func (p *Plugin) rememberCover(coverURL string, ids ...string) {
	if coverURL == "" {
		return
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := p.covers.SetCoverURL(id, coverURL); err != nil {
			p.log.Warn("Failed to cache cover URL", "id", id, "error", err)
		}
	}
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
