package bookstw

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Phrases the search page shows instead of a result list.
var noResultMarkers = []string{
	"很抱歉，您搜尋的商品已下架",
	"抱歉，找不到您所查詢的",
}

// Result links redirect through .../item/CN11363245/page/1/...; the id is
// two alphanumerics followed by digits.
var candidateIDPattern = regexp.MustCompile(`item/([A-Za-z0-9]{2}\d+)`)

// Search runs one site search for key and returns candidate catalog ids in
// page order. Failures are logged and yield no candidates.
func (p *Plugin) Search(ctx context.Context, key string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	u := p.searchPageURL(key)
	body, err := p.fetch(ctx, p.pages, u)
	if err != nil {
		p.log.Error("Search request failed", "key", key, "url", u, "error", err)
		return nil
	}

	ids, err := parseSearchResults(body)
	if err != nil {
		p.log.Error("Failed to parse search page", "key", key, "error", err)
		return nil
	}
	if ids == nil {
		p.log.Info("No books found", "key", key)
		return nil
	}

	p.log.Debug("Search candidates", "key", key, "count", len(ids), "ids", ids)
	return ids
}

// parseSearchResults extracts candidate ids from a search page. A page that
// carries a no-result phrase yields nil.
func parseSearchResults(body []byte) ([]string, error) {
	for _, marker := range noResultMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return nil, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find("div.table-searchbox").Each(func(_ int, box *goquery.Selection) {
		box.Find("div.box > a").Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" {
				return
			}
			m := candidateIDPattern.FindStringSubmatch(href)
			if m == nil {
				return
			}
			ids = append(ids, m[1])
		})
	})
	return ids, nil
}
