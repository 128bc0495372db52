package bookstw

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchResults(t *testing.T) {
	body, err := os.ReadFile(fixture("search_isbn.html"))
	require.NoError(t, err)

	ids, err := parseSearchResults(body)
	require.NoError(t, err)
	assert.Equal(t, []string{testCatalogID}, ids, "malformed and nested links are skipped")
}

func TestParseSearchResults_KeepsPageOrder(t *testing.T) {
	body, err := os.ReadFile(fixture("search_many.html"))
	require.NoError(t, err)

	ids, err := parseSearchResults(body)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CN11363245", "0010823456", "E050012345", "F013456789",
		"CN10987654", "0010777777", "M010101010",
	}, ids)
}

func TestParseSearchResults_NoResultPhrase(t *testing.T) {
	body, err := os.ReadFile(fixture("search_none.html"))
	require.NoError(t, err)

	ids, err := parseSearchResults(body)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = parseSearchResults([]byte("<html><body>很抱歉，您搜尋的商品已下架</body></html>"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseSearchResults_NoContainers(t *testing.T) {
	ids, err := parseSearchResults([]byte("<html><body><div class=\"box\"><a href=\"/item/CN1\">x</a></div></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, searchPath(testISBN), fixture("search_isbn.html"))

	assert.Equal(t, []string{testCatalogID}, tp.Search(context.Background(), testISBN))
	assert.Equal(t, 1, tp.srv.Hits(searchPath(testISBN)))
}

func TestSearch_EscapesFreeText(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, searchPath("再啟動 大前研一"), fixture("search_isbn.html"))

	assert.Equal(t, []string{testCatalogID}, tp.Search(context.Background(), " 再啟動 大前研一 "))
}

func TestSearch_FailuresYieldNothing(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.Handle(searchPath("broken"), http.StatusInternalServerError, "text/plain", []byte("oops"))

	assert.Empty(t, tp.Search(context.Background(), "broken"))
	assert.Empty(t, tp.Search(context.Background(), "missing"))

	assert.Empty(t, tp.Search(context.Background(), "  "))
	assert.Equal(t, 2, tp.srv.TotalHits("/search/"), "blank keys are not searched")
}
