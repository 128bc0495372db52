package bookstw

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
)

const fixtureCoverURL = "http://im2.book.com.tw/image/getImage?i=https://www.books.com.tw/img/CN1/136/32/CN11363245.jpg&v=5cf6b3c4k&w=348&h=348"

func identifyFixtureBook(t *testing.T, tp *testPlugin) {
	t.Helper()

	tp.srv.HandleFile(t, searchPath(testISBN), fixture("search_isbn.html"))
	tp.srv.HandleFile(t, productPath(testCatalogID), fixture("product_CN11363245.html"))
	require.NoError(t, tp.Identify(context.Background(), metadata.Query{
		Identifiers: map[string]string{"isbn": testISBN},
	}, source.Discard))
}

func TestDownloadCover_EitherKeyAfterIdentify(t *testing.T) {
	tp := newTestPlugin(t)
	identifyFixtureBook(t, tp)
	searches := tp.srv.TotalHits("/search/")

	byISBN, err := tp.DownloadCover(context.Background(), metadata.Query{
		Identifiers: map[string]string{"isbn": testISBN},
	})
	require.NoError(t, err)

	byID, err := tp.DownloadCover(context.Background(), metadata.Query{
		Identifiers: map[string]string{"bookstw": testCatalogID},
	})
	require.NoError(t, err)

	assert.Equal(t, fixtureCoverURL, byISBN.URL)
	assert.Equal(t, byISBN.URL, byID.URL)
	assert.Equal(t, byISBN.Data, byID.Data)
	assert.Equal(t, "image/jpeg", byISBN.ContentType)
	assert.Equal(t, []string{fixtureCoverURL, fixtureCoverURL}, tp.images.requested())
	assert.Equal(t, searches, tp.srv.TotalHits("/search/"), "cache hits do not search again")
}

func TestDownloadCover_IdentifiesOnMiss(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, searchPath("ROS2源代碼分析與工程應用"), fixture("search_isbn.html"))
	tp.srv.HandleFile(t, productPath(testCatalogID), fixture("product_CN11363245.html"))

	cover, err := tp.DownloadCover(context.Background(), metadata.Query{Title: "ROS2源代碼分析與工程應用"})
	require.NoError(t, err)
	assert.Equal(t, fixtureCoverURL, cover.URL)
	assert.Equal(t, 1, tp.srv.Hits(productPath(testCatalogID)))

	cached, ok := tp.covers.CoverURL(testISBN)
	require.True(t, ok)
	assert.Equal(t, fixtureCoverURL, cached)
}

func TestDownloadCover_NothingFound(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, searchPath("不存在的書名"), fixture("search_none.html"))

	cover, err := tp.DownloadCover(context.Background(), metadata.Query{Title: "不存在的書名"})
	require.ErrorIs(t, err, source.ErrNoCover)
	assert.Nil(t, cover)
	assert.Empty(t, tp.images.requested())
}

func TestDownloadCover_ImageFetchFails(t *testing.T) {
	tp := newTestPlugin(t)
	require.NoError(t, tp.covers.SetCoverURL(testCatalogID, fixtureCoverURL))
	tp.images.err = errors.New("connection reset")

	_, err := tp.DownloadCover(context.Background(), metadata.Query{
		Identifiers: map[string]string{"bookstw": testCatalogID},
	})
	require.ErrorIs(t, err, source.ErrNoCover)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDownloadCover_NotAnImage(t *testing.T) {
	tp := newTestPlugin(t)
	require.NoError(t, tp.covers.SetCoverURL(testCatalogID, fixtureCoverURL))
	tp.images.body = []byte("<html>blocked</html>")

	_, err := tp.DownloadCover(context.Background(), metadata.Query{
		Identifiers: map[string]string{"bookstw": testCatalogID},
	})
	require.ErrorIs(t, err, source.ErrNoCover)
}

func TestDownloadCover_Cancelled(t *testing.T) {
	tp := newTestPlugin(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tp.DownloadCover(ctx, metadata.Query{Title: "ROS2"})
	require.ErrorIs(t, err, context.Canceled)
}
