package bookstw

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookstw/internal/metadata"
	"github.com/lepinkainen/bookstw/internal/source"
	"github.com/lepinkainen/bookstw/internal/testutil"
)

func TestParseProductPage_Golden(t *testing.T) {
	tp := newTestPlugin(t)
	body, err := os.ReadFile(fixture("product_CN11363245.html"))
	require.NoError(t, err)

	rec, err := tp.parseProductPage(body, testCatalogID, "https://www.books.com.tw/products/CN11363245")
	require.NoError(t, err)

	got, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(t, err)

	golden := testutil.NewGoldenHelper(t, "testdata")
	golden.AssertGoldenJSON("CN11363245.golden.json", got)
}

func TestParseProductPage_MissingFieldsAreUntouched(t *testing.T) {
	tp := newTestPlugin(t)
	body, err := os.ReadFile(fixture("product_minimal.html"))
	require.NoError(t, err)

	rec, err := tp.parseProductPage(body, "0010823456", "https://www.books.com.tw/products/0010823456")
	require.NoError(t, err)

	assert.Equal(t, "再啟動︰獲取職場生存與發展的原動力 大前研一職場系列", rec.Title)
	assert.Equal(t, []metadata.Field{metadata.FieldCatalogID, metadata.FieldTitle}, rec.Touched.Sorted())
	assert.Nil(t, rec.PubDate, "unparseable date is omitted")
	assert.Empty(t, rec.Language, "unmapped language is left unset")
	assert.Zero(t, rec.Rating, "zero rating is omitted")
	assert.Empty(t, rec.Identifier(metadata.IdentifierISBN))
	assert.Equal(t, "0010823456", rec.Identifier(metadata.IdentifierBooksTW))
}

func TestParseProductPage_NoInfoBlock(t *testing.T) {
	tp := newTestPlugin(t)
	body, err := os.ReadFile(fixture("product_noinfo.html"))
	require.NoError(t, err)

	rec, err := tp.parseProductPage(body, "X1", "https://www.books.com.tw/products/X1")
	require.ErrorIs(t, err, source.ErrNotProductPage)
	assert.Nil(t, rec)
}

func TestParseProductPage_EmptyTitle(t *testing.T) {
	tp := newTestPlugin(t)
	page := `<html><body>
<div class="mod type02_p002 clearfix"><h1>  </h1></div>
<div class="type02_p003 clearfix"><ul><li>作者：丁亮</li></ul></div>
</body></html>`

	_, err := tp.parseProductPage([]byte(page), "X1", "https://www.books.com.tw/products/X1")
	require.ErrorIs(t, err, source.ErrNotProductPage)
}

func TestParseProductPage_SynopsisParagraphs(t *testing.T) {
	tp := newTestPlugin(t)
	page := `<html><body>
<div class="mod type02_p002 clearfix"><h1>再啟動</h1></div>
<div class="type02_p003 clearfix"><ul><li>作者：大前研一</li></ul></div>
<div class="mod_b type02_m057 clearfix"><h3>內容簡介</h3><div class="bd"><div class="content"><p>第一段。</p><p>第二段。</p><div>第三段。</div></div></div></div>
</body></html>`

	rec, err := tp.parseProductPage([]byte(page), "0010823456", "https://www.books.com.tw/products/0010823456")
	require.NoError(t, err)
	assert.Equal(t, "第一段。\n第二段。\n第三段。", rec.Comments)
}

func TestParseProductPage_AuthorsAccumulate(t *testing.T) {
	tp := newTestPlugin(t)
	page := `<html><body>
<div class="mod type02_p002 clearfix"><h1>The First Time Manager</h1></div>
<div class="type02_p003 clearfix"><ul>
<li>原文作者：Loren B. Belker</li>
<li>作者：Gary S. Topchik</li>
<li>出版社：AMACOM</li>
<li>出版社：Someone Else</li>
<li>語言：英文</li>
</ul></div>
</body></html>`

	rec, err := tp.parseProductPage([]byte(page), "F013456789", "https://www.books.com.tw/products/F013456789")
	require.NoError(t, err)
	assert.Equal(t, []string{"Loren", "B.", "Belker", "Gary", "S.", "Topchik"}, rec.Authors)
	assert.Equal(t, "AMACOM", rec.Publisher, "first publisher line wins")
	assert.Equal(t, "en", rec.Language)
}

func TestExtract_CachesCoverUnderBothIdentifiers(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, productPath(testCatalogID), fixture("product_CN11363245.html"))

	rec, err := tp.Extract(context.Background(), NewFetchBudget(MaxDetailFetches), testCatalogID)
	require.NoError(t, err)

	assert.Equal(t, "ROS2源代碼分析與工程應用", rec.Title)
	assert.Equal(t, []string{"丁亮"}, rec.Authors)
	assert.Equal(t, "http://im2.book.com.tw/image/getImage?i=https://www.books.com.tw/img/CN1/136/32/CN11363245.jpg&v=5cf6b3c4k&w=348&h=348", rec.CoverURL)

	byID, ok := tp.covers.CoverURL(testCatalogID)
	require.True(t, ok)
	byISBN, ok := tp.covers.CoverURL(testISBN)
	require.True(t, ok)
	assert.Equal(t, rec.CoverURL, byID)
	assert.Equal(t, byID, byISBN)
}

func TestExtract_BudgetCheckedBeforeFetch(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.HandleFile(t, productPath(testCatalogID), fixture("product_CN11363245.html"))

	budget := NewFetchBudget(1)
	require.NoError(t, budget.Spend())

	rec, err := tp.Extract(context.Background(), budget, testCatalogID)
	require.ErrorIs(t, err, source.ErrFetchBudgetExhausted)
	assert.Nil(t, rec)
	assert.Zero(t, tp.srv.Hits(productPath(testCatalogID)))
}

func TestExtract_FetchFailure(t *testing.T) {
	tp := newTestPlugin(t)
	tp.srv.Handle(productPath("GONE1"), http.StatusNotFound, "text/html", nil)

	budget := NewFetchBudget(MaxDetailFetches)
	_, err := tp.Extract(context.Background(), budget, "GONE1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GONE1")
	assert.Equal(t, 1, budget.Used(), "failed fetches still count")
}
