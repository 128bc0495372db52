package bookstw

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/bookstw/internal/dates"
	"github.com/lepinkainen/bookstw/internal/langcode"
	"github.com/lepinkainen/bookstw/internal/metadata"
)

// Labels printed on product pages.
const (
	labelAuthor         = "作者："
	labelOriginalAuthor = "原文作者："
	labelPublisher      = "出版社："
	labelPubDate        = "出版日期："
	labelLanguage       = "語言："
	labelSynopsis       = "內容簡介"
	labelCategory       = "本書分類："
	markerModified      = "修改"
)

// defaultPubDay is used when a publication date has no day.
const defaultPubDay = 15

// infoRule handles one kind of line in the product info block.
type infoRule struct {
	marker string
	field  metadata.Field
	// accumulate rules run for every matching line; the others only until
	// their field is set.
	accumulate bool
	apply      func(p *Plugin, rec *metadata.Record, text string)
}

// infoRules are checked in order; the first marker found in a line owns it.
var infoRules = []infoRule{
	{marker: labelAuthor, field: metadata.FieldAuthors, accumulate: true, apply: applyAuthors},
	{marker: labelPublisher, field: metadata.FieldPublisher, apply: applyPublisher},
	{marker: labelPubDate, field: metadata.FieldPubDate, apply: applyPubDate},
	{marker: labelLanguage, field: metadata.FieldLanguage, apply: applyLanguage},
}

func (p *Plugin) scanInfoBlock(rec *metadata.Record, items *goquery.Selection) {
	items.Each(func(_ int, li *goquery.Selection) {
		text := li.Text()
		for _, rule := range infoRules {
			if !strings.Contains(text, rule.marker) {
				continue
			}
			if rule.accumulate || !rec.Touched.Has(rule.field) {
				rule.apply(p, rec, text)
			}
			return
		}
	})
}

func applyAuthors(_ *Plugin, rec *metadata.Record, text string) {
	names := parseAuthors(text)
	if len(names) == 0 {
		return
	}
	rec.Authors = append(rec.Authors, names...)
	rec.Touched.Add(metadata.FieldAuthors)
}

func applyPublisher(_ *Plugin, rec *metadata.Record, text string) {
	if publisher := labelValue(text, labelPublisher); publisher != "" {
		rec.Publisher = publisher
		rec.Touched.Add(metadata.FieldPublisher)
	}
}

func applyPubDate(p *Plugin, rec *metadata.Record, text string) {
	raw := labelValue(text, labelPubDate)
	if raw == "" {
		return
	}
	date, err := dates.Parse(raw, defaultPubDay)
	if err != nil {
		p.log.Warn("Failed to parse pubdate", "value", raw, "error", err)
		return
	}
	rec.PubDate = &date
	rec.Touched.Add(metadata.FieldPubDate)
}

func applyLanguage(p *Plugin, rec *metadata.Record, text string) {
	label := labelValue(text, labelLanguage)
	code, ok := langcode.FromLabel(label)
	if !ok {
		p.log.Debug("Unmapped language label", "label", label)
		return
	}
	rec.Language = code
	rec.Touched.Add(metadata.FieldLanguage)
}

// parseAuthors reads every author line of an info entry. Lines carrying the
// "modified" marker belong to site chrome and are skipped.
func parseAuthors(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, labelAuthor) || strings.Contains(line, markerModified) {
			continue
		}
		line = strings.ReplaceAll(line, labelOriginalAuthor, "")
		line = strings.ReplaceAll(line, labelAuthor, "")
		names = append(names, strings.FieldsFunc(line, isAuthorSeparator)...)
	}
	return names
}

func isAuthorSeparator(r rune) bool {
	return r == ',' || r == '，' || unicode.IsSpace(r)
}

// labelValue returns the text after label up to the next line break.
func labelValue(text, label string) string {
	_, after, found := strings.Cut(text, label)
	if !found {
		return ""
	}
	after = strings.TrimLeftFunc(after, unicode.IsSpace)
	if i := strings.IndexByte(after, '\n'); i >= 0 {
		after = after[:i]
	}
	return strings.TrimSpace(after)
}

var ratingPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// parseRating reads the leading number of a star widget title. Values
// outside (0, 5] are not ratings.
func parseRating(title string) (float64, bool) {
	m := ratingPattern.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 || v > 5 {
		return 0, false
	}
	return v, true
}

// parseTags splits a category breadcrumb such as "本書分類：科技>程式設計".
func parseTags(text string) []string {
	text = strings.ReplaceAll(text, labelCategory, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	var tags []string
	for _, tag := range strings.Split(text, ">") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseISBN strips the label from the first detail line.
func parseISBN(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "ISBN：")
	text = strings.TrimPrefix(text, "ISBN:")
	return strings.TrimSpace(text)
}

// cleanComments drops the synopsis heading, trims every line and keeps at
// most one blank line between paragraphs.
func cleanComments(text string) string {
	text = strings.Replace(text, labelSynopsis, "", 1)

	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ownText returns the text of the selection's direct text children.
func ownText(s *goquery.Selection) string {
	return s.Contents().FilterFunction(func(_ int, c *goquery.Selection) bool {
		return goquery.NodeName(c) == "#text"
	}).Text()
}
