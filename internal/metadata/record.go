// Package metadata defines the bibliographic record produced by metadata
// sources and the query used to request it.
package metadata

import (
	"encoding/json"
	"slices"
	"time"
)

// Field names a record attribute that a source can populate.
type Field string

// Fields a source may report as touched.
const (
	FieldTitle     Field = "title"
	FieldAuthors   Field = "authors"
	FieldPublisher Field = "publisher"
	FieldPubDate   Field = "pubdate"
	FieldLanguage  Field = "languages"
	FieldTags      Field = "tags"
	FieldRating    Field = "rating"
	FieldComments  Field = "comments"
	FieldISBN      Field = "identifier:isbn"
	FieldCatalogID Field = "identifier:bookstw"
)

// Identifier kinds understood by the books.com.tw source.
const (
	IdentifierISBN    = "isbn"
	IdentifierBooksTW = "bookstw"
)

// FieldSet is the set of fields a record actually populated.
type FieldSet map[Field]struct{}

// Add marks f as populated.
func (s FieldSet) Add(f Field) {
	s[f] = struct{}{}
}

// Has reports whether f was populated.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the fields in lexical order, mainly for output and tests.
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON renders the set as a sorted list.
func (s FieldSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// MarshalYAML renders the set as a sorted list.
func (s FieldSet) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}

// Record is one normalized bibliographic record.
// Only fields listed in Touched carry data from the source; everything else
// is the zero value and must not overwrite data the host already has.
type Record struct {
	Title       string            `json:"title" yaml:"title"`
	Authors     []string          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Publisher   string            `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	PubDate     *time.Time        `json:"pubdate,omitempty" yaml:"pubdate,omitempty"`
	Language    string            `json:"language,omitempty" yaml:"language,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Rating      float64           `json:"rating,omitempty" yaml:"rating,omitempty"`
	Identifiers map[string]string `json:"identifiers" yaml:"identifiers"`
	Comments    string            `json:"comments,omitempty" yaml:"comments,omitempty"`
	CoverURL    string            `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
	Touched     FieldSet          `json:"touched" yaml:"touched"`
}

// NewRecord returns an empty record attributed to source.
func NewRecord(source string) *Record {
	return &Record{
		Identifiers: make(map[string]string),
		Source:      source,
		Touched:     make(FieldSet),
	}
}

// Identifier returns the identifier value for kind, or "".
func (r *Record) Identifier(kind string) string {
	if r == nil || r.Identifiers == nil {
		return ""
	}
	return r.Identifiers[kind]
}

// Year returns the publication year as a string, or "" when unknown.
func (r *Record) Year() string {
	if r.PubDate == nil {
		return ""
	}
	return r.PubDate.Format("2006")
}
