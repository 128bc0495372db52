// Package cmdutil holds the pieces shared by the identify and cover commands:
// lookup flags and construction of a configured books.com.tw source.
package cmdutil

import (
	"fmt"

	"github.com/lepinkainen/bookstw/internal/metadata"
)

// QueryFlags are the lookup flags common to identify and cover.
type QueryFlags struct {
	ISBN    string   `help:"ISBN to look up"`
	ID      string   `name:"id" help:"books.com.tw catalog id (e.g. CN11363245)"`
	Title   string   `short:"t" help:"Book title"`
	Authors []string `name:"author" short:"a" help:"Author name, repeatable"`
}

// Query converts the flags into a metadata query.
func (f QueryFlags) Query() metadata.Query {
	q := metadata.Query{
		Title:       f.Title,
		Authors:     f.Authors,
		Identifiers: make(map[string]string),
	}
	if f.ISBN != "" {
		q.Identifiers[metadata.IdentifierISBN] = f.ISBN
	}
	if f.ID != "" {
		q.Identifiers[metadata.IdentifierBooksTW] = f.ID
	}
	return q
}

// Check rejects a lookup with nothing to search for.
func (f QueryFlags) Check() error {
	if f.Query().IsEmpty() {
		return fmt.Errorf("nothing to look up: provide --isbn, --id or --title/--author")
	}
	return nil
}

// Label describes the query in log lines and picker headers.
func (f QueryFlags) Label() string {
	q := f.Query()
	switch {
	case q.Identifier(metadata.IdentifierISBN) != "":
		return "isbn:" + q.Identifier(metadata.IdentifierISBN)
	case q.Identifier(metadata.IdentifierBooksTW) != "":
		return "bookstw:" + q.Identifier(metadata.IdentifierBooksTW)
	default:
		return q.FreeText()
	}
}
