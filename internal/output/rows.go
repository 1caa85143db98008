// Package output renders normalized records as the flat dataset.
package output

import (
	"strings"

	"fedcite/internal/models"
)

var Header = []string{
	"citation", "title", "authors", "year", "journal", "publisher", "location", "volume",
	"pages", "doi", "url", "et_al_flag", "non_person_author_flag", "docid", "agencies",
	"regulation_id_numbers",
}

// Row renders one record in Header order. Missing values are empty cells and
// list values use Python list literal syntax, which downstream notebooks parse.
func Row(r models.NormalizedRecord) []string {
	return []string{
		r.Citation,
		r.Title,
		ListLiteral(r.Authors),
		r.Year,
		r.Journal,
		r.Publisher,
		r.Location,
		r.Volume,
		r.Pages,
		r.DOI,
		r.URL,
		pyBool(r.EtAlFlag),
		pyBool(r.NonPersonAuthorFlag),
		r.DocumentID,
		ListLiteral(r.Agencies),
		ListLiteral(r.RegulationIDNumbers),
	}
}

// ListLiteral formats items like Python's repr of a list of str. A nil
// slice is a missing value and renders empty; an empty slice renders "[]".
func ListLiteral(items []string) string {
	if items == nil {
		return ""
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = pyQuote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func pyQuote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
