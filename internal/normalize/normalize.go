// Package normalize turns extracted citation records into the final dataset:
// placeholder cleanup, filtering, de-duplication, enrichment from the corpus
// and entity canonicalization.
package normalize

import (
	"regexp"
	"strings"

	"fedcite/internal/models"
)

const etAlEntry = "et al."

var (
	courtCase  = regexp.MustCompile(`^\b[A-Z][a-zA-Z., ]+\.? v\. [A-Z][a-zA-Z., ]+`)
	etAlSuffix = regexp.MustCompile(`(?i)\s+et\s+al\.$`)
)

type dedupKey struct {
	title, year, doc string
}

// Normalize cleans, filters, de-duplicates and enriches records. Output keeps
// input order, minus dropped records.
func Normalize(records []models.ExtractedRecord, ref Reference) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(records))
	seen := map[dedupKey]struct{}{}
	for _, rec := range records {
		rec.Authors = append([]string(nil), rec.Authors...)
		clearSentinels(&rec)
		if allMissing(rec) || courtCase.MatchString(rec.Citation) {
			continue
		}

		key := dedupKey{rec.Title, rec.Year, rec.DocumentID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		n := models.NormalizedRecord{ExtractedRecord: rec}
		if info, ok := ref.Documents[rec.DocumentID]; ok {
			n.Agencies = info.Agencies
			n.RegulationIDNumbers = info.RegulationIDNumbers
		}

		if n.Authors == nil && n.Publisher != "" {
			n.Authors = []string{n.Publisher}
		}
		n.Publisher = ref.canonical(n.Publisher)
		n.Journal = ref.canonical(n.Journal)
		n.Authors = cleanAuthors(n.Authors, ref)

		// Stripping "et al." can empty the author list of a record that
		// had nothing else going for it.
		if allMissing(n.ExtractedRecord) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func allMissing(r models.ExtractedRecord) bool {
	return r.Title == "" && len(r.Authors) == 0 && r.Journal == "" && r.Publisher == "" && r.Year == ""
}

func cleanAuthors(authors []string, ref Reference) []string {
	if authors == nil {
		return nil
	}
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		a = ref.canonical(a)
		if strings.ToLower(a) == etAlEntry {
			continue
		}
		out = append(out, etAlSuffix.ReplaceAllString(a, ""))
	}
	return out
}
