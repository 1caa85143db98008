package normalize

import "fedcite/internal/models"

// Placeholder values copied verbatim from the extraction prompt's template,
// and other spellings of "nothing here", per field.
var fieldSentinels = map[string][]string{
	"title":     {"Title of the paper", "Title not provided"},
	"journal":   {"Journal", "Journal not provided"},
	"publisher": {"Publisher", "Publisher not provided"},
	"year":      {"Year", "Year not provided"},
	"location":  {"Location", "Location not provided"},
	"volume":    {"Volume", "Volume not provided"},
	"pages":     {"Pages", "Pages not provided"},
	"doi":       {"DOI", "DOI not provided"},
	"url":       {"URL", "URL not provided"},
}

var authorSentinels = [][]string{{"Unknown"}, {""}, {"et. al."}}

var globalSentinels = []string{"", "Unknown", "Not provided", "Not specified", "Not available", "N/A", "NA"}

// stringFields exposes the scalar fields of a record by name.
func stringFields(r *models.ExtractedRecord) map[string]*string {
	return map[string]*string{
		"citation":  &r.Citation,
		"title":     &r.Title,
		"year":      &r.Year,
		"journal":   &r.Journal,
		"publisher": &r.Publisher,
		"location":  &r.Location,
		"volume":    &r.Volume,
		"pages":     &r.Pages,
		"doi":       &r.DOI,
		"url":       &r.URL,
	}
}

func clearSentinels(r *models.ExtractedRecord) {
	for name, field := range stringFields(r) {
		if contains(fieldSentinels[name], *field) || contains(globalSentinels, *field) {
			*field = ""
		}
	}
	for _, s := range authorSentinels {
		if equalStrings(r.Authors, s) {
			r.Authors = nil
			break
		}
	}
	if len(r.Authors) == 0 {
		r.Authors = nil
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
