package reconcile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"fedcite/internal/models"
	"fedcite/internal/util"
)

// LineError records a batch output line that could not be used.
type LineError struct {
	Line int
	Err  error
}

type Result struct {
	Records map[string][]models.ExtractedRecord
	// Order holds custom ids in the order they were first seen.
	Order     []string
	Malformed []SpanError
	BadLines  []LineError
	Usage     Usage
}

// Records flattened in first-seen custom id order.
func (r Result) Flatten() []models.ExtractedRecord {
	var out []models.ExtractedRecord
	for _, id := range r.Order {
		out = append(out, r.Records[id]...)
	}
	return out
}

// Reconcile parses batch output lines into extracted records keyed by custom
// id. Token usage is summed over every decodable envelope. A later envelope
// for an already seen custom id replaces the earlier records.
func Reconcile(lines []string) Result {
	res := Result{Records: map[string][]models.ExtractedRecord{}}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		env, err := ParseEnvelope(line)
		if err != nil {
			res.BadLines = append(res.BadLines, LineError{Line: i + 1, Err: err})
			if env.CustomID == "" {
				continue
			}
		}
		res.Usage.Add(env.Usage())

		content, ok := env.Content()
		if !ok {
			continue
		}
		objects, spanErrs := ScanObjects(RepairMissingCommas(content))
		res.Malformed = append(res.Malformed, spanErrs...)

		records := make([]models.ExtractedRecord, 0, len(objects))
		for _, obj := range objects {
			records = append(records, DecodeRecord(env.CustomID, obj))
		}
		if _, seen := res.Records[env.CustomID]; !seen {
			res.Order = append(res.Order, env.CustomID)
		}
		res.Records[env.CustomID] = records
	}
	return res
}

// DecodeRecord maps one loosely typed object onto an ExtractedRecord. Scalars
// of the wrong type are rendered as text; a non-list authors value is dropped.
func DecodeRecord(customID string, obj map[string]any) models.ExtractedRecord {
	rec := models.ExtractedRecord{
		CustomID:            customID,
		DocumentID:          models.DocumentIDFromCustomID(customID),
		Citation:            text(obj["citation"]),
		Title:               text(obj["title"]),
		Authors:             authors(obj["authors"]),
		Year:                text(obj["year"]),
		Journal:             text(obj["journal"]),
		Publisher:           text(obj["publisher"]),
		Location:            text(obj["location"]),
		Volume:              text(obj["volume"]),
		Pages:               text(obj["pages"]),
		DOI:                 text(obj["doi"]),
		URL:                 text(obj["url"]),
		EtAlFlag:            flag(obj["et_al_flag"]),
		NonPersonAuthorFlag: flag(obj["non_person_author_flag"]),
	}
	rec.Fields = make([]string, 0, len(obj))
	for k := range obj {
		rec.Fields = append(rec.Fields, k)
	}
	sort.Strings(rec.Fields)
	return rec
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func authors(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		out = append(out, text(a))
	}
	return out
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	}
	return false
}

// LoadDir returns the non-empty lines of every .jsonl file in dir, files in
// name order.
func LoadDir(dir string) ([]string, error) {
	files, err := util.ListFiles(dir, ".jsonl")
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, path := range files {
		fileLines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
