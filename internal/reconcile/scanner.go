package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const errorContextRadius = 30

var abuttingQuotes = regexp.MustCompile(`"\s*"([a-zA-Z])`)

// RepairMissingCommas separates two string tokens that abut without a comma,
// the most common way model output breaks an otherwise valid object.
func RepairMissingCommas(s string) string {
	return abuttingQuotes.ReplaceAllString(s, "\",\n\"${1}")
}

// SpanError describes a balanced {...} span that failed to decode.
type SpanError struct {
	Span    string
	Offset  int
	Context string
	Err     error
}

func (e SpanError) Error() string {
	return fmt.Sprintf("invalid json object at offset %d: %v (context %q)", e.Offset, e.Err, e.Context)
}

func (e SpanError) Unwrap() error { return e.Err }

type scanState int

const (
	outside scanState = iota
	inside
)

// ScanObjects decodes every maximal balanced {...} span of s. Spans that do
// not decode are returned as errors and never stop the scan. A closing brace
// seen outside any object is ignored. Braces inside string literals are
// counted like any other brace.
func ScanObjects(s string) ([]map[string]any, []SpanError) {
	var (
		objects []map[string]any
		errs    []SpanError
		state   = outside
		depth   int
		start   int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; state {
		case outside:
			if c == '{' {
				state, depth, start = inside, 1, i
			}
		case inside:
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth > 0 {
					continue
				}
				state = outside
				span := s[start : i+1]
				obj, err := decodeSpan(span)
				if err != nil {
					errs = append(errs, *err)
					continue
				}
				objects = append(objects, obj)
			}
		}
	}
	return objects, errs
}

func decodeSpan(span string) (map[string]any, *SpanError) {
	var obj map[string]any
	err := json.Unmarshal([]byte(span), &obj)
	if err == nil {
		return obj, nil
	}
	offset := 0
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		offset = int(syn.Offset)
	}
	lo := max(0, offset-errorContextRadius)
	hi := min(len(span), offset+errorContextRadius)
	// Shrink to rune boundaries so Context stays valid UTF-8.
	for lo < hi && !utf8.RuneStart(span[lo]) {
		lo++
	}
	for hi > lo && hi < len(span) && !utf8.RuneStart(span[hi]) {
		hi--
	}
	return nil, &SpanError{Span: span, Offset: offset, Context: span[lo:hi], Err: err}
}
