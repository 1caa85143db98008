package reconcile

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestRepairMissingCommas(t *testing.T) {
	in := `{"title": "A Study" "authors": ["J Smith"]}`
	require.Equal(t, "{\"title\": \"A Study\",\n\"authors\": [\"J Smith\"]}", RepairMissingCommas(in))

	// A quote pair followed by a non-letter is left alone.
	require.Equal(t, `["a" "1"]`, RepairMissingCommas(`["a" "1"]`))
}

func TestScanObjectsGoodMalformedAndStrayBrace(t *testing.T) {
	content := "Here are the references:\n" +
		`{"title": "A Study", "year": "2001"}` + "\n" +
		`{"title": "Broken", "year": 2001,,}` + "\n" +
		"} trailing"

	objs, errs := ScanObjects(content)
	require.Len(t, objs, 1)
	require.Equal(t, "A Study", objs[0]["title"])
	require.Len(t, errs, 1)
	require.Equal(t, `{"title": "Broken", "year": 2001,,}`, errs[0].Span)
	require.NotEmpty(t, errs[0].Context)
	require.Error(t, errs[0])
}

func TestScanObjectsNested(t *testing.T) {
	objs, errs := ScanObjects("```json\n{\"a\": {\"b\": 1}} {\"c\": 2}\n```")
	require.Empty(t, errs)
	require.Len(t, objs, 2)
	require.Equal(t, map[string]any{"b": float64(1)}, objs[0]["a"])
}

func TestScanObjectsUnbalancedTail(t *testing.T) {
	objs, errs := ScanObjects(`{"a": 1} {"b": 2`)
	require.Len(t, objs, 1)
	require.Empty(t, errs)
}

func TestScanObjectsStrayCloseBeforeObject(t *testing.T) {
	objs, errs := ScanObjects(`}} {"a": 1}`)
	require.Len(t, objs, 1)
	require.Empty(t, errs)
}

func TestSpanErrorContextIsBounded(t *testing.T) {
	long := `{"title": "` + strings.Repeat("a", 80) + `" "x"}`
	_, errs := ScanObjects(long)
	require.Len(t, errs, 1)
	require.LessOrEqual(t, len(errs[0].Context), 2*errorContextRadius)
	require.Greater(t, errs[0].Offset, 0)
}

func TestSpanErrorContextKeepsRunesWhole(t *testing.T) {
	for pad := 0; pad < 4; pad++ {
		text := `{"title": "` + strings.Repeat("x", pad) + strings.Repeat("é—", 20) + `" "x"}`
		_, errs := ScanObjects(text)
		require.Len(t, errs, 1)
		require.True(t, utf8.ValidString(errs[0].Context), "pad %d: %q", pad, errs[0].Context)
		require.NotEmpty(t, errs[0].Context)
		require.LessOrEqual(t, len(errs[0].Context), 2*errorContextRadius)
	}
}
