package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fedcite/internal/config"
	"fedcite/internal/federalregister"
	"fedcite/internal/models"
	"fedcite/internal/providers"
)

type fakeFederalRegister struct {
	mu       sync.Mutex
	listings int
	texts    map[string]string
}

func (f *fakeFederalRegister) ListDocuments(_ context.Context, q federalregister.Query) ([]models.Document, int, error) {
	f.mu.Lock()
	f.listings++
	f.mu.Unlock()
	if !strings.HasSuffix(q.From, "-01-01") {
		return nil, 0, nil
	}
	docs := []models.Document{
		{
			DocumentNumber:      "2020-00001",
			Type:                "Rule",
			PublicationDate:     "2020-01-15",
			RawTextURL:          "https://example.test/2020-00001.txt",
			Agencies:            []models.Agency{{RawName: "Environmental Protection Agency"}},
			RegulationIDNumbers: []string{"2060-AT00"},
		},
		{
			DocumentNumber:  "2020-00002",
			Type:            "Proposed Rule",
			PublicationDate: "2020-02-01",
			RawTextURL:      "https://example.test/2020-00002.txt",
		},
	}
	return docs, len(docs), nil
}

func (f *fakeFederalRegister) FetchRawText(_ context.Context, url string) ([]byte, error) {
	return []byte(f.texts[url]), nil
}

func (f *fakeFederalRegister) FetchPDFText(_ context.Context, url string) ([]byte, error) {
	return nil, &federalregister.APIError{StatusCode: 404, URL: url}
}

type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	rs := make([]rune, len(tokens))
	for i, t := range tokens {
		rs[i] = rune(t)
	}
	return string(rs)
}

func testConfig(root string) config.Config {
	return config.Config{
		DataRoot:              root,
		CorpusFile:            filepath.Join(root, "all_doc_info.json"),
		TextDir:               filepath.Join(root, "texts"),
		BatchDir:              filepath.Join(root, "batches"),
		ResultsDir:            filepath.Join(root, "results"),
		LogDir:                filepath.Join(root, "logs"),
		AgencyTable:           filepath.Join(root, "agency_hash.json"),
		EntityTable:           filepath.Join(root, "entity_hash.json"),
		OutputCSV:             filepath.Join(root, "out.csv"),
		OutputXLSX:            filepath.Join(root, "out.xlsx"),
		StartYear:             2020,
		EndYear:               2020,
		ListWorkers:           1,
		DownloadWorkers:       2,
		RateLimitCooldown:     time.Millisecond,
		TargetType:            "rule",
		Model:                 "gpt-4o",
		TokenBudget:           100000,
		Temperature:           0.5,
		MaxLinesPerFile:       25,
		PollInterval:          time.Millisecond,
		BatchDescription:      "Final-Rules",
		InputPricePerMillion:  1.25,
		OutputPricePerMillion: 5,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	fr := &fakeFederalRegister{texts: map[string]string{
		"https://example.test/2020-00001.txt": "Final rule body.\n----------------------------------------\n" +
			`\1\ Smith, J. (2001). A Study. Journal X.` + "\n" +
			`\2\ 42 U.S.C. 7401` + "\n",
	}}
	mock := providers.NewMockBatchProvider()
	mock.Respond = func(customID string, turns []string) string {
		return `Here you go: {"title": "A Study", "authors": ["Smith, J."], "year": "2001", "journal": "Journal X"}` +
			` {"title": "N/A" "year": "N/A"}`
	}

	core, logs := observer.New(zap.InfoLevel)
	p := New(cfg, zap.New(core), WithDocumentClient(fr, fr), WithTokenizer(runeTokenizer{}), WithProvider(mock))
	ctx := context.Background()

	fetched, err := p.Fetch(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, fetched.Downloaded)
	require.Equal(t, 4, fr.listings)
	require.FileExists(t, filepath.Join(cfg.TextDir, "2020-00001.txt"))
	require.NoFileExists(t, filepath.Join(cfg.TextDir, "2020-00002.txt"))

	// The saved corpus is reused.
	_, err = p.Fetch(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 4, fr.listings)

	built, err := p.Build(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, built.Requests)
	require.Equal(t, 1, built.Files)

	submitted, err := p.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, submitted.Completed)
	require.FileExists(t, filepath.Join(cfg.ResultsDir, "completed-batches", "batch_file_2020_part1.jsonl"))

	processed, err := p.Process(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, processed.Lines)
	require.Equal(t, 1, processed.Chunks)
	require.Equal(t, 2, processed.Extracted)
	require.Equal(t, 1, processed.Normalized)
	require.Empty(t, processed.RunID)

	raw, err := os.ReadFile(cfg.OutputCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\r\n"), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "citation,title,authors,year"))
	require.Contains(t, lines[1], "A Study")
	require.Contains(t, lines[1], "['Environmental Protection Agency']")
	require.Contains(t, lines[1], "['2060-AT00']")
	require.Contains(t, lines[1], "2020-00001")

	f, err := excelize.OpenFile(cfg.OutputXLSX)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("citations")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, 2, logs.FilterMessage("process: lookup table not found, continuing without it").Len())
}

func TestProcessWithoutResultsFails(t *testing.T) {
	p := New(testConfig(t.TempDir()), nil, WithDocumentClient(&fakeFederalRegister{}, &fakeFederalRegister{}))
	_, err := p.Process(context.Background())
	require.Error(t, err)
}

func TestBuildWithoutCorpusFails(t *testing.T) {
	p := New(testConfig(t.TempDir()), nil, WithTokenizer(runeTokenizer{}))
	_, err := p.Build(context.Background())
	require.Error(t, err)
}
