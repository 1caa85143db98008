package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"fedcite/internal/citations"
	"fedcite/internal/logging"
	"fedcite/internal/models"
	"fedcite/internal/util"
)

type BuilderConfig struct {
	TextDir     string
	BatchDir    string
	TokenBudget int
	MaxLines    int
	Params      RequestParams
}

type BuildSummary struct {
	Documents    int
	NoCitations  int
	Unreadable   int
	Requests     int
	Files        int
	Tokens       int
	RequestFiles []string
}

type Builder struct {
	tok citations.Tokenizer
	cfg BuilderConfig
	log *zap.Logger
}

func NewBuilder(tok citations.Tokenizer, cfg BuilderConfig, log *zap.Logger) *Builder {
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = DefaultTokenBudget
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	if cfg.Params.Model == "" {
		cfg.Params = DefaultRequestParams()
	}
	return &Builder{tok: tok, cfg: cfg, log: logging.OrNop(log)}
}

// Build writes the request files for every year. A document without text on
// disk is ignored; one that fails to read is logged and skipped.
func (b *Builder) Build(ctx context.Context, corpus []models.Document, years []int) (BuildSummary, error) {
	var sum BuildSummary
	if err := util.EnsureDir(b.cfg.BatchDir); err != nil {
		return sum, err
	}
	byYear := documentsByYear(corpus)
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		var requests []Request
		for _, id := range byYear[year] {
			reqs, tokens, err := b.documentRequests(id)
			switch {
			case errors.Is(err, os.ErrNotExist):
				continue
			case errors.Is(err, util.ErrNoCitations):
				sum.Documents++
				sum.NoCitations++
				continue
			case err != nil:
				sum.Unreadable++
				b.log.Warn("batch: skipping unreadable document", zap.String("document", id), zap.Error(err))
				continue
			}
			sum.Documents++
			sum.Tokens += tokens
			requests = append(requests, reqs...)
		}
		paths, err := b.writeYear(year, requests)
		if err != nil {
			return sum, err
		}
		sum.Requests += len(requests)
		sum.Files += len(paths)
		sum.RequestFiles = append(sum.RequestFiles, paths...)
		if len(requests) > 0 {
			b.log.Info("batch: wrote request files",
				zap.Int("year", year),
				zap.Int("requests", len(requests)),
				zap.Int("files", len(paths)),
			)
		}
	}
	return sum, nil
}

func (b *Builder) documentRequests(id string) ([]Request, int, error) {
	raw, err := os.ReadFile(util.SafeJoin(b.cfg.TextDir, id+".txt"))
	if err != nil {
		return nil, 0, err
	}
	candidates := citations.Segment(string(raw))
	if candidates == "" {
		return nil, 0, util.ErrNoCitations
	}
	chunks := citations.Chunk(b.tok, b.cfg.Params.Prompt, candidates, b.cfg.TokenBudget)
	reqs := make([]Request, 0, len(chunks))
	for i, body := range chunks {
		reqs = append(reqs, NewRequest(models.PromptChunk{DocumentID: id, Index: i + 1, Body: body}, b.cfg.Params))
	}
	return reqs, citations.TokenCount(b.tok, candidates), nil
}

// writeYear replaces the year's part files with requests split into parts of
// at most MaxLines lines.
func (b *Builder) writeYear(year int, requests []Request) ([]string, error) {
	if err := removeParts(b.cfg.BatchDir, year); err != nil {
		return nil, err
	}
	var paths []string
	for part, start := 1, 0; start < len(requests); part, start = part+1, start+b.cfg.MaxLines {
		end := min(start+b.cfg.MaxLines, len(requests))
		path := filepath.Join(b.cfg.BatchDir, RequestFileName(year, part))
		if err := util.WriteJSONLinesAtomic(path, requests[start:end]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// documentsByYear returns unique document numbers per publication year,
// sorted so builds are reproducible.
func documentsByYear(corpus []models.Document) map[int][]string {
	seen := map[string]struct{}{}
	out := map[int][]string{}
	for _, d := range corpus {
		if d.DocumentNumber == "" {
			continue
		}
		if _, ok := seen[d.DocumentNumber]; ok {
			continue
		}
		seen[d.DocumentNumber] = struct{}{}
		y := d.Year()
		out[y] = append(out[y], d.DocumentNumber)
	}
	for y := range out {
		sort.Strings(out[y])
	}
	return out
}
