package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fedcite/internal/models"
	"fedcite/internal/normalize"
	"fedcite/internal/output"
	"fedcite/internal/reconcile"
	"fedcite/internal/reference"
	"fedcite/internal/storage"
)

type ProcessSummary struct {
	Lines      int
	Chunks     int
	Extracted  int
	Malformed  int
	BadLines   int
	Normalized int
	Usage      reconcile.Usage
	Cost       reconcile.Cost
	RunID      string
}

// Process reconciles every completed batch output, normalizes the records and
// writes the dataset. Unparseable spans and lines are logged and skipped.
func (p *Pipeline) Process(ctx context.Context) (ProcessSummary, error) {
	var sum ProcessSummary
	lines, err := reconcile.LoadDir(filepath.Join(p.cfg.ResultsDir, "completed-batches"))
	if err != nil {
		return sum, err
	}
	res := reconcile.Reconcile(lines)
	extracted := res.Flatten()
	sum.Lines = len(lines)
	sum.Chunks = len(res.Order)
	sum.Extracted = len(extracted)
	sum.Malformed = len(res.Malformed)
	sum.BadLines = len(res.BadLines)
	sum.Usage = res.Usage
	sum.Cost = res.Usage.Cost(reconcile.Rates{
		InputPerMillion:  p.cfg.InputPricePerMillion,
		OutputPerMillion: p.cfg.OutputPricePerMillion,
	})

	for _, se := range res.Malformed {
		p.log.Debug("process: malformed object", zap.Int("offset", se.Offset), zap.String("context", se.Context), zap.Error(se.Err))
	}
	for _, le := range res.BadLines {
		p.log.Warn("process: unusable output line", zap.Int("line", le.Line), zap.Error(le.Err))
	}
	p.log.Info("process: reconciled",
		zap.Int("lines", sum.Lines),
		zap.Int("records", sum.Extracted),
		zap.Int("malformed", sum.Malformed),
		zap.Int("bad_lines", sum.BadLines),
		zap.Int("prompt_tokens", sum.Usage.PromptTokens),
		zap.Int("completion_tokens", sum.Usage.CompletionTokens),
		zap.String("cost", sum.Cost.String()),
	)

	ref, err := p.reference()
	if err != nil {
		return sum, err
	}
	records := normalize.Normalize(extracted, ref)
	sum.Normalized = len(records)

	if err := output.WriteCSV(p.cfg.OutputCSV, records); err != nil {
		return sum, err
	}
	p.log.Info("process: wrote dataset", zap.String("path", p.cfg.OutputCSV), zap.Int("records", len(records)))
	if p.cfg.OutputXLSX != "" {
		if err := output.WriteXLSX(p.cfg.OutputXLSX, records); err != nil {
			return sum, err
		}
		p.log.Info("process: wrote workbook", zap.String("path", p.cfg.OutputXLSX))
	}

	runID, err := p.store(ctx, records)
	if err != nil {
		return sum, err
	}
	sum.RunID = runID
	return sum, nil
}

func (p *Pipeline) reference() (normalize.Reference, error) {
	docs, err := reference.LoadCorpus(p.cfg.CorpusFile)
	if err != nil {
		return normalize.Reference{}, err
	}
	agencies, err := p.optionalTable(p.cfg.AgencyTable)
	if err != nil {
		return normalize.Reference{}, err
	}
	entities, err := p.optionalTable(p.cfg.EntityTable)
	if err != nil {
		return normalize.Reference{}, err
	}
	return normalize.BuildReference(docs, agencies, entities), nil
}

// optionalTable loads a lookup table; a missing file yields an empty table.
func (p *Pipeline) optionalTable(path string) (map[string]string, error) {
	table, err := reference.LoadStringMap(path)
	if errors.Is(err, os.ErrNotExist) {
		p.log.Warn("process: lookup table not found, continuing without it", zap.String("path", path))
		return map[string]string{}, nil
	}
	return table, err
}

// store writes the dataset to Postgres under a fresh run id. It returns ""
// when no database is configured.
func (p *Pipeline) store(ctx context.Context, records []models.NormalizedRecord) (string, error) {
	db, err := p.openDB(ctx)
	if err != nil || db == nil {
		return "", err
	}
	defer db.Close()

	runID := uuid.NewString()
	if err := storage.NewCitationRepo(db).ReplaceRun(ctx, runID, records); err != nil {
		return "", err
	}
	p.log.Info("process: stored dataset", zap.String("run_id", runID), zap.Int("records", len(records)))
	return runID, nil
}
