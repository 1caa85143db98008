package pipeline

import (
	"context"

	"fedcite/internal/batch"
	"fedcite/internal/fetch"
	"fedcite/internal/reference"
)

// Build writes the batch request files for every configured year from the
// saved corpus and downloaded texts.
func (p *Pipeline) Build(ctx context.Context) (batch.BuildSummary, error) {
	docs, err := reference.LoadCorpus(p.cfg.CorpusFile)
	if err != nil {
		return batch.BuildSummary{}, err
	}
	tok, err := p.tok()
	if err != nil {
		return batch.BuildSummary{}, err
	}
	b := batch.NewBuilder(tok, batch.BuilderConfig{
		TextDir:     p.cfg.TextDir,
		BatchDir:    p.cfg.BatchDir,
		TokenBudget: p.cfg.TokenBudget,
		MaxLines:    p.cfg.MaxLinesPerFile,
		Params:      p.requestParams(),
	}, p.log)
	return b.Build(ctx, docs, fetch.Years(p.cfg.StartYear, p.cfg.EndYear))
}
