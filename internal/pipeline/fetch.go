package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fedcite/internal/fetch"
	"fedcite/internal/models"
	"fedcite/internal/reference"
	"fedcite/internal/util"
)

// Corpus returns the saved document listing, listing every configured year
// first when no corpus file exists yet.
func (p *Pipeline) Corpus(ctx context.Context) ([]models.Document, error) {
	if util.FileExists(p.cfg.CorpusFile) {
		docs, err := reference.LoadCorpus(p.cfg.CorpusFile)
		if err != nil {
			return nil, err
		}
		p.log.Info("fetch: using saved corpus", zap.String("path", p.cfg.CorpusFile), zap.Int("documents", len(docs)))
		return docs, nil
	}

	years := fetch.Years(p.cfg.StartYear, p.cfg.EndYear)
	docs, err := fetch.NewLister(p.lister, p.cfg.ListWorkers, p.log).FetchCorpus(ctx, years)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	if err := util.WriteJSONAtomic(p.cfg.CorpusFile, docs); err != nil {
		return nil, err
	}
	p.log.Info("fetch: saved corpus", zap.String("path", p.cfg.CorpusFile), zap.Int("documents", len(docs)))
	return docs, nil
}

// Fetch lists the corpus if needed and downloads every missing raw text.
// workers overrides the configured download pool size when positive.
func (p *Pipeline) Fetch(ctx context.Context, workers int) (fetch.Summary, error) {
	docs, err := p.Corpus(ctx)
	if err != nil {
		return fetch.Summary{}, err
	}
	if workers <= 0 {
		workers = p.cfg.DownloadWorkers
	}
	d := fetch.NewDownloader(p.fetcher, fetch.DownloaderConfig{
		Dir:                 p.cfg.TextDir,
		LogDir:              p.cfg.LogDir,
		TargetType:          p.cfg.TargetType,
		Workers:             workers,
		Cooldown:            p.cfg.RateLimitCooldown,
		MaxRateLimitRetries: p.cfg.MaxRateLimitRetries,
		ProgressInterval:    p.cfg.ProgressInterval,
		PDFFallback:         p.cfg.PDFFallback,
	}, p.log)
	return d.Run(ctx, docs)
}
