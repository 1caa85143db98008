// Package pipeline runs the four stages end to end: fetch, build, submit and
// process. Each stage reads what the previous one left on disk, so any stage
// can be rerun on its own.
package pipeline

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fedcite/internal/batch"
	"fedcite/internal/citations"
	"fedcite/internal/config"
	"fedcite/internal/federalregister"
	"fedcite/internal/fetch"
	"fedcite/internal/logging"
	"fedcite/internal/providers"
	"fedcite/internal/storage"
)

type Pipeline struct {
	cfg       config.Config
	log       *zap.Logger
	lister    fetch.DocumentLister
	fetcher   fetch.TextFetcher
	tokenizer citations.Tokenizer
	provider  providers.BatchProvider
}

type Option func(*Pipeline)

// WithDocumentClient replaces the Federal Register client used for listing
// and downloading.
func WithDocumentClient(lister fetch.DocumentLister, fetcher fetch.TextFetcher) Option {
	return func(p *Pipeline) {
		p.lister = lister
		p.fetcher = fetcher
	}
}

func WithTokenizer(tok citations.Tokenizer) Option {
	return func(p *Pipeline) { p.tokenizer = tok }
}

func WithProvider(provider providers.BatchProvider) Option {
	return func(p *Pipeline) { p.provider = provider }
}

func New(cfg config.Config, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, log: logging.OrNop(log)}
	for _, opt := range opts {
		opt(p)
	}
	if p.lister == nil || p.fetcher == nil {
		client := federalregister.NewClient(cfg.FederalRegisterAPI, &http.Client{Timeout: 2 * time.Minute}, cfg.RequestsPerSecond)
		if p.lister == nil {
			p.lister = client
		}
		if p.fetcher == nil {
			p.fetcher = client
		}
	}
	return p
}

func (p *Pipeline) Config() config.Config { return p.cfg }

func (p *Pipeline) tok() (citations.Tokenizer, error) {
	if p.tokenizer != nil {
		return p.tokenizer, nil
	}
	tok, err := citations.NewTiktokenTokenizer(p.cfg.Model)
	if err != nil {
		return nil, err
	}
	p.tokenizer = tok
	return tok, nil
}

func (p *Pipeline) batchProvider() (providers.BatchProvider, error) {
	if p.provider != nil {
		return p.provider, nil
	}
	provider, err := providers.New(p.cfg)
	if err != nil {
		return nil, err
	}
	p.provider = provider
	return provider, nil
}

func (p *Pipeline) requestParams() batch.RequestParams {
	params := batch.DefaultRequestParams()
	if p.cfg.Model != "" {
		params.Model = p.cfg.Model
	}
	params.Temperature = p.cfg.Temperature
	return params
}

// openDB connects to Postgres when a URL is configured. A nil DB and nil
// error mean the database sink is disabled.
func (p *Pipeline) openDB(ctx context.Context) (*storage.DB, error) {
	if p.cfg.PostgresURL == "" {
		return nil, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(connectCtx, p.cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
