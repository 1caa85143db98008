package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// All runs fetch, build, submit and process in order, stopping at the first
// stage that fails.
func (p *Pipeline) All(ctx context.Context) error {
	fetched, err := p.Fetch(ctx, 0)
	if err != nil {
		return err
	}
	p.log.Info("fetch: done", zap.Int("downloaded", fetched.Downloaded), zap.Int("missing", fetched.Missing), zap.Int("failed", fetched.Failed))

	built, err := p.Build(ctx)
	if err != nil {
		return err
	}
	p.log.Info("build: done", zap.Int("documents", built.Documents), zap.Int("requests", built.Requests), zap.Int("files", built.Files))

	if _, err := p.Submit(ctx); err != nil {
		return err
	}

	processed, err := p.Process(ctx)
	if err != nil {
		return err
	}
	p.log.Info("process: done", zap.Int("records", processed.Normalized))
	return nil
}
