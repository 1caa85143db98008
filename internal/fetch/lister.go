// Package fetch collects the document corpus from the Federal Register and
// downloads the raw text of every document of the target type.
package fetch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fedcite/internal/federalregister"
	"fedcite/internal/logging"
	"fedcite/internal/models"
)

var quarters = [4][2]string{
	{"01-01", "03-31"},
	{"04-01", "06-30"},
	{"07-01", "09-30"},
	{"10-01", "12-31"},
}

type DocumentLister interface {
	ListDocuments(ctx context.Context, q federalregister.Query) ([]models.Document, int, error)
}

type Lister struct {
	client  DocumentLister
	workers int
	log     *zap.Logger
}

func NewLister(client DocumentLister, workers int, log *zap.Logger) *Lister {
	if workers <= 0 {
		workers = 4
	}
	return &Lister{client: client, workers: workers, log: logging.OrNop(log)}
}

// FetchCorpus lists every document published in the given years, one year
// per worker, querying quarter by quarter. Years are merged in completion
// order. Any failed listing fails the whole corpus.
func (l *Lister) FetchCorpus(ctx context.Context, years []int) ([]models.Document, error) {
	var (
		mu  sync.Mutex
		all []models.Document
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, year := range years {
		g.Go(func() error {
			docs, err := l.listYear(gCtx, year)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, docs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

func (l *Lister) listYear(ctx context.Context, year int) ([]models.Document, error) {
	var (
		docs  []models.Document
		total int
	)
	for _, q := range quarters {
		query := federalregister.Query{
			From: fmt.Sprintf("%d-%s", year, q[0]),
			To:   fmt.Sprintf("%d-%s", year, q[1]),
		}
		found, count, err := l.client.ListDocuments(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("list year %d: %w", year, err)
		}
		total += count
		docs = append(docs, found...)
	}
	l.log.Info("fetch: listed year",
		zap.Int("year", year),
		zap.Int("documents", len(docs)),
		zap.Int("reported", total),
	)
	return docs, nil
}

// Years returns the inclusive range from..to.
func Years(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}
