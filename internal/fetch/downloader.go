package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"fedcite/internal/federalregister"
	"fedcite/internal/logging"
	"fedcite/internal/models"
	"fedcite/internal/util"
)

type TextFetcher interface {
	FetchRawText(ctx context.Context, url string) ([]byte, error)
	FetchPDFText(ctx context.Context, url string) ([]byte, error)
}

type DownloaderConfig struct {
	Dir        string
	LogDir     string
	TargetType string
	Workers    int
	Cooldown   time.Duration
	// MaxRateLimitRetries bounds re-submissions of one document after a 429 or
	// a transient transport error; 0 retries forever.
	MaxRateLimitRetries int
	ProgressInterval    time.Duration
	PDFFallback         bool
}

type Summary struct {
	Pending     int
	Downloaded  int
	Missing     int
	Failed      int
	RateLimited int
	Transient   int
}

type Downloader struct {
	client   TextFetcher
	cfg      DownloaderConfig
	gate     *Gate
	failures *FailureLog
	log      *zap.Logger
}

func NewDownloader(client TextFetcher, cfg DownloaderConfig, log *zap.Logger) *Downloader {
	if cfg.Workers <= 0 {
		cfg.Workers = 16
	}
	if cfg.TargetType == "" {
		cfg.TargetType = "rule"
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 180 * time.Second
	}
	return &Downloader{
		client:   client,
		cfg:      cfg,
		gate:     NewGate(),
		failures: NewFailureLog(cfg.LogDir),
		log:      logging.OrNop(log),
	}
}

type task struct {
	id     string
	url    string
	pdf    bool
	target string
}

// pending returns the documents still to download: target type, a usable
// link, and no text file on disk yet.
func (d *Downloader) pending(docs []models.Document) []task {
	var out []task
	for _, doc := range docs {
		if doc.DocumentNumber == "" || !doc.HasType(d.cfg.TargetType) {
			continue
		}
		t := task{id: doc.DocumentNumber, url: doc.RawTextURL, target: d.TextPath(doc.DocumentNumber)}
		if t.url == "" {
			if !d.cfg.PDFFallback || doc.PDFURL == "" {
				continue
			}
			t.url, t.pdf = doc.PDFURL, true
		}
		if util.FileExists(t.target) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (d *Downloader) TextPath(docID string) string {
	return util.SafeJoin(d.cfg.Dir, docID+".txt")
}

type counters struct {
	downloaded, missing, failed, rateLimited, transient atomic.Int64
}

// Run downloads every pending document on the configured number of workers.
// A 429 closes the shared gate for the cooldown and the same document is
// tried again afterwards; timeouts and transport errors are retried after the
// cooldown; other HTTP errors are logged as missing.
func (d *Downloader) Run(ctx context.Context, docs []models.Document) (Summary, error) {
	if err := util.EnsureDir(d.cfg.Dir); err != nil {
		return Summary{}, err
	}
	pending := d.pending(docs)
	existing := countExisting(d.cfg.Dir)
	d.log.Info("fetch: starting downloads",
		zap.Int("pending", len(pending)),
		zap.Int("existing", existing),
		zap.Int("workers", d.cfg.Workers),
	)

	var c counters
	stopProgress := d.reportProgress(ctx, &c, existing, existing+len(pending))
	defer stopProgress()

	tasks := make(chan task)
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				d.download(ctx, t, &c)
			}
		}()
	}
feed:
	for _, t := range pending {
		select {
		case tasks <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	s := Summary{
		Pending:     len(pending),
		Downloaded:  int(c.downloaded.Load()),
		Missing:     int(c.missing.Load()),
		Failed:      int(c.failed.Load()),
		RateLimited: int(c.rateLimited.Load()),
		Transient:   int(c.transient.Load()),
	}
	d.log.Info("fetch: downloads finished",
		zap.Int("downloaded", s.Downloaded),
		zap.Int("missing", s.Missing),
		zap.Int("failed", s.Failed),
		zap.Int("rate_limited", s.RateLimited),
		zap.Int("transient", s.Transient),
	)
	return s, ctx.Err()
}

func (d *Downloader) download(ctx context.Context, t task, c *counters) {
	log := d.log.With(zap.String("document", t.id))
	for attempt := 1; ; attempt++ {
		if err := d.gate.Wait(ctx); err != nil {
			return
		}
		body, err := d.fetch(ctx, t)
		if err == nil {
			if err := util.WriteBytesAtomic(t.target, body); err != nil {
				c.failed.Add(1)
				log.Error("fetch: failed to write text", zap.Error(err))
				return
			}
			c.downloaded.Add(1)
			return
		}

		var rl *federalregister.RateLimitError
		var apiErr *federalregister.APIError
		switch {
		case errors.As(err, &rl):
			c.rateLimited.Add(1)
			if logErr := d.failures.RateLimited(t.id, t.url, rl.Header); logErr != nil {
				log.Warn("fetch: failed to record rate limit headers", zap.Error(logErr))
			}
			if d.gate.Pause(d.cfg.Cooldown) {
				log.Warn("fetch: rate limit hit, pausing all workers", zap.Duration("cooldown", d.cfg.Cooldown))
			}
			if d.retriesExhausted(attempt) {
				c.failed.Add(1)
				log.Error("fetch: giving up after repeated rate limits", zap.Int("attempts", attempt))
				return
			}
		case errors.As(err, &apiErr):
			c.missing.Add(1)
			if logErr := d.failures.Missing(apiErr.StatusCode, t.id, t.url); logErr != nil {
				log.Warn("fetch: failed to record missing document", zap.Error(logErr))
			}
			log.Warn("fetch: document unavailable", zap.Int("status", apiErr.StatusCode))
			return
		case ctx.Err() == nil && federalregister.IsTransient(err):
			c.transient.Add(1)
			if d.retriesExhausted(attempt) {
				c.failed.Add(1)
				log.Error("fetch: giving up after repeated transient errors", zap.Int("attempts", attempt), zap.Error(err))
				return
			}
			log.Warn("fetch: transient error, retrying after cooldown", zap.Duration("cooldown", d.cfg.Cooldown), zap.Error(err))
			if !sleep(ctx, d.cfg.Cooldown) {
				return
			}
		default:
			if ctx.Err() == nil {
				c.failed.Add(1)
				log.Error("fetch: download failed", zap.Error(err))
			}
			return
		}
	}
}

// retriesExhausted applies MaxRateLimitRetries to rate limits and transient
// errors alike; 0 retries forever.
func (d *Downloader) retriesExhausted(attempt int) bool {
	return d.cfg.MaxRateLimitRetries > 0 && attempt > d.cfg.MaxRateLimitRetries
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (d *Downloader) fetch(ctx context.Context, t task) ([]byte, error) {
	if t.pdf {
		return d.client.FetchPDFText(ctx, t.url)
	}
	return d.client.FetchRawText(ctx, t.url)
}

func (d *Downloader) reportProgress(ctx context.Context, c *counters, existing, total int) func() {
	if d.cfg.ProgressInterval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(d.cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.log.Info("fetch: progress",
					zap.Int64("files", int64(existing)+c.downloaded.Load()),
					zap.Int("total", total),
				)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func countExisting(dir string) int {
	files, err := util.ListFiles(dir, ".txt")
	if err != nil {
		return 0
	}
	return len(files)
}

// Gate exposes the shared pause switch, mainly for tests.
func (d *Downloader) Gate() *Gate { return d.gate }
