package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fedcite/internal/models"
	"fedcite/internal/util"
)

var citationColumns = []string{
	"run_id", "position", "custom_id", "docid", "citation", "title", "authors", "year", "journal",
	"publisher", "location", "volume", "pages", "doi", "url", "et_al_flag", "non_person_author_flag",
	"agencies", "regulation_id_numbers",
}

type CitationRepo struct {
	db *DB
}

func NewCitationRepo(db *DB) *CitationRepo {
	return &CitationRepo{db: db}
}

// ReplaceRun stores the dataset of one run, replacing whatever the run id
// held before.
func (r *CitationRepo) ReplaceRun(ctx context.Context, runID string, records []models.NormalizedRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin citations tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM citations WHERE run_id=$1`, runID); err != nil {
		return fmt.Errorf("clear citations run: %w", err)
	}
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		rows = append(rows, citationRow(runID, i, rec))
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"citations"}, citationColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy citations: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit citations: %w", err)
	}
	return nil
}

func (r *CitationRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM citations WHERE run_id=$1`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count citations: %w", err)
	}
	return n, nil
}

func citationRow(runID string, pos int, rec models.NormalizedRecord) []any {
	return []any{
		runID, pos, rec.CustomID, rec.DocumentID,
		nullable(rec.Citation), nullable(rec.Title), sanitizeList(rec.Authors), nullable(rec.Year),
		nullable(rec.Journal), nullable(rec.Publisher), nullable(rec.Location), nullable(rec.Volume),
		nullable(rec.Pages), nullable(rec.DOI), nullable(rec.URL),
		rec.EtAlFlag, rec.NonPersonAuthorFlag,
		sanitizeList(rec.Agencies), sanitizeList(rec.RegulationIDNumbers),
	}
}

func nullable(s string) *string {
	s = util.SanitizeText(s)
	if s == "" {
		return nil
	}
	return &s
}

func sanitizeList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = util.SanitizeText(s)
	}
	return out
}
