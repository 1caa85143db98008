package storage

import (
	"context"
	"fmt"
)

type BatchJobRecord struct {
	BatchID      string
	RequestFile  string
	Provider     string
	Description  string
	Status       string
	RawStatus    string
	OutputFileID string
	ErrorType    string
}

type BatchJobRepo struct {
	db *DB
}

func NewBatchJobRepo(db *DB) *BatchJobRepo {
	return &BatchJobRepo{db: db}
}

func (r *BatchJobRepo) Upsert(ctx context.Context, rec BatchJobRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO batch_jobs (batch_id, request_file, provider, description, status, raw_status, output_file_id, error_type)
VALUES ($1, $2, $3, NULLIF($4,''), $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''))
ON CONFLICT (batch_id)
DO UPDATE SET
  status = EXCLUDED.status,
  raw_status = EXCLUDED.raw_status,
  output_file_id = COALESCE(EXCLUDED.output_file_id, batch_jobs.output_file_id),
  error_type = EXCLUDED.error_type,
  updated_at = NOW()`,
		rec.BatchID, rec.RequestFile, rec.Provider, rec.Description, rec.Status, rec.RawStatus, rec.OutputFileID, rec.ErrorType)
	if err != nil {
		return fmt.Errorf("upsert batch job: %w", err)
	}
	return nil
}

func (r *BatchJobRepo) ListByStatus(ctx context.Context, status string) ([]BatchJobRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT batch_id, request_file, provider, COALESCE(description,''), status,
       COALESCE(raw_status,''), COALESCE(output_file_id,''), COALESCE(error_type,'')
FROM batch_jobs
WHERE status=$1
ORDER BY updated_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list batch jobs: %w", err)
	}
	defer rows.Close()

	var out []BatchJobRecord
	for rows.Next() {
		var rec BatchJobRecord
		if err := rows.Scan(&rec.BatchID, &rec.RequestFile, &rec.Provider, &rec.Description, &rec.Status,
			&rec.RawStatus, &rec.OutputFileID, &rec.ErrorType); err != nil {
			return nil, fmt.Errorf("scan batch job: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
