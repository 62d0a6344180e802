// internal/store/archive/archive.go
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "merchant-triage/internal/common/errors"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// Store persists per-run triage results so past verdicts survive
// restarts and can be audited later.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// EnsureSchema creates the results table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS triage_results (
			id UUID PRIMARY KEY,
			run_id UUID NOT NULL,
			submission_id BIGINT NOT NULL,
			merchant_name TEXT NOT NULL,
			final_score INT NOT NULL,
			tier TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			status TEXT NOT NULL,
			payload JSONB NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return apperrors.NewArchiveWriteFailedError(err)
	}
	return nil
}

// SaveResult archives one triage result under the given run.
func (s *Store) SaveResult(ctx context.Context, runID string, result *models.TriageResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewArchiveWriteFailedError(err)
	}

	processedAt := result.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO triage_results
			(id, run_id, submission_id, merchant_name, final_score, tier, recommendation, status, payload, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.NewString(),
		runID,
		result.SubmissionID,
		result.Title,
		result.FinalScore,
		result.Tier,
		result.Recommendation,
		result.Status,
		payload,
		processedAt,
	)
	if err != nil {
		return apperrors.NewArchiveWriteFailedError(err)
	}

	s.logger.Debug("Archived triage result", map[string]interface{}{
		"runID":        runID,
		"submissionID": result.SubmissionID,
	})
	return nil
}

// LatestResult returns the most recent archived result for a submission.
func (s *Store) LatestResult(ctx context.Context, submissionID int64) (*models.TriageResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM triage_results
		WHERE submission_id = $1
		ORDER BY processed_at DESC
		LIMIT 1`, submissionID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewArchiveWriteFailedError(err)
	}

	var result models.TriageResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, apperrors.NewArchiveWriteFailedError(err)
	}
	return &result, nil
}
