// internal/store/archive/archive_test.go
package archive

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewNoOpLogger()), mock
}

func sampleResult() *models.TriageResult {
	return &models.TriageResult{
		SubmissionID:   12081,
		Title:          "Add Pizza Palace",
		FinalScore:     72,
		Recommendation: "MEDIUM CONFIDENCE - Recommend Approval with Notes",
		Tier:           models.TierMedium,
		Status:         "completed",
		ProcessedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

// ==========================
// Schema Tests
// ==========================

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS triage_results").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS triage_results").
		WillReturnError(sql.ErrConnDone)

	assert.Error(t, store.EnsureSchema(context.Background()))
}

// ==========================
// SaveResult Tests
// ==========================

func TestSaveResult(t *testing.T) {
	store, mock := newMockStore(t)
	result := sampleResult()

	mock.ExpectExec("INSERT INTO triage_results").
		WithArgs(
			sqlmock.AnyArg(), // generated row id
			"run-1",
			result.SubmissionID,
			result.Title,
			result.FinalScore,
			result.Tier,
			result.Recommendation,
			result.Status,
			sqlmock.AnyArg(), // json payload
			result.ProcessedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveResult(context.Background(), "run-1", result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResult_FillsMissingProcessedAt(t *testing.T) {
	store, mock := newMockStore(t)
	result := sampleResult()
	result.ProcessedAt = time.Time{}

	mock.ExpectExec("INSERT INTO triage_results").
		WithArgs(
			sqlmock.AnyArg(), "run-2", result.SubmissionID, result.Title,
			result.FinalScore, result.Tier, result.Recommendation, result.Status,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveResult(context.Background(), "run-2", result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResult_InsertError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO triage_results").
		WillReturnError(sql.ErrConnDone)

	assert.Error(t, store.SaveResult(context.Background(), "run-3", sampleResult()))
}

// ==========================
// LatestResult Tests
// ==========================

func TestLatestResult(t *testing.T) {
	store, mock := newMockStore(t)

	payload := `{"submission_id":12081,"title":"Add Pizza Palace","final_score":72,"tier":"medium","status":"completed"}`
	mock.ExpectQuery("SELECT payload FROM triage_results").
		WithArgs(int64(12081)).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(payload)))

	result, err := store.LatestResult(context.Background(), 12081)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(12081), result.SubmissionID)
	assert.Equal(t, 72, result.FinalScore)
	assert.Equal(t, models.TierMedium, result.Tier)
}

func TestLatestResult_NoHistory(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM triage_results").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	result, err := store.LatestResult(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, result)
}
