// internal/store/outreach/store.go
package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "merchant-triage/internal/common/errors"
	"merchant-triage/internal/models"
)

// Observations older than this are considered stale; a fresh outreach
// round starts over.
const observationTTL = 30 * 24 * time.Hour

// Store keeps externally-observed outreach responses between runs, so a
// rerun can pick up a confirmation recorded after the first pass.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func observationKey(submissionID int64, channel string) string {
	return fmt.Sprintf("outreach:observation:%d:%s", submissionID, channel)
}

// RecordObservation stores a response observed for one channel. Only
// confirmed and denied are meaningful to record.
func (s *Store) RecordObservation(ctx context.Context, submissionID int64, channel string, status models.OutreachStatus) error {
	if status != models.OutreachConfirmed && status != models.OutreachDenied {
		return fmt.Errorf("observation status must be confirmed or denied, got %q", status)
	}
	key := observationKey(submissionID, channel)
	if err := s.client.Set(ctx, key, string(status), observationTTL).Err(); err != nil {
		return apperrors.NewStateStoreFailedError(err)
	}
	return nil
}

// GetObservation reads the recorded response for one channel. The second
// return is false when nothing was observed.
func (s *Store) GetObservation(ctx context.Context, submissionID int64, channel string) (models.OutreachStatus, bool, error) {
	val, err := s.client.Get(ctx, observationKey(submissionID, channel)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStateStoreFailedError(err)
	}
	return models.OutreachStatus(val), true, nil
}

// ClearObservation removes a recorded response, e.g. after the issue is
// closed.
func (s *Store) ClearObservation(ctx context.Context, submissionID int64, channel string) error {
	if err := s.client.Del(ctx, observationKey(submissionID, channel)).Err(); err != nil {
		return apperrors.NewStateStoreFailedError(err)
	}
	return nil
}
