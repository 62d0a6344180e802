// internal/store/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "merchant-triage/internal/common/errors"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// Indexer pushes triage results into the search cluster so reviewers can
// query past verdicts by merchant name, tier or score.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{client: client, index: index, logger: log}
}

// resultDocument is the flattened shape stored in the index.
type resultDocument struct {
	RunID          string `json:"run_id"`
	SubmissionID   int64  `json:"submission_id"`
	MerchantName   string `json:"merchant_name"`
	FinalScore     int    `json:"final_score"`
	Tier           string `json:"tier"`
	Recommendation string `json:"recommendation"`
	Status         string `json:"status"`
	ProcessedAt    string `json:"processed_at"`
}

// IndexResult writes one result document keyed by run and submission, so
// re-indexing the same run is idempotent.
func (i *Indexer) IndexResult(ctx context.Context, runID string, result *models.TriageResult) error {
	doc := resultDocument{
		RunID:          runID,
		SubmissionID:   result.SubmissionID,
		MerchantName:   result.Title,
		FinalScore:     result.FinalScore,
		Tier:           result.Tier,
		Recommendation: result.Recommendation,
		Status:         result.Status,
		ProcessedAt:    result.ProcessedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewSearchIndexFailedError(err)
	}

	docID := fmt.Sprintf("%s-%d", runID, result.SubmissionID)
	res, err := i.client.Index(
		i.index,
		bytes.NewReader(payload),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(docID),
	)
	if err != nil {
		return apperrors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchIndexFailedError(fmt.Errorf("index returned %s", res.Status()))
	}

	i.logger.Debug("Indexed triage result", map[string]interface{}{
		"docID": docID,
		"index": i.index,
	})
	return nil
}
