// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"merchant-triage/internal/checks"
	"merchant-triage/internal/clients/gitea"
	"merchant-triage/internal/common/config"
	apperrors "merchant-triage/internal/common/errors"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/common/metrics"
	"merchant-triage/internal/common/observability"
	"merchant-triage/internal/extract"
	"merchant-triage/internal/models"
	"merchant-triage/internal/outreach"
	"merchant-triage/internal/report"
	"merchant-triage/internal/scoring"
)

// IssueSource is the issue-tracker surface the pipeline drives.
type IssueSource interface {
	FetchIssues(ctx context.Context, opts gitea.FetchOptions) ([]*models.Issue, error)
	PostComment(ctx context.Context, issueNumber int64, body string) (int64, error)
	UpdateComment(ctx context.Context, commentID int64, body string) error
}

// ResultSink receives completed triage results (archive, search index).
// Sink failures are logged, never fatal to the batch.
type ResultSink interface {
	Persist(ctx context.Context, runID string, result *models.TriageResult) error
}

// SinkFunc adapts a function to the ResultSink interface.
type SinkFunc func(ctx context.Context, runID string, result *models.TriageResult) error

func (f SinkFunc) Persist(ctx context.Context, runID string, result *models.TriageResult) error {
	return f(ctx, runID, result)
}

// Pipeline sequences extraction, checks, scoring and outreach per
// submission, strictly sequentially across the batch.
type Pipeline struct {
	cfg         *config.Config
	issues      IssueSource
	extractor   *extract.Extractor
	battery     *checks.Battery
	coordinator *outreach.Coordinator
	scorer      *scoring.Scorer
	obs         *observability.Observability
	sinks       []ResultSink
	logger      logger.Logger
	now         func() time.Time
}

func New(
	cfg *config.Config,
	issues IssueSource,
	extractor *extract.Extractor,
	battery *checks.Battery,
	coordinator *outreach.Coordinator,
	scorer *scoring.Scorer,
	obs *observability.Observability,
	sinks []ResultSink,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		issues:      issues,
		extractor:   extractor,
		battery:     battery,
		coordinator: coordinator,
		scorer:      scorer,
		obs:         obs,
		sinks:       sinks,
		logger:      log,
		now:         time.Now,
	}
}

// Run fetches one batch and triages it. A cancelled context stops the
// loop cleanly; results computed so far are kept and summarized.
func (p *Pipeline) Run(ctx context.Context, batchSize int) (*models.BatchSummary, []*models.TriageResult, error) {
	if batchSize <= 0 {
		batchSize = p.cfg.Batch.DefaultSize
	}
	runID := uuid.NewString()
	startedAt := p.now()

	summary := &models.BatchSummary{
		RunID:      runID,
		TierCounts: map[string]int{},
		StartedAt:  startedAt,
	}

	issues, err := p.issues.FetchIssues(ctx, gitea.FetchOptions{
		Limit:        batchSize,
		Labels:       p.cfg.Batch.IssueLabels,
		State:        p.cfg.Batch.IssueState,
		SkipAssigned: p.cfg.Batch.SkipAssigned,
	})
	if err != nil {
		return summary, nil, err
	}

	p.logger.Info("Starting triage batch", map[string]interface{}{
		"runID":  runID,
		"issues": len(issues),
	})

	var results []*models.TriageResult
	requestDelay := p.cfg.RateLimiting.GiteaRequestDelay()

	for i, issue := range issues {
		if ctx.Err() != nil {
			p.logger.Warn("Batch interrupted, keeping completed results", map[string]interface{}{
				"runID":     runID,
				"completed": len(results),
				"remaining": len(issues) - i,
			})
			break
		}

		started := p.now()
		result, err := p.processIssue(ctx, issue)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			procErr := apperrors.NewSubmissionProcessingError(issue.Number, err)
			p.logger.Error("Submission processing failed, continuing batch", map[string]interface{}{
				"runID":       runID,
				"issueNumber": issue.Number,
				"error":       err.Error(),
			})
			metrics.SubmissionsFailed.WithLabelValues(string(procErr.Code)).Inc()
			result = &models.TriageResult{
				SubmissionID: issue.Number,
				Title:        issue.Title,
				Status:       "error",
				Error:        err.Error(),
				ProcessedAt:  p.now(),
			}
			summary.Errors++
		} else {
			summary.TierCounts[result.Tier]++
			metrics.SubmissionsTriaged.WithLabelValues(result.Tier).Inc()
		}

		if p.obs != nil {
			p.obs.RecordSubmission(ctx, result.Status, result.Tier)
			p.obs.RecordSubmissionDuration(ctx, p.now().Sub(started), result.Status)
		}

		results = append(results, result)
		summary.Processed++
		p.persist(ctx, runID, result)

		if requestDelay > 0 && i < len(issues)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(requestDelay):
			}
		}
	}

	summary.FinishedAt = p.now()
	if p.obs != nil {
		p.obs.RecordBatchDuration(ctx, summary.FinishedAt.Sub(startedAt))
	}

	p.logger.Info("Triage batch finished", map[string]interface{}{
		"runID":      runID,
		"processed":  summary.Processed,
		"errors":     summary.Errors,
		"tierCounts": summary.TierCounts,
	})

	return summary, results, nil
}

// processIssue runs one submission end to end. A panic anywhere below
// this boundary is converted into an error so a single bad submission
// can never abort the batch.
func (p *Pipeline) processIssue(ctx context.Context, issue *models.Issue) (result *models.TriageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic while processing submission %d: %v", issue.Number, r)
		}
	}()

	result = &models.TriageResult{
		SubmissionID: issue.Number,
		Title:        issue.Title,
		Status:       "completed",
	}

	record := p.extractor.ExtractRecord(issue)

	phase1, err := p.battery.Run(ctx, issue.Number, record)
	if err != nil {
		return nil, err
	}
	phase1.Score = p.scorer.Phase1Score(phase1)
	result.Phase1 = phase1

	for name, outcome := range phase1.Checks {
		metrics.CheckScores.WithLabelValues(name).Observe(float64(outcome.Score))
	}

	if p.cfg.Output.PostPhase1Immediately {
		body := report.RenderPhase1(phase1, p.now())
		commentID, err := p.issues.PostComment(ctx, issue.Number, body)
		if err != nil {
			p.logger.Warn("Phase 1 report post failed", map[string]interface{}{
				"issueNumber": issue.Number,
				"error":       err.Error(),
			})
		} else {
			result.Comments = append(result.Comments, models.PostedComment{Kind: "phase1", CommentID: commentID})
			metrics.CommentsPosted.WithLabelValues("phase1").Inc()
		}
	}

	// Phase 2 only runs when the automated evidence is insufficient.
	if phase1.Score >= p.cfg.Verification.Phase1Threshold {
		p.logger.Info("Phase 1 score meets threshold, skipping outreach", map[string]interface{}{
			"issueNumber": issue.Number,
			"score":       phase1.Score,
			"threshold":   p.cfg.Verification.Phase1Threshold,
		})
		result.FinalScore = phase1.Score
	} else {
		result.Phase2 = p.coordinator.Run(ctx, issue.Number, record)
		result.FinalScore = p.scorer.FinalScore(phase1.Score, result.Phase2)
	}

	result.Recommendation = p.scorer.Recommendation(result.FinalScore)
	result.Tier = p.scorer.Tier(result.FinalScore)
	result.ProcessedAt = p.now()

	p.postFinalReport(ctx, result)

	return result, nil
}

// postFinalReport posts the closing report, or updates the Phase 1
// comment in place when configured to avoid double comments.
func (p *Pipeline) postFinalReport(ctx context.Context, result *models.TriageResult) {
	body := report.RenderFinal(result, p.now())

	if p.cfg.Output.UpdatePhase1Comment && len(result.Comments) > 0 {
		commentID := result.Comments[0].CommentID
		if err := p.issues.UpdateComment(ctx, commentID, body); err != nil {
			p.logger.Warn("Final report update failed", map[string]interface{}{
				"submissionID": result.SubmissionID,
				"commentID":    commentID,
				"error":        err.Error(),
			})
			return
		}
		result.Comments = append(result.Comments, models.PostedComment{Kind: "final", CommentID: commentID})
		metrics.CommentsPosted.WithLabelValues("final").Inc()
		return
	}

	commentID, err := p.issues.PostComment(ctx, result.SubmissionID, body)
	if err != nil {
		p.logger.Warn("Final report post failed", map[string]interface{}{
			"submissionID": result.SubmissionID,
			"error":        err.Error(),
		})
		return
	}
	result.Comments = append(result.Comments, models.PostedComment{Kind: "final", CommentID: commentID})
	metrics.CommentsPosted.WithLabelValues("final").Inc()
}

func (p *Pipeline) persist(ctx context.Context, runID string, result *models.TriageResult) {
	for _, sink := range p.sinks {
		if err := sink.Persist(ctx, runID, result); err != nil {
			p.logger.Warn("Result sink failed", map[string]interface{}{
				"runID":        runID,
				"submissionID": result.SubmissionID,
				"error":        err.Error(),
			})
		}
	}
}
