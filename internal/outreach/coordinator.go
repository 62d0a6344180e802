// internal/outreach/coordinator.go
package outreach

import (
	"context"
	"fmt"

	"merchant-triage/internal/common/config"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// EmailSender delivers a verification email. Implementations are
// best-effort; a send failure leaves the channel drafted.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ObservationStore reports externally-observed responses to earlier
// outreach (inbox replies, DM answers) recorded between runs.
type ObservationStore interface {
	GetObservation(ctx context.Context, submissionID int64, channel string) (models.OutreachStatus, bool, error)
}

// Coordinator drives the Phase 2 channels. Channels start every run at
// pending with score 0; points are only awarded when a rerun observes a
// confirmation recorded in the observation store.
type Coordinator struct {
	cfg          config.OutreachConfig
	weights      config.Phase2Weights
	emailSender  EmailSender
	observations ObservationStore
	logger       logger.Logger
}

func NewCoordinator(cfg config.OutreachConfig, weights config.Phase2Weights, sender EmailSender, observations ObservationStore, log logger.Logger) *Coordinator {
	return &Coordinator{
		cfg:          cfg,
		weights:      weights,
		emailSender:  sender,
		observations: observations,
		logger:       log,
	}
}

// Run executes both channels for one submission.
func (c *Coordinator) Run(ctx context.Context, submissionID int64, record *models.MerchantRecord) *models.Phase2Result {
	result := &models.Phase2Result{
		SubmissionID: submissionID,
		Email:        c.runEmail(ctx, submissionID, record),
		SocialDM:     c.runSocialDM(ctx, submissionID, record),
	}
	result.TotalBonus = result.Email.Score + result.SocialDM.Score

	c.logger.Info("Outreach completed", map[string]interface{}{
		"submissionID": submissionID,
		"email":        result.Email.Status,
		"socialDM":     result.SocialDM.Status,
		"totalBonus":   result.TotalBonus,
	})

	return result
}

func (c *Coordinator) runEmail(ctx context.Context, submissionID int64, record *models.MerchantRecord) models.OutreachOutcome {
	outcome := models.OutreachOutcome{
		Channel: models.ChannelEmail,
		Status:  models.OutreachPending,
		Details: map[string]string{},
	}

	if record.ContactEmail == "" && record.Website == "" {
		outcome.Status = models.OutreachSkipped
		outcome.Details["reason"] = "No contact email available"
		return outcome
	}

	contact := record.ContactEmail
	if contact == "" {
		// A website implies a derivable contact, but deriving one is a
		// manual step; the draft is still prepared.
		outcome.Details["reason"] = "Contact must be derived from website"
	} else {
		outcome.Details["contact"] = contact
	}

	subject := RenderSubject(c.cfg.Email.SubjectTemplate, record.Name)
	body := RenderEmailBody(record.Name, submissionID)
	outcome.Details["email_subject"] = subject
	outcome.Draft = body
	outcome.Details["expected_response_time"] = fmt.Sprintf("%d hours", c.cfg.WaitHours)

	if observed, ok := c.observe(ctx, submissionID, models.ChannelEmail); ok {
		outcome.Status = observed
		if observed == models.OutreachConfirmed {
			outcome.Score = c.weights.EmailConfirmation
		}
		return outcome
	}

	if c.cfg.AutoSend && c.emailSender != nil && contact != "" {
		if err := c.emailSender.SendEmail(ctx, contact, subject, body); err != nil {
			c.logger.Warn("Email send failed, leaving draft", map[string]interface{}{
				"submissionID": submissionID,
				"error":        err.Error(),
			})
			outcome.Status = models.OutreachDrafted
			outcome.Details["error"] = err.Error()
			return outcome
		}
		outcome.Status = models.OutreachSent
		outcome.Details["note"] = "Email sent, awaiting reply"
	} else {
		outcome.Status = models.OutreachDrafted
		outcome.Details["note"] = "Email drafted for review before sending"
	}

	return outcome
}

func (c *Coordinator) runSocialDM(ctx context.Context, submissionID int64, record *models.MerchantRecord) models.OutreachOutcome {
	outcome := models.OutreachOutcome{
		Channel: models.ChannelSocialDM,
		Status:  models.OutreachPending,
		Details: map[string]string{},
	}

	outcome.Details["twitter_dm"] = RenderDM(c.cfg.Social.TwitterDMTemplate, record.Name)
	outcome.Details["instagram_dm"] = RenderDM(c.cfg.Social.InstagramDMTemplate, record.Name)
	outcome.Details["suggested_handles"] = SuggestedHandle(record.Name)

	if observed, ok := c.observe(ctx, submissionID, models.ChannelSocialDM); ok {
		outcome.Status = observed
		if observed == models.OutreachConfirmed {
			outcome.Score = c.weights.SocialDMConfirmation
		}
		return outcome
	}

	// DMs have no automated delivery path; auto-send only marks intent.
	outcome.Status = models.OutreachDrafted
	if c.cfg.AutoSend {
		outcome.Details["action"] = "drafted"
	} else {
		outcome.Details["action"] = "drafted_for_review"
	}

	return outcome
}

// observe reads an externally-recorded response for the channel. Only
// terminal states override the state machine.
func (c *Coordinator) observe(ctx context.Context, submissionID int64, channel string) (models.OutreachStatus, bool) {
	if c.observations == nil {
		return "", false
	}
	status, ok, err := c.observations.GetObservation(ctx, submissionID, channel)
	if err != nil {
		c.logger.Warn("Observation lookup failed", map[string]interface{}{
			"submissionID": submissionID,
			"channel":      channel,
			"error":        err.Error(),
		})
		return "", false
	}
	if !ok {
		return "", false
	}
	if status != models.OutreachConfirmed && status != models.OutreachDenied {
		return "", false
	}
	return status, true
}
