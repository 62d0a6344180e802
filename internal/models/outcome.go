// internal/models/outcome.go
package models

import "time"

// CheckStatus is the qualitative outcome of a single verification check.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckPartial CheckStatus = "partial"
	CheckFail    CheckStatus = "fail"
	CheckUnclear CheckStatus = "unclear"
	CheckError   CheckStatus = "error"
)

// Check names, stable keys into Phase1Result.Checks and the weights table.
const (
	CheckNameOSM             = "osm"
	CheckNameWebsite         = "website"
	CheckNameSocial          = "social"
	CheckNameCrossReference  = "cross_reference"
	CheckNameDataConsistency = "data_consistency"
)

// CheckOutcome holds one check's score and its supporting evidence.
// Score is always within [0, MaxScore].
type CheckOutcome struct {
	Check    string            `json:"check"`
	Status   CheckStatus       `json:"status"`
	Score    int               `json:"score"`
	MaxScore int               `json:"max_score"`
	Details  map[string]string `json:"details,omitempty"`
	Handles  []string          `json:"handles,omitempty"`
}

// Phase1Result aggregates the automated check battery for one submission.
type Phase1Result struct {
	SubmissionID int64                   `json:"submission_id"`
	MerchantName string                  `json:"merchant_name"`
	Checks       map[string]CheckOutcome `json:"checks"`
	Score        int                     `json:"score"`
	Record       *MerchantRecord         `json:"record,omitempty"`
}

// OutreachStatus is the lifecycle state of one outreach channel.
type OutreachStatus string

const (
	OutreachSkipped   OutreachStatus = "skipped"
	OutreachPending   OutreachStatus = "pending"
	OutreachDrafted   OutreachStatus = "drafted"
	OutreachSent      OutreachStatus = "sent"
	OutreachConfirmed OutreachStatus = "confirmed"
	OutreachDenied    OutreachStatus = "denied"
)

// Outreach channel names.
const (
	ChannelEmail    = "email"
	ChannelSocialDM = "social_dm"
)

// OutreachOutcome holds one channel's state and earned bonus. Score is
// non-zero only when Status is confirmed.
type OutreachOutcome struct {
	Channel string            `json:"channel"`
	Status  OutreachStatus    `json:"status"`
	Score   int               `json:"score"`
	Details map[string]string `json:"details,omitempty"`
	Draft   string            `json:"draft,omitempty"`
}

// Phase2Result aggregates the outreach channels for one submission.
type Phase2Result struct {
	SubmissionID int64           `json:"submission_id"`
	Email        OutreachOutcome `json:"email"`
	SocialDM     OutreachOutcome `json:"social_dm"`
	TotalBonus   int             `json:"total_bonus"`
}

// Confidence tiers derived from the configured thresholds.
const (
	TierHigh    = "high"
	TierMedium  = "medium"
	TierLow     = "low"
	TierVeryLow = "very_low"
)

// PostedComment records a report comment placed on the issue tracker.
type PostedComment struct {
	Kind      string `json:"kind"` // "phase1" or "final"
	CommentID int64  `json:"comment_id"`
}

// TriageResult is the full per-submission output of one pipeline run.
type TriageResult struct {
	SubmissionID   int64           `json:"submission_id"`
	Title          string          `json:"title"`
	Phase1         *Phase1Result   `json:"phase1,omitempty"`
	Phase2         *Phase2Result   `json:"phase2,omitempty"`
	FinalScore     int             `json:"final_score"`
	Recommendation string          `json:"recommendation"`
	Tier           string          `json:"tier"`
	Comments       []PostedComment `json:"comments,omitempty"`
	Status         string          `json:"status"` // "completed" or "error"
	Error          string          `json:"error,omitempty"`
	ProcessedAt    time.Time       `json:"processed_at"`
}

// BatchSummary is the per-run roll-up printed and published at the end.
type BatchSummary struct {
	RunID      string         `json:"run_id"`
	Processed  int            `json:"processed"`
	Errors     int            `json:"errors"`
	TierCounts map[string]int `json:"tier_counts"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}
