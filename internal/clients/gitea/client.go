// internal/clients/gitea/client.go
package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"merchant-triage/internal/common/config"
	apperrors "merchant-triage/internal/common/errors"
	httpclient "merchant-triage/internal/common/http"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/common/validation"
	"merchant-triage/internal/models"
)

// perPageMax is the page size cap enforced by the tracker API.
const perPageMax = 50

// FetchOptions filter an issue listing.
type FetchOptions struct {
	Limit        int
	Labels       []string
	State        string
	SkipAssigned bool
}

// Client talks to the Gitea issue tracker API for one repository.
type Client struct {
	cfg          config.GiteaConfig
	http         *httpclient.Client
	logger       logger.Logger
	requestDelay time.Duration
}

func NewClient(cfg config.GiteaConfig, rate config.RateLimitConfig, log logger.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, apperrors.NewConfigurationError("gitea.token is required, set GITEA_TOKEN")
	}
	return &Client{
		cfg:          cfg,
		http:         httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:       log,
		requestDelay: rate.GiteaRequestDelay(),
	}, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "token " + c.cfg.Token,
		"Accept":        "application/json",
	}
}

func (c *Client) apiURL(format string, args ...interface{}) string {
	return fmt.Sprintf("%s/api/v1/repos/%s%s", c.cfg.BaseURL, c.cfg.Repo, fmt.Sprintf(format, args...))
}

// FetchIssues lists issues page by page until opts.Limit submissions pass
// the filters. Payloads failing the contract are skipped, not fatal.
func (c *Client) FetchIssues(ctx context.Context, opts FetchOptions) ([]*models.Issue, error) {
	state := opts.State
	if state == "" {
		state = "open"
	}
	perPage := opts.Limit
	if perPage > perPageMax {
		perPage = perPageMax
	}

	var issues []*models.Issue
	for page := 1; len(issues) < opts.Limit; page++ {
		params := url.Values{
			"state": {state},
			"page":  {fmt.Sprintf("%d", page)},
			"limit": {fmt.Sprintf("%d", perPage)},
		}
		if len(opts.Labels) > 0 {
			params.Set("labels", strings.Join(opts.Labels, ","))
		}

		var raw []json.RawMessage
		u := c.apiURL("/issues") + "?" + params.Encode()
		if err := c.http.GetJSON(ctx, u, c.headers(), &raw); err != nil {
			return nil, apperrors.NewIssueFetchFailedError(err)
		}

		for _, payload := range raw {
			issue, err := c.decodeIssue(payload)
			if err != nil {
				c.logger.Warn("Skipping issue with invalid payload", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if opts.SkipAssigned && issue.Assignee != nil {
				continue
			}
			issues = append(issues, issue)
			if len(issues) >= opts.Limit {
				break
			}
		}

		if len(raw) < perPage {
			break
		}
		if c.requestDelay > 0 && len(issues) < opts.Limit {
			select {
			case <-ctx.Done():
				return issues, ctx.Err()
			case <-time.After(c.requestDelay):
			}
		}
	}

	c.logger.Info("Fetched issues", map[string]interface{}{
		"count": len(issues),
		"state": state,
	})

	return issues, nil
}

func (c *Client) decodeIssue(payload json.RawMessage) (*models.Issue, error) {
	violations, err := validation.ValidateIssuePayload(payload)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, apperrors.NewIssuePayloadInvalidError(strings.Join(violations, "; "))
	}

	var issue models.Issue
	if err := json.Unmarshal(payload, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// PostComment adds a markdown comment to an issue and returns its ID.
func (c *Client) PostComment(ctx context.Context, issueNumber int64, body string) (int64, error) {
	var resp models.IssueComment
	u := c.apiURL("/issues/%d/comments", issueNumber)
	if err := c.http.PostJSON(ctx, u, c.headers(), map[string]string{"body": body}, &resp); err != nil {
		return 0, apperrors.NewCommentPostFailedError(issueNumber, err)
	}
	return resp.ID, nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, commentID int64, body string) error {
	u := c.apiURL("/issues/comments/%d", commentID)
	if err := c.http.PatchJSON(ctx, u, c.headers(), map[string]string{"body": body}, nil); err != nil {
		return apperrors.NewCommentUpdateFailedError(commentID, err)
	}
	return nil
}

// AddLabel attaches a label by name. The labels endpoint wants IDs, so
// the repo label list is resolved first.
func (c *Client) AddLabel(ctx context.Context, issueNumber int64, label string) error {
	labelID, err := c.lookupLabelID(ctx, label)
	if err != nil {
		return err
	}

	u := c.apiURL("/issues/%d/labels", issueNumber)
	payload := map[string][]int64{"labels": {labelID}}
	if err := c.http.PostJSON(ctx, u, c.headers(), payload, nil); err != nil {
		return apperrors.NewCommentPostFailedError(issueNumber, err)
	}
	return nil
}

func (c *Client) lookupLabelID(ctx context.Context, name string) (int64, error) {
	var labels []models.IssueLabel
	if err := c.http.GetJSON(ctx, c.apiURL("/labels"), c.headers(), &labels); err != nil {
		return 0, apperrors.NewIssueFetchFailedError(err)
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, nil
		}
	}
	return 0, fmt.Errorf("label %q not found in repo %s", name, c.cfg.Repo)
}

// CloseIssue transitions an issue to the closed state.
func (c *Client) CloseIssue(ctx context.Context, issueNumber int64) error {
	u := c.apiURL("/issues/%d", issueNumber)
	if err := c.http.PatchJSON(ctx, u, c.headers(), map[string]string{"state": "closed"}, nil); err != nil {
		return apperrors.NewCommentUpdateFailedError(issueNumber, err)
	}
	return nil
}
