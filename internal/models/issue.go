// internal/models/issue.go
package models

import "time"

// IssueUser is the subset of tracker account fields the pipeline reads.
type IssueUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// IssueLabel is a tracker label attached to an issue.
type IssueLabel struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue is one merchant submission as fetched from the issue tracker.
type Issue struct {
	Number    int64        `json:"number"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	State     string       `json:"state"`
	Labels    []IssueLabel `json:"labels"`
	Assignee  *IssueUser   `json:"assignee,omitempty"`
	User      *IssueUser   `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// HasLabel reports whether the issue carries the named label.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// IssueComment is a comment on a tracker issue.
type IssueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}
