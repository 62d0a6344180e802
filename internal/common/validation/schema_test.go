// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Issue Payload Tests
// ==========================

func TestValidateIssuePayload_Valid(t *testing.T) {
	payload := []byte(`{
		"number": 12081,
		"title": "Add Pizza Palace",
		"body": "Merchant name: Pizza Palace",
		"state": "open",
		"labels": [{"id": 1, "name": "type/location-submission"}]
	}`)

	violations, err := ValidateIssuePayload(payload)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateIssuePayload_Violations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing number", `{"title": "no number"}`},
		{"missing title", `{"number": 5}`},
		{"empty title", `{"number": 5, "title": ""}`},
		{"number below one", `{"number": 0, "title": "x"}`},
		{"number not an integer", `{"number": "5", "title": "x"}`},
		{"unknown state", `{"number": 5, "title": "x", "state": "draft"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := ValidateIssuePayload([]byte(tt.payload))
			require.NoError(t, err)
			assert.NotEmpty(t, violations)
		})
	}
}

func TestValidateIssuePayload_MalformedJSON(t *testing.T) {
	_, err := ValidateIssuePayload([]byte(`{not json`))
	assert.Error(t, err)
}

func TestValidateIssuePayload_ExtraFieldsAllowed(t *testing.T) {
	payload := []byte(`{"number": 1, "title": "x", "assignee": {"id": 2, "login": "reviewer"}}`)

	violations, err := ValidateIssuePayload(payload)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

// ==========================
// Field Format Tests
// ==========================

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("owner@pizzapalace.example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.domain.org"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1-555-0123"))
	assert.True(t, ValidatePhone("(212) 555 0199"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("call me"))
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://pizzapalace.example.com"))
	assert.True(t, ValidateURL("http://example.com/path?x=1"))
	assert.False(t, ValidateURL("ftp://example.com"))
	assert.False(t, ValidateURL("example.com"))
}
