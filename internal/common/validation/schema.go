// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

// issueSchema is the contract for issue payloads coming off the tracker
// API. Extra fields are allowed; the pipeline only relies on these.
const issueSchema = `{
	"type": "object",
	"required": ["number", "title"],
	"properties": {
		"number": {"type": "integer", "minimum": 1},
		"title": {"type": "string", "minLength": 1},
		"body": {"type": "string"},
		"state": {"type": "string", "enum": ["open", "closed"]},
		"labels": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "integer"},
					"name": {"type": "string"}
				}
			}
		}
	}
}`

var issueSchemaLoader = gojsonschema.NewStringLoader(issueSchema)

// ValidateIssuePayload checks a raw tracker issue document against the
// contract. Returns the list of violations, empty when valid.
func ValidateIssuePayload(raw []byte) ([]string, error) {
	result, err := gojsonschema.Validate(issueSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return violations, nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,}$`)
	urlPattern   = regexp.MustCompile(`^(https?)://[^\s/$.?#].[^\s]*$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
