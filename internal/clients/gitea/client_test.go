// internal/clients/gitea/client_test.go
package gitea

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"merchant-triage/internal/common/config"
	"merchant-triage/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.GiteaConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Repo:    "teambtcmap/btcmap-data",
		Timeout: 5000,
	}
	client, err := NewClient(cfg, config.RateLimitConfig{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	return client, server
}

func issueJSON(number int, title string, assigned bool) map[string]interface{} {
	issue := map[string]interface{}{
		"number": number,
		"title":  title,
		"body":   "Merchant name: " + title,
		"state":  "open",
	}
	if assigned {
		issue["assignee"] = map[string]interface{}{"id": 9, "login": "reviewer"}
	}
	return issue
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ==========================
// Constructor Tests
// ==========================

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(config.GiteaConfig{BaseURL: "https://gitea.example.com"}, config.RateLimitConfig{}, logger.NewNoOpLogger())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GITEA_TOKEN")
}

// ==========================
// FetchIssues Tests
// ==========================

func TestFetchIssues_SinglePage(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		writeJSON(t, w, []interface{}{
			issueJSON(101, "Add Pizza Palace", false),
			issueJSON(102, "Add Coffee Corner", false),
		})
	}))

	issues, err := client.FetchIssues(context.Background(), FetchOptions{
		Limit:  5,
		Labels: []string{"type/location-submission"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/repos/teambtcmap/btcmap-data/issues", gotPath)
	assert.Equal(t, "token test-token", gotAuth)
	assert.Contains(t, gotQuery, "labels=type%2Flocation-submission")
	assert.Contains(t, gotQuery, "state=open")

	require.Len(t, issues, 2)
	assert.Equal(t, int64(101), issues[0].Number)
	assert.Equal(t, "Add Coffee Corner", issues[1].Title)
}

func TestFetchIssues_PaginatesUntilLimit(t *testing.T) {
	var pages []string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			writeJSON(t, w, []interface{}{issueJSON(1, "first", false), issueJSON(2, "second", false)})
		default:
			writeJSON(t, w, []interface{}{issueJSON(3, "third", false)})
		}
	}))

	issues, err := client.FetchIssues(context.Background(), FetchOptions{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, issues, 2)
	assert.Equal(t, []string{"1"}, pages)
}

func TestFetchIssues_StopsOnShortPage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []interface{}{issueJSON(1, "only one", false)})
	}))

	issues, err := client.FetchIssues(context.Background(), FetchOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestFetchIssues_SkipsAssigned(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []interface{}{
			issueJSON(1, "assigned", true),
			issueJSON(2, "free", false),
		})
	}))

	issues, err := client.FetchIssues(context.Background(), FetchOptions{Limit: 10, SkipAssigned: true})
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, int64(2), issues[0].Number)
}

func TestFetchIssues_SkipsInvalidPayloads(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []interface{}{
			map[string]interface{}{"title": "no number"},
			map[string]interface{}{"number": 3, "title": ""},
			issueJSON(4, "valid", false),
		})
	}))

	issues, err := client.FetchIssues(context.Background(), FetchOptions{Limit: 10})
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, int64(4), issues[0].Number)
}

func TestFetchIssues_ServerErrorIsFatal(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))

	_, err := client.FetchIssues(context.Background(), FetchOptions{Limit: 5})
	assert.Error(t, err)
}

// ==========================
// Comment Tests
// ==========================

func TestPostComment(t *testing.T) {
	var gotBody map[string]string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/repos/teambtcmap/btcmap-data/issues/42/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, map[string]interface{}{"id": 777, "body": gotBody["body"]})
	}))

	commentID, err := client.PostComment(context.Background(), 42, "## Report")
	require.NoError(t, err)

	assert.Equal(t, int64(777), commentID)
	assert.Equal(t, "## Report", gotBody["body"])
}

func TestUpdateComment(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/repos/teambtcmap/btcmap-data/issues/comments/777", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{"id": 777})
	}))

	err := client.UpdateComment(context.Background(), 777, "updated body")
	assert.NoError(t, err)
}

// ==========================
// Label and State Tests
// ==========================

func TestAddLabel_ResolvesNameToID(t *testing.T) {
	var labelPayload map[string][]int64
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/repos/teambtcmap/btcmap-data/labels":
			writeJSON(t, w, []interface{}{
				map[string]interface{}{"id": 10, "name": "verified"},
				map[string]interface{}{"id": 11, "name": "needs-review"},
			})
		case "/api/v1/repos/teambtcmap/btcmap-data/issues/5/labels":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&labelPayload))
			writeJSON(t, w, []interface{}{})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	err := client.AddLabel(context.Background(), 5, "needs-review")
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, labelPayload["labels"])
}

func TestAddLabel_UnknownLabel(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []interface{}{})
	}))

	err := client.AddLabel(context.Background(), 5, "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `label "missing" not found`)
}

func TestCloseIssue(t *testing.T) {
	var gotState map[string]string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/repos/teambtcmap/btcmap-data/issues/6", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotState))
		writeJSON(t, w, map[string]interface{}{"number": 6, "title": "closed", "state": "closed"})
	}))

	err := client.CloseIssue(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "closed", gotState["state"])
}
