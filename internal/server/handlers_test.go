package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
)

func setupTestServer(t *testing.T) *Server {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	s := New(tracker.New(nil), setupTestJWTService(t, 24*time.Hour), 5, "8080")
	t.Cleanup(s.limiter.Stop)
	return s
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleClickEventRecordsLink(t *testing.T) {
	s := setupTestServer(t)

	rec := postJSON(t, s.Handler(), "/events/click", `{
		"source_url": "/blog/ai-writing-guide",
		"target_url": "/ai-tools/draftmate",
		"anchor_text": "DraftMate",
		"context": "contextual",
		"metrics": {"time_on_page_seconds": 42, "scroll_depth": 0.8, "device_type": "mobile"}
	}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	record, ok := s.store.Get(types.LinkKey{SourceURL: "/blog/ai-writing-guide", TargetURL: "/ai-tools/draftmate"})
	require.True(t, ok)
	assert.Equal(t, int64(1), record.ClickCount)
	assert.Equal(t, 1.0, record.CTR)
	assert.Equal(t, types.PageBlog, record.SourcePageType)
	assert.Equal(t, types.PageTool, record.TargetPageType)
}

func TestHandleClickEventSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"missing target", `{"source_url": "/blog/a", "context": "contextual"}`},
		{"bad context", `{"source_url": "/a", "target_url": "/b", "context": "sidebar"}`},
		{"unknown field", `{"source_url": "/a", "target_url": "/b", "context": "footer", "extra": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)
			rec := postJSON(t, s.Handler(), "/events/click", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, s.store.Len())
		})
	}
}

func TestHandlePageAudit(t *testing.T) {
	s := setupTestServer(t)

	page := `<html><body>
		<nav><a href="/">Home</a></nav>
		<article>
			<a href="/ai-tools/draftmate">DraftMate</a>
			<a href="https://elsewhere.example.com/out">external</a>
		</article>
		<footer><a href="/about">About</a></footer>
	</body></html>`

	body, err := json.Marshal(types.PageAuditRequest{URL: "https://aitools.example.com/blog/post", HTML: page})
	require.NoError(t, err)

	rec := postJSON(t, s.Handler(), "/events/page", string(body))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["internal_links"])
	assert.Equal(t, 3, s.store.Len())
}

func TestHandlePageAuditRejectsEmpty(t *testing.T) {
	s := setupTestServer(t)

	rec := postJSON(t, s.Handler(), "/events/page", `{"url": "", "html": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEngagement(t *testing.T) {
	s := setupTestServer(t)
	s.store.RecordClick("/blog/a", "/ai-tools/b", "b", types.ContextContextual, types.UserMetrics{})

	rec := postJSON(t, s.Handler(), "/links/engagement", `{
		"source_url": "/blog/a",
		"target_url": "/ai-tools/b",
		"conversion_rate": 0.12,
		"bounce_rate": 0.4,
		"time_on_page_seconds": 95
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	record, ok := s.store.Get(types.LinkKey{SourceURL: "/blog/a", TargetURL: "/ai-tools/b"})
	require.True(t, ok)
	assert.Equal(t, 0.12, record.ConversionRate)
}

func TestHandleEngagementUnknownLink(t *testing.T) {
	s := setupTestServer(t)

	rec := postJSON(t, s.Handler(), "/links/engagement", `{
		"source_url": "/blog/a",
		"target_url": "/ai-tools/missing",
		"conversion_rate": 0.1
	}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRecommendations(t *testing.T) {
	s := setupTestServer(t)
	s.store.RecordClick("/blog/other", "/ai-tools/ledger-sync", "LedgerSync", types.ContextContextual, types.UserMetrics{})

	rec := postJSON(t, s.Handler(), "/links/recommendations", `{
		"source_url": "/blog/bookkeeping-automation",
		"content": "Automate your ledger sync workflow with modern bookkeeping tools",
		"max_links": 3
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SourceURL       string                 `json:"source_url"`
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/blog/bookkeeping-automation", resp.SourceURL)
}

func TestHandleRecommendationsCapsMaxLinks(t *testing.T) {
	s := setupTestServer(t)

	rec := postJSON(t, s.Handler(), "/links/recommendations", `{
		"source_url": "/blog/a",
		"content": "anything",
		"max_links": 51
	}`)

	// 51 exceeds the validator's max and is rejected outright.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnchors(t *testing.T) {
	s := setupTestServer(t)
	s.store.RecordClick("/blog/a", "/ai-tools/draftmate", "DraftMate", types.ContextContextual, types.UserMetrics{})
	s.store.RecordClick("/blog/b", "/ai-tools/draftmate", "DraftMate", types.ContextContextual, types.UserMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/links/anchors?target=/ai-tools/draftmate&candidate=DraftMate", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TargetURL string           `json:"target_url"`
		Counts    map[string]int64 `json:"counts"`
		Suggested []string         `json:"suggested"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Counts["DraftMate"])
	assert.NotEmpty(t, resp.Suggested)
	assert.NotContains(t, resp.Suggested, "DraftMate")
}

func TestHandleAnchorsMissingTarget(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/links/anchors", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSnapshotRequiresAuth(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSnapshotWithToken(t *testing.T) {
	s := setupTestServer(t)
	s.store.RecordClick("/blog/a", "/ai-tools/b", "b", types.ContextContextual, types.UserMetrics{})

	token, err := s.jwtService.GenerateToken("dashboard")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Links   []types.LinkRecord `json:"links"`
		Summary struct {
			TotalLinks int `json:"total_links"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.TotalLinks)
	require.Len(t, resp.Links, 1)
}

func TestMethodNotAllowed(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/events/click", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/events/click", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
