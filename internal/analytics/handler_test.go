package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/session"
)

const payload = `{
	"id": 5, "title": "Launch", "status": "published",
	"questions": [
		{"id": 1, "question_text": "Score", "type": "rating", "display_order": 1},
		{"id": 2, "question_text": "Pick", "type": "radio", "display_order": 2,
		 "options": [{"id": 10, "option_text": "Yes"}, {"id": 11, "option_text": "No"}]}
	],
	"responses": [
		{"id": 1, "submitted_at": "2026-03-01T10:00:00Z", "answers": {"1": "4", "2": "Yes"}},
		{"id": 2, "submitted_at": "2026-03-02T10:00:00Z", "answers": {"1": 5, "2": "Yes"}},
		{"id": 3, "submittedAt": "2026-02-01T10:00:00Z", "answers": "garbage"}
	]
}`

type memStore struct {
	objects map[string][]byte
	fail    error
}

func (m *memStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	if m.fail != nil {
		return m.fail
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memStore) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://reports.example/" + key + "?sig=1", nil
}

func (m *memStore) PresignExpire() time.Duration { return 15 * time.Minute }

func newAnalyticsRouter(t *testing.T, exporter *Exporter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/surveys/5":
			_, _ = w.Write([]byte(payload))
		case "/analytics/surveys/6":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	h := NewHandler(persistence.NewClient(persistence.Config{BaseURL: srv.URL}, nil), exporter, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if tok := c.GetHeader("X-Test-Token"); tok != "" {
			ctx := session.WithSession(c.Request.Context(), session.New(tok, models.User{ID: tok}))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.GET("/surveys/:id/analytics", h.Get)
	r.POST("/surveys/:id/analytics/export", h.Export)
	return r
}

func serve(t *testing.T, r *gin.Engine, token, method, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(nil))
	if token != "" {
		req.Header.Set("X-Test-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestGetReport(t *testing.T) {
	r := newAnalyticsRouter(t, nil)

	code, body := serve(t, r, "tok", http.MethodGet, "/surveys/5/analytics")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "5", data["survey_id"])
	assert.Equal(t, float64(3), data["total_responses"])
	assert.Equal(t, "Active", data["status"])
	assert.Equal(t, "2026-03-02T10:00:00Z", data["last_submitted_at"])

	questions := data["questions"].([]any)
	require.Len(t, questions, 2)
	score := questions[0].(map[string]any)
	assert.Equal(t, "4.5", score["average"])
	pick := questions[1].(map[string]any)
	opts := pick["options"].([]any)
	assert.Equal(t, "100.0", opts[0].(map[string]any)["percentage"])
	assert.Equal(t, "0", opts[1].(map[string]any)["percentage"])
}

func TestGetReportErrors(t *testing.T) {
	r := newAnalyticsRouter(t, nil)
	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"no session", "", "/surveys/5/analytics", http.StatusUnauthorized},
		{"forbidden upstream", "tok", "/surveys/6/analytics", http.StatusUnauthorized},
		{"unknown survey", "tok", "/surveys/7/analytics", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := serve(t, r, tt.token, http.MethodGet, tt.path)
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestExportRoute(t *testing.T) {
	code, _ := serve(t, newAnalyticsRouter(t, nil), "tok", http.MethodPost, "/surveys/5/analytics/export")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	store := &memStore{objects: map[string][]byte{}}
	code, body := serve(t, newAnalyticsRouter(t, NewExporter(store, nil)), "tok", http.MethodPost, "/surveys/5/analytics/export")
	require.Equal(t, http.StatusCreated, code)
	key := body["data"].(map[string]any)["key"].(string)
	assert.True(t, strings.HasPrefix(key, "reports/5/"))
	assert.Contains(t, store.objects, key)

	store.fail = errors.New("bucket gone")
	code, _ = serve(t, newAnalyticsRouter(t, NewExporter(store, nil)), "tok", http.MethodPost, "/surveys/5/analytics/export")
	assert.Equal(t, http.StatusBadGateway, code)
}
