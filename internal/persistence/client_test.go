package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/wire"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/"}, nil)
}

func TestGetSurvey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/surveys/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id": 42, "title": "T", "questions": [{"id": 7, "question_text": "Q", "type": "text", "display_order": 1}]}`)
	})

	s, err := c.WithToken("tok").GetSurvey(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, wire.ID("42"), s.ID)
	require.Len(t, s.Questions, 1)
	assert.Equal(t, "Q", s.Questions[0].QuestionText)
}

func TestWithTokenDoesNotMutateParent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})
	_ = c.WithToken("tok")
	list, err := c.ListUserSurveys(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, list)
}

func TestCreateSurveySendsWireShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		qs := body["questions"].([]any)
		q := qs[0].(map[string]any)
		assert.Nil(t, q["id"])
		assert.Equal(t, "Q", q["question_text"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "s1", "title": "T"}`)
	})

	draft := models.Survey{Title: "T", Questions: []models.Question{{ID: "temp-1", Text: "Q", Type: models.QuestionText, DisplayOrder: 1, Options: []models.Option{}}}}
	s, err := c.CreateSurvey(context.Background(), wire.FromDraft(draft))
	require.NoError(t, err)
	assert.Equal(t, wire.ID("s1"), s.ID)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) }},
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) }},
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) }},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
			assert.Equal(t, "boom", apiErr.Body)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "boom")
			})
			err := c.DeleteQuestion(context.Background(), "9")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSubmitResponses(t *testing.T) {
	var got wire.Submission
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/surveys/s1/responses", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})
	sub := wire.Submission{SurveyID: "s1", Responses: []wire.SubmissionAnswer{{QuestionID: "q1", ResponseValue: "A,B"}}}
	require.NoError(t, c.SubmitResponses(context.Background(), sub))
	assert.Equal(t, sub, got)
}

func TestVerifyToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"valid": true, "user": {"id": 3, "email": "a@b.c"}}`)
	})

	v, err := c.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "3", v.User.ToUser().ID)

	v, err = c.VerifyToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestTransportError(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.GetSurvey(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
