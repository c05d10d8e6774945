// Package persistence is the HTTP client for the remote survey API that owns
// every stored survey, question and response.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/wire"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the API answers 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is returned for any other non-2xx answer.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("persistence api status %d: %s", e.Status, body)
}

// Config holds the client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	VerifyPath string
}

// Client talks to the persistence API. A Client is safe for concurrent use;
// WithToken returns a copy bound to one caller.
type Client struct {
	baseURL    string
	verifyPath string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client. Timeout bounds each request; zero leaves it to the caller's context.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	verifyPath := cfg.VerifyPath
	if verifyPath == "" {
		verifyPath = "/verify"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		verifyPath: "/" + strings.TrimLeft(verifyPath, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// WithToken returns a copy of c that authenticates as the bearer of token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// GetSurvey fetches one survey with its questions and options.
func (c *Client) GetSurvey(ctx context.Context, id string) (*wire.Survey, error) {
	var out wire.Survey
	if err := c.do(ctx, http.MethodGet, "/surveys/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSurvey stores a new survey and returns it as persisted.
func (c *Client) CreateSurvey(ctx context.Context, s wire.Survey) (*wire.Survey, error) {
	var out wire.Survey
	if err := c.do(ctx, http.MethodPost, "/surveys", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSurvey replaces survey id and returns it as persisted.
func (c *Client) UpdateSurvey(ctx context.Context, id string, s wire.Survey) (*wire.Survey, error) {
	var out wire.Survey
	if err := c.do(ctx, http.MethodPut, "/surveys/"+url.PathEscape(id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuestion deletes one persisted question.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/questions/"+url.PathEscape(id), nil, nil)
}

// SubmitResponses records one respondent's answers.
func (c *Client) SubmitResponses(ctx context.Context, sub wire.Submission) error {
	return c.do(ctx, http.MethodPost, "/surveys/"+url.PathEscape(sub.SurveyID)+"/responses", sub, nil)
}

// GetAnalytics fetches a survey together with every response to it.
func (c *Client) GetAnalytics(ctx context.Context, surveyID string) (*wire.Analytics, error) {
	var out wire.Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics/surveys/"+url.PathEscape(surveyID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserSurveys fetches the dashboard records of a user's surveys.
func (c *Client) ListUserSurveys(ctx context.Context, userID string) ([]wire.Summary, error) {
	var out []wire.Summary
	if err := c.do(ctx, http.MethodGet, "/surveys/user/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []wire.Summary{}
	}
	return out, nil
}

// VerifyToken asks the auth endpoint whether token is valid. A rejected token
// yields a Verification with Valid false rather than an error.
func (c *Client) VerifyToken(ctx context.Context, token string) (*wire.Verification, error) {
	var out wire.Verification
	err := c.WithToken(token).do(ctx, http.MethodGet, c.verifyPath, nil, &out)
	if errors.Is(err, ErrUnauthorized) {
		return &wire.Verification{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("persistence request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.logger.Debug("persistence request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
