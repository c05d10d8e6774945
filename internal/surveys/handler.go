// Package surveys serves the dashboard list and the respondent side of a survey.
package surveys

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/respond"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/internal/wire"
	"github.com/aura-survey/builder/pkg/response"
)

// Stats are the dashboard counters.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
	Responses int `json:"responses"`
}

// Dashboard is the body of GET /surveys.
type Dashboard struct {
	Surveys []models.SurveySummary `json:"surveys"`
	Stats   Stats                  `json:"stats"`
}

// Question is a question as shown to a respondent.
type Question struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Type     models.QuestionType `json:"type"`
	Required bool                `json:"is_required"`
	Options  []string            `json:"options"`
}

// View is the body of GET /surveys/:id.
type View struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Settings    models.Settings `json:"settings"`
	Questions   []Question      `json:"questions"`
}

// SubmitRequest is the body for POST /surveys/:id/responses.
type SubmitRequest struct {
	Answers map[string]models.Answer `json:"answers" binding:"required"`
}

// Handler handles survey listing, viewing and response submission.
type Handler struct {
	api    *persistence.Client
	logger *zap.Logger
}

// NewHandler creates a surveys handler.
func NewHandler(api *persistence.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// List handles GET /surveys for the signed-in user.
func (h *Handler) List(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return
	}
	records, err := h.api.WithToken(sess.Token).ListUserSurveys(c.Request.Context(), sess.User.ID)
	if err != nil {
		h.logger.Warn("list surveys failed", zap.String("user_id", sess.User.ID), zap.Error(err))
		response.BadGateway(c, "failed to load surveys")
		return
	}
	summaries := wire.ToSummaries(records)
	response.OK(c, Dashboard{Surveys: summaries, Stats: stats(summaries)})
}

func stats(summaries []models.SurveySummary) Stats {
	st := Stats{Total: len(summaries)}
	for _, s := range summaries {
		switch s.Status {
		case models.StatusPublished:
			st.Published++
		case models.StatusDraft:
			st.Drafts++
		}
		st.Responses += s.Responses
	}
	return st
}

// Get handles GET /surveys/:id. Surveys that require login are only shown
// to signed-in callers.
func (h *Handler) Get(c *gin.Context) {
	survey, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, view(survey))
}

// Submit handles POST /surveys/:id/responses.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	survey, ok := h.load(c)
	if !ok {
		return
	}

	sheet := respond.NewSheet(survey.Questions)
	if err := sheet.Fill(req.Answers); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if problems := sheet.Validate(); len(problems) > 0 {
		response.UnprocessableEntity(c, "missing required answers", problems)
		return
	}

	if err := h.client(c.Request.Context()).SubmitResponses(c.Request.Context(), sheet.Submission(survey.ID)); err != nil {
		h.logger.Warn("submit responses failed", zap.String("survey_id", survey.ID), zap.Error(err))
		response.BadGateway(c, "failed to submit response")
		return
	}
	response.Created(c, gin.H{"survey_id": survey.ID})
}

// load fetches the :id survey and enforces its login requirement. It writes
// the error response itself when it cannot.
func (h *Handler) load(c *gin.Context) (models.Survey, bool) {
	ctx := c.Request.Context()
	id := c.Param("id")
	fetched, err := h.client(ctx).GetSurvey(ctx, id)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		response.NotFound(c, "survey not found")
		return models.Survey{}, false
	case err != nil:
		h.logger.Warn("fetch survey failed", zap.String("survey_id", id), zap.Error(err))
		response.BadGateway(c, "failed to load survey")
		return models.Survey{}, false
	}

	survey := wire.ToDraft(*fetched)
	if survey.ID == "" {
		survey.ID = id
	}
	if _, signedIn := session.FromContext(ctx); survey.Settings.RequiresLogin && !signedIn {
		response.Unauthorized(c, "sign in to answer this survey")
		return models.Survey{}, false
	}
	return survey, true
}

func (h *Handler) client(ctx context.Context) *persistence.Client {
	if sess, ok := session.FromContext(ctx); ok {
		return h.api.WithToken(sess.Token)
	}
	return h.api
}

func view(s models.Survey) View {
	v := View{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		Settings:    s.Settings,
		Questions:   make([]Question, len(s.Questions)),
	}
	for i, q := range s.Questions {
		v.Questions[i] = Question{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Required: q.IsRequired,
			Options:  q.OptionTexts(),
		}
	}
	return v
}
