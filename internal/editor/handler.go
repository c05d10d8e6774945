package editor

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/draft"
	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/pkg/response"
)

// OpenRequest is the body for POST /drafts. Without a survey id a new survey is started.
type OpenRequest struct {
	SurveyID string `json:"survey_id"`
}

// OpenResponse is returned by POST /drafts.
type OpenResponse struct {
	DraftID string        `json:"draft_id"`
	Survey  models.Survey `json:"survey"`
}

// AddQuestionRequest is the body for POST /drafts/:id/questions.
type AddQuestionRequest struct {
	Type models.QuestionType `json:"type" binding:"required,oneof=text textarea radio checkbox dropdown rating"`
}

// MoveRequest is the body of the move endpoints.
type MoveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// OptionRequest is the body for PATCH /drafts/:id/questions/:qid/options/:index.
type OptionRequest struct {
	Text *string `json:"text" binding:"required"`
}

// ConditionRequest is the body for PUT /drafts/:id/questions/:qid/condition. A
// null condition clears it.
type ConditionRequest struct {
	Condition *models.Condition `json:"condition"`
}

// SaveRequest is the body for POST /drafts/:id/save.
type SaveRequest struct {
	Publish bool `json:"publish"`
}

// Handler handles draft editing endpoints. Every route needs a session.
type Handler struct {
	registry *Registry
	api      *persistence.Client
	opts     []draft.Option
	logger   *zap.Logger
}

// NewHandler creates an editor handler. opts are applied to every draft it opens.
func NewHandler(registry *Registry, api *persistence.Client, logger *zap.Logger, opts ...draft.Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, api: api, opts: append(opts, draft.WithLogger(logger)), logger: logger}
}

// Routes registers the draft endpoints on rg.
func (h *Handler) Routes(rg gin.IRoutes) {
	rg.POST("/drafts", h.Open)
	rg.GET("/drafts/:id", h.Get)
	rg.PATCH("/drafts/:id", h.UpdateSurvey)
	rg.DELETE("/drafts/:id", h.Close)
	rg.POST("/drafts/:id/save", h.Save)
	rg.POST("/drafts/:id/questions", h.AddQuestion)
	rg.POST("/drafts/:id/questions/move", h.MoveQuestion)
	rg.PATCH("/drafts/:id/questions/:qid", h.UpdateQuestion)
	rg.DELETE("/drafts/:id/questions/:qid", h.DeleteQuestion)
	rg.PUT("/drafts/:id/questions/:qid/condition", h.SetCondition)
	rg.POST("/drafts/:id/questions/:qid/options", h.AddOption)
	rg.POST("/drafts/:id/questions/:qid/options/move", h.MoveOption)
	rg.PATCH("/drafts/:id/questions/:qid/options/:index", h.UpdateOption)
	rg.DELETE("/drafts/:id/questions/:qid/options/:index", h.RemoveOption)
}

// Open handles POST /drafts.
func (h *Handler) Open(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return
	}
	var req OpenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	api := h.api.WithToken(sess.Token)
	var store *draft.Store
	if req.SurveyID == "" {
		store = draft.New(api, h.opts...)
	} else {
		var err error
		store, err = draft.Load(c.Request.Context(), api, req.SurveyID, h.opts...)
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	id := h.registry.Open(sess.ID, store)
	response.Created(c, OpenResponse{DraftID: id, Survey: store.Survey()})
}

// Get handles GET /drafts/:id.
func (h *Handler) Get(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	response.OK(c, store.Survey())
}

// UpdateSurvey handles PATCH /drafts/:id.
func (h *Handler) UpdateSurvey(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req draft.SurveyPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	survey, err := store.UpdateSurvey(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, survey)
}

// Close handles DELETE /drafts/:id. Unsaved changes are lost.
func (h *Handler) Close(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return
	}
	if err := h.registry.Close(sess.ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// Save handles POST /drafts/:id/save.
func (h *Handler) Save(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req SaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	survey, err := store.Save(c.Request.Context(), req.Publish)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, survey)
}

// AddQuestion handles POST /drafts/:id/questions.
func (h *Handler) AddQuestion(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	q, err := store.AddQuestion(req.Type)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, q)
}

// MoveQuestion handles POST /drafts/:id/questions/move.
func (h *Handler) MoveQuestion(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := store.MoveQuestion(*req.From, *req.To); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, store.Survey())
}

// UpdateQuestion handles PATCH /drafts/:id/questions/:qid.
func (h *Handler) UpdateQuestion(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req draft.QuestionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	q, found, err := store.UpdateQuestion(c.Param("qid"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "question not found")
		return
	}
	response.OK(c, q)
}

// DeleteQuestion handles DELETE /drafts/:id/questions/:qid.
func (h *Handler) DeleteQuestion(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	found, err := store.DeleteQuestion(c.Request.Context(), c.Param("qid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "question not found")
		return
	}
	response.NoContent(c)
}

// SetCondition handles PUT /drafts/:id/questions/:qid/condition.
func (h *Handler) SetCondition(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	found, err := store.SetCondition(c.Param("qid"), req.Condition)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "question not found")
		return
	}
	response.OK(c, store.Survey())
}

// AddOption handles POST /drafts/:id/questions/:qid/options.
func (h *Handler) AddOption(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	o, found, err := store.AddOption(c.Param("qid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "question not found")
		return
	}
	response.Created(c, o)
}

// MoveOption handles POST /drafts/:id/questions/:qid/options/move.
func (h *Handler) MoveOption(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	found, err := store.MoveOption(c.Param("qid"), *req.From, *req.To)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "question not found")
		return
	}
	response.OK(c, store.Survey())
}

// UpdateOption handles PATCH /drafts/:id/questions/:qid/options/:index.
func (h *Handler) UpdateOption(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid option index")
		return
	}
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	found, err := store.UpdateOption(c.Param("qid"), index, *req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "option not found")
		return
	}
	response.OK(c, store.Survey())
}

// RemoveOption handles DELETE /drafts/:id/questions/:qid/options/:index.
func (h *Handler) RemoveOption(c *gin.Context) {
	store, ok := h.draft(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid option index")
		return
	}
	found, err := store.RemoveOption(c.Param("qid"), index)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFound(c, "option not found")
		return
	}
	response.NoContent(c)
}

// draft looks up the draft named by the :id param for the calling session
// and writes the error response itself when it cannot.
func (h *Handler) draft(c *gin.Context) (*draft.Store, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return nil, false
	}
	store, err := h.registry.Get(sess.ID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return store, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *draft.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]string, len(verr.Problems))
		for i, p := range verr.Problems {
			details[i] = p.Error()
		}
		response.UnprocessableEntity(c, "survey is not valid", details)
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, draft.ErrDiscarded):
		response.NotFound(c, "draft not found")
	case errors.Is(err, persistence.ErrNotFound):
		response.NotFound(c, "survey not found")
	case errors.Is(err, draft.ErrSaveInProgress), errors.Is(err, draft.ErrDeleteInProgress):
		response.Conflict(c, err.Error())
	case errors.Is(err, draft.ErrOutOfRange), errors.Is(err, draft.ErrUnknownType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, persistence.ErrUnauthorized):
		response.Unauthorized(c, "persistence api rejected the session")
	default:
		h.logger.Warn("draft operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.BadGateway(c, "survey service unavailable, try again")
	}
}
