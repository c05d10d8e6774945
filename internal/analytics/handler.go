package analytics

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/internal/wire"
	"github.com/aura-survey/builder/pkg/response"
)

// Handler serves survey analytics. Export is optional: a nil exporter makes
// the export route answer 503.
type Handler struct {
	api      *persistence.Client
	exporter *Exporter
	logger   *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(api *persistence.Client, exporter *Exporter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, exporter: exporter, logger: logger}
}

// Get handles GET /surveys/:id/analytics.
func (h *Handler) Get(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	response.OK(c, report)
}

// Export handles POST /surveys/:id/analytics/export.
func (h *Handler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.ServiceUnavailable(c, "report export is not configured")
		return
	}
	report, ok := h.report(c)
	if !ok {
		return
	}
	exp, err := h.exporter.Export(c.Request.Context(), report)
	if err != nil {
		response.BadGateway(c, "failed to export report")
		return
	}
	response.Created(c, exp)
}

func (h *Handler) report(c *gin.Context) (Report, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return Report{}, false
	}
	id := c.Param("id")
	payload, err := h.api.WithToken(sess.Token).GetAnalytics(c.Request.Context(), id)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		response.NotFound(c, "survey not found")
		return Report{}, false
	case errors.Is(err, persistence.ErrUnauthorized):
		response.Unauthorized(c, "not allowed to view this survey")
		return Report{}, false
	case err != nil:
		h.logger.Warn("fetch analytics failed", zap.String("survey_id", id), zap.Error(err))
		response.BadGateway(c, "failed to load analytics")
		return Report{}, false
	}

	survey, responses := wire.ToAnalytics(*payload)
	if survey.ID == "" {
		survey.ID = id
	}
	return BuildReport(survey, responses), true
}
