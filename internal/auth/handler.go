package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/session"
	"github.com/aura-survey/builder/pkg/response"
)

// DraftOwner drops every open draft of a session.
type DraftOwner interface {
	DiscardOwner(owner string) int
}

// SessionResponse is the body of GET /auth/session.
type SessionResponse struct {
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// Handler serves the session endpoints. Routes must sit behind the required
// auth middleware.
type Handler struct {
	sessions *Sessions
	drafts   DraftOwner
	logger   *zap.Logger
}

// NewHandler creates an auth handler. drafts may be nil.
func NewHandler(sessions *Sessions, drafts DraftOwner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, drafts: drafts, logger: logger}
}

// Current handles GET /auth/session.
func (h *Handler) Current(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return
	}
	response.OK(c, SessionResponse{User: sess.User, CreatedAt: sess.CreatedAt})
}

// Logout handles DELETE /auth/session.
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		response.Unauthorized(c, "not signed in")
		return
	}
	if err := h.sessions.End(c.Request.Context(), sess.ID); err != nil {
		h.logger.Error("session clear failed", zap.String("user_id", sess.User.ID), zap.Error(err))
		response.Internal(c, "failed to end session")
		return
	}
	if h.drafts != nil {
		if n := h.drafts.DiscardOwner(sess.ID); n > 0 {
			h.logger.Info("discarded drafts on logout", zap.String("user_id", sess.User.ID), zap.Int("drafts", n))
		}
	}
	response.NoContent(c)
}
