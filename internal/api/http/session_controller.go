package http

import (
	"log/slog"
	"net/http"

	"github.com/coachly/liveclass/internal/api/http/converter"
	"github.com/coachly/liveclass/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionController struct {
	sessions  service.SessionInteractor
	admission service.AdmissionInteractor
	log       *slog.Logger
}

func NewSessionController(sessions service.SessionInteractor, admission service.AdmissionInteractor, log *slog.Logger) *SessionController {
	return &SessionController{sessions: sessions, admission: admission, log: log}
}

func (c *SessionController) StartSession(ctx *gin.Context) {
	type request struct {
		Capacity int `json:"capacity"`
	}

	var req request
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	session, credential, err := c.sessions.StartSession(ctx.Request.Context(), callerID(ctx), req.Capacity)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"session":    converter.SessionToApi(session),
		"credential": credential,
	})
}

func (c *SessionController) GetSession(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := c.sessions.GetState(ctx.Request.Context(), sessionID)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	approved, err := c.admission.ApprovedCount(ctx.Request.Context(), sessionID)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"session":        converter.SessionToApi(session),
		"approved_count": approved,
	})
}

func (c *SessionController) EndSession(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := c.sessions.EndSession(ctx.Request.Context(), sessionID, callerID(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"session": converter.SessionToApi(session)})
}
