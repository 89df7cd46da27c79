package http

import (
	"log/slog"
	"net/http"

	"github.com/coachly/liveclass/internal/api/http/converter"
	"github.com/coachly/liveclass/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdmissionController struct {
	admission service.AdmissionInteractor
	log       *slog.Logger
}

func NewAdmissionController(admission service.AdmissionInteractor, log *slog.Logger) *AdmissionController {
	return &AdmissionController{admission: admission, log: log}
}

func (c *AdmissionController) RequestJoin(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	type request struct {
		DisplayName string `json:"display_name" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	joinRequest, err := c.admission.RequestJoin(ctx.Request.Context(), sessionID, req.DisplayName)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"request": converter.RequestToApi(joinRequest)})
}

func (c *AdmissionController) GetRequestStatus(ctx *gin.Context) {
	sessionID, requestID, ok := pathIDs(ctx)
	if !ok {
		return
	}

	joinRequest, err := c.admission.GetRequestStatus(ctx.Request.Context(), sessionID, requestID)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": converter.RequestToApi(joinRequest)})
}

func (c *AdmissionController) ListRequests(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	requests, err := c.admission.ListRequests(ctx.Request.Context(), sessionID, callerID(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"requests": converter.RequestsToApi(requests)})
}

func (c *AdmissionController) Approve(ctx *gin.Context) {
	sessionID, requestID, ok := pathIDs(ctx)
	if !ok {
		return
	}

	joinRequest, err := c.admission.Approve(ctx.Request.Context(), sessionID, requestID, callerID(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": converter.RequestToApi(joinRequest)})
}

func (c *AdmissionController) Reject(ctx *gin.Context) {
	sessionID, requestID, ok := pathIDs(ctx)
	if !ok {
		return
	}

	joinRequest, err := c.admission.Reject(ctx.Request.Context(), sessionID, requestID, callerID(ctx))
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": converter.RequestToApi(joinRequest)})
}

func pathIDs(ctx *gin.Context) (sessionID, requestID uuid.UUID, ok bool) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, uuid.Nil, false
	}
	requestID, err = uuid.Parse(ctx.Param("requestID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, requestID, true
}
