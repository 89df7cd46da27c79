package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/repository"
	"github.com/coachly/liveclass/internal/service"
	"github.com/coachly/liveclass/internal/token"
	"github.com/coachly/liveclass/lib/logger/sl"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to status codes and stable error codes so
// clients can render specific messages. Unexpected failures are logged and
// collapsed into an opaque 500.
func writeError(ctx *gin.Context, log *slog.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrRequestNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotOwner):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrSessionNotLive):
		status, code = http.StatusConflict, "session_not_live"
	case errors.Is(err, service.ErrCapacityExceeded):
		status, code = http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, service.ErrAlreadyResolved):
		status, code = http.StatusConflict, "already_resolved"
	case errors.Is(err, domain.ErrDisplayNameEmpty),
		errors.Is(err, service.ErrInvalidCapacity):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, token.ErrIssueFailed):
		status, code = http.StatusBadGateway, "credential_issuance_failed"
	default:
		log.Error("unexpected error", sl.Err(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error(), "code": code})
}
