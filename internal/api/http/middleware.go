package http

import (
	"net/http"
	"strings"

	"github.com/coachly/liveclass/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const callerIDKey = "callerID"

// AuthRequired rejects requests without a valid bearer token and stores the
// resolved user id on the context.
func AuthRequired(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := authenticator.Authenticate(tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
			return
		}

		ctx.Set(callerIDKey, userID)
		ctx.Next()
	}
}

func callerID(ctx *gin.Context) uuid.UUID {
	value, ok := ctx.Get(callerIDKey)
	if !ok {
		return uuid.Nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
