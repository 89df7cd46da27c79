package http

import (
	"github.com/coachly/liveclass/internal/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(sessionController *SessionController, admissionController *AdmissionController, streamController *StreamController, authenticator auth.Authenticator, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		config.AllowOrigins = allowedOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	sessions := api.Group("/sessions")

	owner := sessions.Group("")
	owner.Use(AuthRequired(authenticator))
	owner.POST("", sessionController.StartSession)
	owner.POST("/:sessionID/end", sessionController.EndSession)
	owner.GET("/:sessionID/requests", admissionController.ListRequests)
	owner.POST("/:sessionID/requests/:requestID/approve", admissionController.Approve)
	owner.POST("/:sessionID/requests/:requestID/reject", admissionController.Reject)
	owner.GET("/:sessionID/events", streamController.SessionEvents)

	sessions.GET("/:sessionID", sessionController.GetSession)
	sessions.POST("/:sessionID/join", admissionController.RequestJoin)
	sessions.GET("/:sessionID/requests/:requestID", admissionController.GetRequestStatus)
	sessions.GET("/:sessionID/requests/:requestID/events", streamController.RequestEvents)

	return router
}
