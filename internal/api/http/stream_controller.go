package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/coachly/liveclass/internal/api/http/converter"
	"github.com/coachly/liveclass/internal/domain"
	"github.com/coachly/liveclass/internal/hub"
	"github.com/coachly/liveclass/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// StreamController pushes fanout events to clients: a WebSocket stream of all
// session events for the owner's console, and an SSE stream per join request
// for the waiting student.
type StreamController struct {
	sessions  service.SessionInteractor
	admission service.AdmissionInteractor
	hub       *hub.Hub
	log       *slog.Logger
	upgrader  websocket.Upgrader
}

func NewStreamController(sessions service.SessionInteractor, admission service.AdmissionInteractor, h *hub.Hub, log *slog.Logger) *StreamController {
	return &StreamController{
		sessions:  sessions,
		admission: admission,
		hub:       h,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SessionEvents streams every admission and lifecycle event of a session to
// its owner over a WebSocket.
func (c *StreamController) SessionEvents(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	// Subscribe before the snapshot so no transition between the two is lost.
	events, cancel, err := c.hub.Subscribe(hub.Filter{SessionID: sessionID})
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	session, err := c.sessions.GetState(ctx.Request.Context(), sessionID)
	if err != nil {
		cancel()
		writeError(ctx, c.log, err)
		return
	}
	if session.OwnerID != callerID(ctx) {
		cancel()
		writeError(ctx, c.log, service.ErrNotOwner)
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		cancel()
		return
	}
	defer conn.Close()
	defer cancel()

	if session.Status == domain.SessionStatusEnded {
		_ = conn.WriteJSON(domain.NewSessionEndedEvent(sessionID))
		return
	}

	// Read pump only detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Type == domain.EventSessionEnded {
				return
			}
		case <-done:
			return
		case <-ctx.Request.Context().Done():
			return
		}
	}
}

// RequestEvents streams one join request's resolution to its holder via SSE.
// Possession of the request id is the only credential needed, matching the
// status poll endpoint.
func (c *StreamController) RequestEvents(ctx *gin.Context) {
	sessionID, requestID, ok := pathIDs(ctx)
	if !ok {
		return
	}

	// Subscribe before the snapshot so no transition between the two is lost.
	events, cancel, err := c.hub.Subscribe(hub.Filter{SessionID: sessionID, RequestID: requestID})
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer cancel()

	request, err := c.admission.GetRequestStatus(ctx.Request.Context(), sessionID, requestID)
	if err != nil {
		writeError(ctx, c.log, err)
		return
	}

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	ctx.SSEvent("status", converter.RequestToApi(request))
	ctx.Writer.Flush()
	if request.Resolved() {
		return
	}

	ctx.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			switch event.Type {
			case domain.EventSessionEnded:
				if current, err := c.admission.GetRequestStatus(ctx.Request.Context(), sessionID, requestID); err == nil {
					ctx.SSEvent("status", converter.RequestToApi(current))
				}
				ctx.SSEvent("session_ended", gin.H{"session_id": sessionID})
				return false
			case domain.EventRequestUpdated:
				current, err := c.admission.GetRequestStatus(ctx.Request.Context(), sessionID, requestID)
				if err != nil {
					return false
				}
				ctx.SSEvent("status", converter.RequestToApi(current))
				return !current.Resolved()
			default:
				return true
			}
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}
