package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/knwl-ai/knwld/internal/jobs"
)

// jobPollInterval is how often the stream re-reads the job record.
const jobPollInterval = 250 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleJobStream handles GET /job/:id/stream. It upgrades to a
// websocket, pushes a status frame on every state change, and closes
// after the terminal frame.
func (s *Server) handleJobStream(c *gin.Context) {
	id := c.Param("id")

	// Reject unknown jobs before upgrading so the client gets a plain
	// 404 instead of an immediately-closed socket.
	if _, err := s.svc.GetJobStatus(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "job_id", id, "error", err)
		return
	}
	defer ws.Close()

	ctx := c.Request.Context()
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	var lastState jobs.State
	for {
		status, err := s.svc.GetJobStatus(ctx, id)
		if err != nil {
			ws.WriteJSON(ErrorResponse{Error: err.Error()})
			return
		}

		if status.State != lastState {
			lastState = status.State
			if err := ws.WriteJSON(status); err != nil {
				return
			}
			if status.State.Terminal() {
				ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(status.State)))
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
