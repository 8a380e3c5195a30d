package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/middleware"
	"github.com/sujittra/Uni-Exam/internal/session"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams session events (timer ticks, completion) to the student.
type WSHandler struct {
	sessions *session.Controller
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *session.Controller, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
// Pushes tick and completion events for the student's live session. The
// server clock is the one true timer; clients only render what arrives here.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	sess, ok := h.sessions.Get(claims.StudentID, examID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session for this exam"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("student_id", claims.StudentID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	events := sess.Subscribe()
	defer sess.Unsubscribe(events)

	// Reader goroutine: its only job is noticing the client went away.
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
		case <-done:
			wsLog.Debug().Msg("Connection closed")
			return
		case ev, open := <-events:
			if !open {
				// Session torn down (server shutdown).
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping connection")
				return
			}
			if ev.Type == session.EventCompleted {
				wsLog.Info().Bool("forced", ev.Forced).Msg("Attempt completed, closing stream")
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "completed"))
				return
			}
		}
	}
}
