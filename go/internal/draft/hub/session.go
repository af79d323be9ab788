package hub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Config mirrors the teacher's ConnectionConfig (draft/gateway/connection_manager.go).
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  32 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// Session is one authenticated WebSocket subscriber attached to a single
// league's room (§4.5 join). TeamID is nil for a commissioner-only
// observer session with no team of its own.
type Session struct {
	ID             string
	UserID         string
	LeagueID       uuid.UUID
	TeamID         *uuid.UUID
	IsCommissioner bool

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  zerolog.Logger

	connectedAt time.Time
}

func (s *Session) writePump(cfg Config) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.hub.unregister(s)
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Error().Err(err).Str("session_id", s.ID).Msg("failed to write to session")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) readPump(cfg Config) {
	defer func() {
		s.hub.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Str("session_id", s.ID).Msg("unexpected websocket close")
			}
			return
		}
		var msg wireIntent
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError("VALIDATION_FAILED", "malformed message")
			continue
		}
		s.hub.handleIntent(s, msg)
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}

func (s *Session) deliver(payload []byte) bool {
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}
