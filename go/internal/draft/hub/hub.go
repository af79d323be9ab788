package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mcdev12/draftcore/go/internal/draft"
	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

// broadcastMessage is one unit of fan-out work: an envelope destined for
// every session in a league's room, or — when toSessionID is set — a
// single unicast (used for a joining session's StateSync, §4.5 join).
// Error replies do not go through here; sendError delivers them to the
// session directly.
type broadcastMessage struct {
	leagueID     uuid.UUID
	env          events.Envelope
	toSessionID  string
}

// Hub is the Subscription Hub (C5): owns every league's room of
// WebSocket sessions, authorizes and routes intents to the Coordinator
// Registry and Trade Engine, and implements draft.Broadcaster so the
// Coordinator can fan events back out without importing this package.
type Hub struct {
	registry *draft.Registry
	trades   *draft.TradeEngine
	gw       store.Gateway
	auth     Authorizer
	log      zerolog.Logger
	cfg      Config

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Session]bool

	broadcastCh chan broadcastMessage
}

func NewHub(registry *draft.Registry, trades *draft.TradeEngine, gw store.Gateway, auth Authorizer, log zerolog.Logger) *Hub {
	cfg := DefaultConfig()
	return &Hub{
		registry: registry,
		trades:   trades,
		gw:       gw,
		auth:     auth,
		log:      log,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms:       make(map[uuid.UUID]map[*Session]bool),
		broadcastCh: make(chan broadcastMessage, 1024),
	}
}

// Start runs the dispatcher loop until ctx is cancelled. Must be started
// before any Coordinator begins broadcasting.
func (h *Hub) Start(ctx context.Context) {
	h.log.Info().Msg("subscription hub started")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.broadcastCh:
			h.dispatch(msg)
		}
	}
}

// Broadcast implements draft.Broadcaster: called synchronously from a
// Coordinator's serial queue, so it must never block on a slow client —
// it only enqueues onto the buffered broadcastCh (§5 suspension points).
func (h *Hub) Broadcast(leagueID uuid.UUID, env events.Envelope) {
	select {
	case h.broadcastCh <- broadcastMessage{leagueID: leagueID, env: env}:
	default:
		h.log.Warn().Str("league_id", leagueID.String()).Msg("broadcast channel full, dropping event")
	}
}

func (h *Hub) dispatch(msg broadcastMessage) {
	h.mu.RLock()
	room, ok := h.rooms[msg.leagueID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	var targets []*Session
	for s := range room {
		if msg.toSessionID != "" && s.ID != msg.toSessionID {
			continue
		}
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(msg.env)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}
	for _, s := range targets {
		if !s.deliver(payload) {
			h.log.Warn().Str("session_id", s.ID).Msg("session send buffer full, dropping connection")
			h.unregister(s)
			s.conn.Close()
		}
	}

	// Broad-impact events re-derive and push a fresh StateSync so clients
	// never have to reconcile scattered deltas (§4.6).
	if msg.toSessionID == "" && (msg.env.Event == events.EventDraftReset || msg.env.Event == events.EventTradeAccepted) {
		h.pushStateSync(context.Background(), msg.leagueID, "")
	}
}

func (h *Hub) pushStateSync(ctx context.Context, leagueID uuid.UUID, onlySessionID string) {
	snap, err := draft.BuildSnapshot(ctx, h.gw, leagueID)
	if err != nil {
		h.log.Error().Err(err).Str("league_id", leagueID.String()).Msg("failed to build snapshot")
		return
	}
	env := events.NewEnvelope(leagueID, events.EventStateSync, snap)
	msg := broadcastMessage{leagueID: leagueID, env: env, toSessionID: onlySessionID}
	select {
	case h.broadcastCh <- msg:
	default:
		// Called from within dispatch() itself for broad-impact events;
		// a blocking send here would deadlock the single dispatcher
		// goroutine against its own channel, so deliver this one inline.
		h.dispatch(msg)
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket session and
// joins it to leagueId's room (§4.5 join). Authentication/membership
// resolution happens before the upgrade so an unauthorized caller never
// establishes a socket.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leagueIDStr := r.URL.Query().Get("league_id")
	leagueID, err := uuid.Parse(leagueIDStr)
	if err != nil {
		http.Error(w, "invalid or missing league_id", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	userID, _, err := h.auth.Identify(ctx, token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	membership, err := h.auth.LeagueMembership(ctx, userID, leagueID)
	if err != nil || !membership.IsMember {
		http.Error(w, "not a member of this league", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	session := &Session{
		ID:             uuid.New().String(),
		UserID:         userID,
		LeagueID:       leagueID,
		TeamID:         membership.TeamID,
		IsCommissioner: membership.IsCommissioner,
		conn:           conn,
		send:           make(chan []byte, 256),
		hub:            h,
		log:            h.log,
		connectedAt:    time.Now(),
	}
	h.register(session)

	go session.writePump(h.cfg)
	go session.readPump(h.cfg)

	// JoinDraftRoom: attach to the Coordinator (keeps it alive while this
	// session is connected) and reply with an authoritative snapshot.
	h.registry.Acquire(leagueID)
	h.pushStateSync(ctx, leagueID, session.ID)

	h.log.Info().Str("session_id", session.ID).Str("user_id", userID).Str("league_id", leagueID.String()).Msg("session joined draft room")
}

func (h *Hub) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[s.LeagueID] == nil {
		h.rooms[s.LeagueID] = make(map[*Session]bool)
	}
	h.rooms[s.LeagueID][s] = true
}

// unregister removes the session from its room and releases its
// Coordinator subscription (§4.1 eviction policy).
func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	room, ok := h.rooms[s.LeagueID]
	if ok {
		if _, present := room[s]; present {
			delete(room, s)
			close(s.send)
			if len(room) == 0 {
				delete(h.rooms, s.LeagueID)
			}
		} else {
			h.mu.Unlock()
			return
		}
	}
	h.mu.Unlock()
	h.registry.Release(s.LeagueID)
}

func (s *Session) sendError(code, message string) {
	env := events.NewEnvelope(s.LeagueID, events.EventError, events.ErrorPayload{Code: code, Message: message})
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.deliver(payload)
}
