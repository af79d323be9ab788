package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityKind enumerates the decisions recorded in a league's append-only
// activity journal (§3).
type ActivityKind string

const (
	ActivityDraftStarted    ActivityKind = "DRAFT_STARTED"
	ActivityPickMade        ActivityKind = "PICK_MADE"
	ActivityPickUndone      ActivityKind = "PICK_UNDONE"
	ActivityTradeProposed   ActivityKind = "TRADE_PROPOSED"
	ActivityTradeAccepted   ActivityKind = "TRADE_ACCEPTED"
	ActivityTradeRejected   ActivityKind = "TRADE_REJECTED"
	ActivityTradeVetoed     ActivityKind = "TRADE_VETOED"
	ActivityOrderUpdated    ActivityKind = "ORDER_UPDATED"
	ActivitySettingsChanged ActivityKind = "SETTINGS_CHANGED"
	ActivityTimerExpired    ActivityKind = "TIMER_EXPIRED"
	ActivityAutoPick        ActivityKind = "AUTO_PICK"
	ActivityDraftReset      ActivityKind = "DRAFT_RESET"
)

// ActivityLog is a single append-only entry in a league's journal.
// Details carries kind-specific context (pick IDs, player IDs, trade
// IDs) as opaque JSON so the log schema never needs to change shape.
type ActivityLog struct {
	ID        uuid.UUID       `json:"id"`
	LeagueID  uuid.UUID       `json:"league_id"`
	Kind      ActivityKind    `json:"kind"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
