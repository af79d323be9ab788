// Package events defines the wire-level vocabulary shared by the draft
// Coordinator, Hub, and any process subscribing to the NATS fan-out:
// client intents in, server events out (spec §4.2-§4.5, §6).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type is the discriminant carried in every envelope's "event" field.
type Type string

// Client-to-server intents (§4.5).
const (
	IntentMakePick     Type = "MakePick"
	IntentProposeTrade Type = "ProposeTrade"
	IntentAcceptTrade  Type = "AcceptTrade"
	IntentRejectTrade  Type = "RejectTrade"
	IntentCancelTrade  Type = "CancelTrade"
	IntentStartDraft   Type = "StartDraft"
	IntentPauseDraft   Type = "PauseDraft"
	IntentResumeDraft  Type = "ResumeDraft"
	IntentResetDraft   Type = "ResetDraft"
	IntentForcePick    Type = "ForcePick"
	IntentUndoLastPick Type = "UndoLastPick"
	IntentUpdateOrder  Type = "UpdateOrder"
	IntentUpdateQueue  Type = "UpdateQueue"
	IntentForceAccept  Type = "ForceAccept"
	IntentVeto         Type = "Veto"
	IntentJoinRoom     Type = "JoinDraftRoom"
)

// Server-to-client events (§4.2-§4.4, §6).
const (
	EventStateSync      Type = "StateSync"
	EventDraftStarted   Type = "DraftStarted"
	EventDraftPaused    Type = "DraftPaused"
	EventDraftResumed   Type = "DraftResumed"
	EventDraftComplete  Type = "DraftComplete"
	EventDraftReset     Type = "DraftReset"
	EventPickMade       Type = "PickMade"
	EventPickUndone     Type = "PickUndone"
	EventOnTheClock     Type = "OnTheClock"
	EventTimerTick      Type = "TimerTick"
	EventTimerExpired   Type = "TimerExpired"
	EventStaleWarning   Type = "StaleWarning"
	EventTradeAccepted  Type = "TradeAccepted"
	EventTradeProposed  Type = "TradeProposed"
	EventTradeRejected  Type = "TradeRejected"
	EventTradeCancelled Type = "TradeCancelled"
	EventTradeVetoed    Type = "TradeVetoed"
	EventError          Type = "Error"
)

// Error codes for the Error event payload (§6, §7).
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodePlayerUnavailable = "PLAYER_UNAVAILABLE"
	CodeInvalidState      = "INVALID_STATE"
	CodeTradeNotFound     = "TRADE_NOT_FOUND"
	CodeTradeExpired      = "TRADE_EXPIRED"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeConnError         = "CONN_ERROR"
	CodeStorageError      = "STORAGE_ERROR"
)

// Envelope is the JSON frame exchanged over the websocket transport: a
// discriminant plus a per-event payload (§6).
type Envelope struct {
	Event     Type        `json:"event"`
	LeagueID  uuid.UUID   `json:"leagueId"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

func NewEnvelope(leagueID uuid.UUID, typ Type, payload interface{}) Envelope {
	return Envelope{
		Event:     typ,
		LeagueID:  leagueID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// ErrorPayload is the Error event's payload (§6, §7).
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PickMadePayload is the PickMade event's payload (§6).
type PickMadePayload struct {
	PickID             uuid.UUID  `json:"pick"`
	PlayerID           uuid.UUID  `json:"player"`
	TeamID             uuid.UUID  `json:"teamId"`
	TeamName           string     `json:"teamName"`
	PickNumber         int        `json:"pickNumber"`
	Round              int        `json:"round"`
	NextPickNumber     *int       `json:"nextPick,omitempty"`
	TeamRosterUpdates  interface{} `json:"teamRosterUpdates,omitempty"`
}

// OnTheClockPayload is the OnTheClock event's payload (§6).
type OnTheClockPayload struct {
	TeamID         uuid.UUID `json:"teamId"`
	PickNumber     int       `json:"pickNumber"`
	Round          int       `json:"round"`
	TimerDuration  int       `json:"timerDuration"`
	TimerStartedAt time.Time `json:"timerStartedAt"`
}

// TimerTickPayload is the TimerTick event's payload (§6).
type TimerTickPayload struct {
	SecondsRemaining int       `json:"secondsRemaining"`
	CurrentPick      int       `json:"currentPick"`
	CurrentTeamID    uuid.UUID `json:"currentTeamId"`
}

// TradeAcceptedPayload is the TradeAccepted event's payload (§6).
type TradeAcceptedPayload struct {
	TradeID           uuid.UUID   `json:"tradeId"`
	InitiatorTeamID   uuid.UUID   `json:"initiatorTeam"`
	ReceiverTeamID    uuid.UUID   `json:"receiverTeam"`
	InitiatorAssets   interface{} `json:"initiatorAssets"`
	ReceiverAssets    interface{} `json:"receiverAssets"`
	UpdatedDraftOrder interface{} `json:"updatedDraftOrder,omitempty"`
	TeamRosterUpdates interface{} `json:"teamRosterUpdates,omitempty"`
	DraftPaused       bool        `json:"draftPaused"`
	PauseReason       string      `json:"pauseReason,omitempty"`
}

// DraftPausedPayload is the DraftPaused event's payload.
type DraftPausedPayload struct {
	Reason string `json:"reason"`
}

// TradeVetoedPayload is the TradeVetoed event's payload.
type TradeVetoedPayload struct {
	TradeID uuid.UUID `json:"tradeId"`
	Notes   string    `json:"notes,omitempty"`
}

// StateSyncPayload is the full-state snapshot delivered on join and on
// broad-impact events (DraftReset, TradeAccepted), per §4.6.
type StateSyncPayload struct {
	LeagueID              uuid.UUID                `json:"leagueId"`
	Status                string                   `json:"status"`
	CurrentRound          int                      `json:"currentRound"`
	CurrentPick           int                      `json:"currentPick"`
	CurrentTeamID         *uuid.UUID               `json:"currentTeamId,omitempty"`
	IsPaused              bool                     `json:"isPaused"`
	PauseReason           *string                  `json:"pauseReason,omitempty"`
	TimerSecondsRemaining *int                     `json:"timerSecondsRemaining,omitempty"`
	DraftOrder            []uuid.UUID              `json:"draftOrder"`
	CompletedPicks        interface{}              `json:"completedPicks"`
	AllPicks              interface{}              `json:"allPicks"`
	AvailablePlayers      interface{}               `json:"availablePlayers"`
	TeamRosters           map[uuid.UUID]interface{} `json:"teamRosters"`
	PendingTrades         interface{}               `json:"pendingTrades"`
	TotalRounds           int                      `json:"totalRounds"`
	DraftType             string                   `json:"draftType"`
	RosterSettings        interface{}               `json:"rosterSettings"`
	TeamQueues            map[uuid.UUID][]uuid.UUID `json:"teamQueues"`
	Timestamp             time.Time                `json:"timestamp"`
}
