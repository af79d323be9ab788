package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle status of a league's draft.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
	DraftStatusCancelled  DraftStatus = "CANCELLED"
)

// DraftState is the singleton authoritative draft record for a league
// (§3). Exactly one row exists per league; the Draft Coordinator (C2) is
// the only component that mutates it, always on its serial queue.
type DraftState struct {
	LeagueID              uuid.UUID  `json:"league_id"`
	Status                DraftStatus `json:"status"`
	CurrentRound          int        `json:"current_round"`
	CurrentPick           int        `json:"current_pick"`
	CurrentTeamID         *uuid.UUID `json:"current_team_id,omitempty"`
	IsPaused              bool       `json:"is_paused"`
	PauseReason           *string    `json:"pause_reason,omitempty"`
	TimerSecondsRemaining *int       `json:"timer_seconds_remaining,omitempty"`
	TimerStartedAt        *time.Time `json:"timer_started_at,omitempty"`
	LastPickID            *uuid.UUID `json:"last_pick_id,omitempty"`
	UndoAvailable         bool       `json:"undo_available"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	LastActivityAt        time.Time  `json:"last_activity_at"`
}

// Clone returns a deep-enough copy for handing out as a point-in-time
// snapshot without letting callers mutate the Coordinator's live state.
func (s *DraftState) Clone() *DraftState {
	cp := *s
	if s.CurrentTeamID != nil {
		id := *s.CurrentTeamID
		cp.CurrentTeamID = &id
	}
	if s.PauseReason != nil {
		r := *s.PauseReason
		cp.PauseReason = &r
	}
	if s.TimerSecondsRemaining != nil {
		t := *s.TimerSecondsRemaining
		cp.TimerSecondsRemaining = &t
	}
	if s.TimerStartedAt != nil {
		t := *s.TimerStartedAt
		cp.TimerStartedAt = &t
	}
	if s.LastPickID != nil {
		id := *s.LastPickID
		cp.LastPickID = &id
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		cp.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
