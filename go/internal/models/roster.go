package models

import (
	"time"

	"github.com/google/uuid"
)

// RosterEntry ties a player to the fantasy team that holds it within a
// league (§3). Unique per (LeagueID, PlayerID) — a player is on at most
// one team per league. Keeper entries exist before the draft starts and
// make the player unavailable in the draft pool.
type RosterEntry struct {
	ID              uuid.UUID       `json:"id"`
	LeagueID        uuid.UUID       `json:"league_id"`
	TeamID          uuid.UUID       `json:"team_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	IsKeeper        bool            `json:"is_keeper"`
	KeeperRound     *int            `json:"keeper_round,omitempty"`
	AcquiredVia     AcquisitionType `json:"acquired_via"`
	AcquiredAt      time.Time       `json:"acquired_at"`
}

// AcquisitionType represents how a player was acquired onto a roster.
type AcquisitionType string

const (
	AcquisitionTypeDrafted   AcquisitionType = "DRAFTED"
	AcquisitionTypeKeeper    AcquisitionType = "KEEPER"
	AcquisitionTypeTraded    AcquisitionType = "TRADED"
	AcquisitionTypeFreeAgent AcquisitionType = "FREE_AGENT"
)
