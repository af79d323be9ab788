package models

import (
	"time"

	"github.com/google/uuid"
)

// FantasyTeam is a league's draft participant — the "Team" of the draft
// core. OwnerUserID is nil for an empty slot; DraftPosition is unique
// within its league and is the basis for pick generation (§4.2).
type FantasyTeam struct {
	ID            uuid.UUID  `json:"id"`
	LeagueID      uuid.UUID  `json:"league_id"`
	OwnerUserID   *uuid.UUID `json:"owner_user_id,omitempty"`
	Name          string     `json:"name"`
	LogoURL       string     `json:"logo_url"`
	DraftPosition int        `json:"draft_position"`
	CreatedAt     time.Time  `json:"created_at"`
}
