package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick represents a single selectable slot in a league's draft.
//
// (season, round, pickInRound) is unique per league. OriginalOwnerTeamID
// never changes after generation; CurrentOwnerTeamID changes only via an
// accepted trade.
type DraftPick struct {
	ID                  uuid.UUID  `json:"id"`
	LeagueID            uuid.UUID  `json:"league_id"`
	Season              string     `json:"season"`
	Round               int        `json:"round"`
	PickInRound         int        `json:"pick_in_round"`
	OverallPickNumber   int        `json:"overall_pick_number"`
	OriginalOwnerTeamID uuid.UUID  `json:"original_owner_team_id"`
	CurrentOwnerTeamID  uuid.UUID  `json:"current_owner_team_id"`
	SelectedPlayerID    *uuid.UUID `json:"selected_player_id,omitempty"`
	SelectedAt          *time.Time `json:"selected_at,omitempty"`
	IsComplete          bool       `json:"is_complete"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsFuturePick reports whether this pick belongs to a season other than
// currentSeason, i.e. it is not part of the active draft order yet.
func (p *DraftPick) IsFuturePick(currentSeason string) bool {
	return p.Season != currentSeason
}
