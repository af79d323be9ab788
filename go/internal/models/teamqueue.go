package models

import "github.com/google/uuid"

// TeamQueue is a team's ordered, restartable draft wishlist (§3). Purely
// advisory: the core never reads it to make a pick, only the owning
// team's UI does. No uniqueness constraint across teams — two teams may
// queue the same player.
type TeamQueue struct {
	TeamID    uuid.UUID   `json:"team_id"`
	PlayerIDs []uuid.UUID `json:"player_ids"`
}
