// Package pickgen implements the pick-generation rule of spec §4.2. It is
// split out from internal/draft so both the Draft Coordinator and the
// Persistence Gateway's in-memory implementation can generate picks
// without an import cycle.
package pickgen

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// Generate applies the pick-generation rule of §4.2 to an ordered team
// list: for round r, the per-round order is teamOrder itself for LINEAR
// or odd r, and its reverse for SNAKE on even r. Grounded on the
// teacher's generateSnakeDraftPicks (draft/pick/app.go), generalized to
// the spec's exact SNAKE/LINEAR split (no auction/rookie variants, no
// third-round-reversal — see DESIGN.md open question 4).
func Generate(leagueID uuid.UUID, season string, teamOrder []uuid.UUID, draftType models.DraftType, totalRounds int) []models.DraftPick {
	n := len(teamOrder)
	picks := make([]models.DraftPick, 0, n*totalRounds)

	for r := 1; r <= totalRounds; r++ {
		roundOrder := teamOrder
		if draftType == models.DraftTypeSnake && r%2 == 0 {
			roundOrder = reverseTeams(teamOrder)
		}

		for k, teamID := range roundOrder {
			pickInRound := k + 1
			overall := (r-1)*n + pickInRound
			now := time.Now()
			picks = append(picks, models.DraftPick{
				ID:                  uuid.New(),
				LeagueID:            leagueID,
				Season:              season,
				Round:               r,
				PickInRound:         pickInRound,
				OverallPickNumber:   overall,
				OriginalOwnerTeamID: teamID,
				CurrentOwnerTeamID:  teamID,
				CreatedAt:           now,
				UpdatedAt:           now,
			})
		}
	}
	return picks
}

func reverseTeams(teams []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		out[len(teams)-1-i] = t
	}
	return out
}
