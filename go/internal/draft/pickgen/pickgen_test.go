package pickgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftcore/go/internal/models"
)

func teamIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestGenerateProducesExactCount(t *testing.T) {
	for _, draftType := range []models.DraftType{models.DraftTypeSnake, models.DraftTypeLinear} {
		teams := teamIDs(6)
		picks := Generate(uuid.New(), "2026", teams, draftType, 4)
		require.Len(t, picks, 6*4)
	}
}

func TestGenerateOverallIsBijection(t *testing.T) {
	for _, draftType := range []models.DraftType{models.DraftTypeSnake, models.DraftTypeLinear} {
		teams := teamIDs(8)
		picks := Generate(uuid.New(), "2026", teams, draftType, 5)

		seen := make(map[int]bool, len(picks))
		for _, p := range picks {
			require.False(t, seen[p.OverallPickNumber], "duplicate overall pick number %d", p.OverallPickNumber)
			seen[p.OverallPickNumber] = true
		}
		for i := 1; i <= 8*5; i++ {
			require.True(t, seen[i], "missing overall pick number %d", i)
		}
	}
}

func TestGenerateRoundPickInRoundUnique(t *testing.T) {
	teams := teamIDs(5)
	picks := Generate(uuid.New(), "2026", teams, models.DraftTypeSnake, 3)

	type key struct{ round, pickInRound int }
	seen := make(map[key]bool, len(picks))
	for _, p := range picks {
		k := key{p.Round, p.PickInRound}
		require.False(t, seen[k], "duplicate (round, pickInRound) %+v", k)
		seen[k] = true
	}
}

func TestGenerateLinearNeverReverses(t *testing.T) {
	teams := teamIDs(4)
	picks := Generate(uuid.New(), "2026", teams, models.DraftTypeLinear, 3)

	for r := 1; r <= 3; r++ {
		for k, teamID := range teams {
			overall := (r-1)*4 + k + 1
			found := findByOverall(picks, overall)
			require.NotNil(t, found)
			require.Equal(t, teamID, found.OriginalOwnerTeamID)
		}
	}
}

func TestGenerateSnakeReversesEvenRounds(t *testing.T) {
	teams := teamIDs(4)
	picks := Generate(uuid.New(), "2026", teams, models.DraftTypeSnake, 2)

	round1First := findByOverall(picks, 1)
	require.Equal(t, teams[0], round1First.OriginalOwnerTeamID)

	round2First := findByOverall(picks, 5)
	require.Equal(t, teams[3], round2First.OriginalOwnerTeamID)

	round2Last := findByOverall(picks, 8)
	require.Equal(t, teams[0], round2Last.OriginalOwnerTeamID)
}

func TestGenerateOriginalOwnerEqualsCurrentOwner(t *testing.T) {
	teams := teamIDs(3)
	picks := Generate(uuid.New(), "2026", teams, models.DraftTypeSnake, 2)
	for _, p := range picks {
		require.Equal(t, p.OriginalOwnerTeamID, p.CurrentOwnerTeamID)
		require.False(t, p.IsComplete)
		require.Nil(t, p.SelectedPlayerID)
	}
}

func findByOverall(picks []models.DraftPick, overall int) *models.DraftPick {
	for i := range picks {
		if picks[i].OverallPickNumber == overall {
			return &picks[i]
		}
	}
	return nil
}
