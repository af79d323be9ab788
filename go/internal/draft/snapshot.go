package draft

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

const maxAvailablePlayersInSnapshot = 500

// BuildSnapshot is the Snapshot Builder (C6): assembles the full
// StateSync payload delivered on join and on broad-impact events
// (DraftReset, TradeAccepted), per §4.6. Grounded on the teacher's
// draft/gateway/{state,state_provider,state_sync_example}.go, which
// already compute a StateSync-shaped payload from scattered reads;
// generalized here into one read-only pass over the Gateway.
func BuildSnapshot(ctx context.Context, gw store.Gateway, leagueID uuid.UUID) (*events.StateSyncPayload, error) {
	state, err := gw.GetDraftState(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	league, err := gw.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	teams, err := gw.ListTeams(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	picks, err := gw.ListPicks(ctx, leagueID, league.Season)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	available, err := gw.ListAvailablePlayers(ctx, leagueID, maxAvailablePlayersInSnapshot)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	rosterEntries, err := gw.ListRosterEntries(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	pendingTrades, err := gw.ListPendingTrades(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	teamQueues, err := gw.ListTeamQueues(ctx, leagueID)
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].DraftPosition < teams[j].DraftPosition })
	draftOrder := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		draftOrder[i] = t.ID
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].OverallPickNumber < picks[j].OverallPickNumber })
	var completedPicks []models.DraftPick
	for _, p := range picks {
		if p.IsComplete {
			completedPicks = append(completedPicks, p)
		}
	}

	teamRosters := make(map[uuid.UUID]interface{}, len(teams))
	rostersByTeam := make(map[uuid.UUID][]models.RosterEntry)
	for _, entry := range rosterEntries {
		rostersByTeam[entry.TeamID] = append(rostersByTeam[entry.TeamID], entry)
	}
	for _, t := range teams {
		teamRosters[t.ID] = rostersByTeam[t.ID]
	}

	return &events.StateSyncPayload{
		LeagueID:              leagueID,
		Status:                string(state.Status),
		CurrentRound:          state.CurrentRound,
		CurrentPick:           state.CurrentPick,
		CurrentTeamID:         state.CurrentTeamID,
		IsPaused:              state.IsPaused,
		PauseReason:           state.PauseReason,
		TimerSecondsRemaining: state.TimerSecondsRemaining,
		DraftOrder:            draftOrder,
		CompletedPicks:        completedPicks,
		AllPicks:              picks,
		AvailablePlayers:      available,
		TeamRosters:           teamRosters,
		PendingTrades:         pendingTrades,
		TotalRounds:           league.LeagueSettings.TotalRounds,
		DraftType:             string(league.LeagueSettings.DraftType),
		RosterSettings:        league.LeagueSettings.RosterTemplate,
		TeamQueues:            teamQueues,
		Timestamp:             state.LastActivityAt,
	}, nil
}
