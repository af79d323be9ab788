package draft

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

func newTradeFixture(t *testing.T, pauseOnTrade bool) (*store.MemoryGateway, *Registry, *TradeEngine, clockwork.FakeClock, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	gw := store.NewMemoryGateway()
	clock := clockwork.NewFakeClock()

	leagueID := uuid.New()
	teamA := uuid.New()
	teamB := uuid.New()

	gw.SeedLeague(&models.League{
		ID: leagueID, Name: "Trade League", SportID: "nfl", Season: "2026",
		Status: models.LeagueStatusActive,
		LeagueSettings: models.LeagueSettings{
			MaxTeams: 2, DraftType: models.DraftTypeLinear, TotalRounds: 3,
			TimerDurationSec: 90, PauseOnTrade: pauseOnTrade,
		},
	})
	gw.SeedTeam(&models.FantasyTeam{ID: teamA, LeagueID: leagueID, Name: "A", DraftPosition: 1})
	gw.SeedTeam(&models.FantasyTeam{ID: teamB, LeagueID: leagueID, Name: "B", DraftPosition: 2})
	gw.SeedDraftState(&models.DraftState{LeagueID: leagueID, Status: models.DraftStatusNotStarted})

	registry := NewRegistry(gw, clock, nil, zerolog.Nop())
	trades := NewTradeEngine(gw, registry, clock)
	return gw, registry, trades, clock, leagueID, teamA, teamB
}

func TestProposeTradeIsPureWrite(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusPending, trade.Status)

	entry, err := gw.GetRosterEntryByPlayer(ctx, leagueID, playerID)
	require.NoError(t, err)
	require.Equal(t, teamA, entry.TeamID, "propose must not move assets")

	outboxEvents := gw.Outbox()
	require.NotEmpty(t, outboxEvents)
}

func TestAcceptTradeSwapsPlayerAsset(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	require.NoError(t, trades.AcceptTrade(ctx, leagueID, trade.ID, teamB, false))

	entry, err := gw.GetRosterEntryByPlayer(ctx, leagueID, playerID)
	require.NoError(t, err)
	require.Equal(t, teamB, entry.TeamID)
	require.Equal(t, models.AcquisitionTypeTraded, entry.AcquiredVia)

	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusCompleted, loaded.Status)
}

func TestAcceptTradeClearsUndoAvailable(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	lastPickID := uuid.New()
	gw.SeedDraftState(&models.DraftState{
		LeagueID: leagueID, Status: models.DraftStatusInProgress,
		UndoAvailable: true, LastPickID: &lastPickID,
	})

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)
	require.NoError(t, trades.AcceptTrade(ctx, leagueID, trade.ID, teamB, false))

	state, err := gw.GetDraftState(ctx, leagueID)
	require.NoError(t, err)
	require.False(t, state.UndoAvailable, "a completed trade must invalidate whatever pick undoAvailable was guarding")
	require.Nil(t, state.LastPickID)
}

func TestAcceptTradeOnlyReceiverOrCommissioner(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	err = trades.AcceptTrade(ctx, leagueID, trade.ID, teamA, false)
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", err.(*CoreError).Code)
}

func TestAcceptTradeRevalidatesOwnership(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	// Player leaves teamA's roster (e.g. dropped/re-rostered) before accept.
	require.NoError(t, gw.DeleteRosterEntry(ctx, leagueID, playerID))

	err = trades.AcceptTrade(ctx, leagueID, trade.ID, teamB, false)
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", err.(*CoreError).Code)

	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusPending, loaded.Status, "failed revalidation must not advance trade status")
}

func TestRejectTrade(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	require.NoError(t, trades.RejectTrade(ctx, leagueID, trade.ID, teamB, false))
	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusRejected, loaded.Status)

	entry, err := gw.GetRosterEntryByPlayer(ctx, leagueID, playerID)
	require.NoError(t, err)
	require.Equal(t, teamA, entry.TeamID, "reject must not move assets")
}

func TestCancelTradeOnlyInitiatorOrCommissioner(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	err = trades.CancelTrade(ctx, leagueID, trade.ID, teamB, false)
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", err.(*CoreError).Code)

	require.NoError(t, trades.CancelTrade(ctx, leagueID, trade.ID, teamA, false))
	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusCancelled, loaded.Status)
}

func TestVetoTradeRequiresCommissioner(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	err = trades.VetoTrade(ctx, leagueID, trade.ID, false, "not allowed")
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", err.(*CoreError).Code)

	require.NoError(t, trades.VetoTrade(ctx, leagueID, trade.ID, true, "conflict of interest"))
	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusVetoed, loaded.Status)
	require.Equal(t, "conflict of interest", *loaded.CommissionerNotes)
}

func TestForceAcceptBypassesReceiverCheck(t *testing.T) {
	gw, _, trades, _, leagueID, teamA, teamB := newTradeFixture(t, false)
	ctx := context.Background()

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	require.NoError(t, trades.ForceAccept(ctx, leagueID, trade.ID))
	loaded, err := gw.LoadTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.Equal(t, models.TradeStatusCompleted, loaded.Status)
	require.True(t, loaded.ForcedByCommissioner)
}

func TestAcceptTradeAutoPausesDraft(t *testing.T) {
	gw, registry, trades, _, leagueID, teamA, teamB := newTradeFixture(t, true)
	ctx := context.Background()

	picks := []models.DraftPick{
		{ID: uuid.New(), LeagueID: leagueID, Season: "2026", Round: 1, PickInRound: 1, OverallPickNumber: 1, OriginalOwnerTeamID: teamA, CurrentOwnerTeamID: teamA},
		{ID: uuid.New(), LeagueID: leagueID, Season: "2026", Round: 1, PickInRound: 2, OverallPickNumber: 2, OriginalOwnerTeamID: teamB, CurrentOwnerTeamID: teamB},
	}
	gw.SeedPicks(picks)

	coord := registry.Acquire(leagueID)
	defer registry.Release(leagueID)
	require.NoError(t, coord.StartDraft(ctx))

	playerID := uuid.New()
	gw.SeedPlayer(&models.Player{ID: playerID, SportID: "nfl", FullName: "Player", IsActive: true})
	_, err := gw.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
		LeagueID: leagueID, TeamID: teamA, PlayerID: playerID, AcquiredVia: models.AcquisitionTypeDrafted,
	})
	require.NoError(t, err)

	trade, err := trades.ProposeTrade(ctx, leagueID, teamA, teamB, []models.TradeAsset{
		{FromTeamID: teamA, AssetKind: models.AssetKindPlayer, PlayerID: &playerID},
	})
	require.NoError(t, err)

	require.NoError(t, trades.AcceptTrade(ctx, leagueID, trade.ID, teamB, false))

	s, err := coord.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, s.IsPaused, "trade touching the team on the clock must auto-pause")
}
