package draft

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/pickgen"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// recordingBus captures every broadcast Envelope for assertions on
// event ordering.
type recordingBus struct {
	events []events.Envelope
}

func newRecordingBus() *recordingBus {
	return &recordingBus{}
}

func (b *recordingBus) Broadcast(leagueID uuid.UUID, env events.Envelope) {
	b.events = append(b.events, env)
}

func newTwoTeamLeague(t *testing.T, gw *store.MemoryGateway, draftType models.DraftType, totalRounds, timerSec int) (leagueID uuid.UUID, teamA, teamB uuid.UUID) {
	t.Helper()
	leagueID = uuid.New()
	teamA = uuid.New()
	teamB = uuid.New()

	gw.SeedLeague(&models.League{
		ID:      leagueID,
		Name:    "Test League",
		SportID: "nfl",
		Season:  "2026",
		Status:  models.LeagueStatusActive,
		LeagueSettings: models.LeagueSettings{
			MaxTeams:         2,
			DraftType:        draftType,
			TotalRounds:      totalRounds,
			TimerDurationSec: timerSec,
		},
	})
	gw.SeedTeam(&models.FantasyTeam{ID: teamA, LeagueID: leagueID, Name: "A", DraftPosition: 1})
	gw.SeedTeam(&models.FantasyTeam{ID: teamB, LeagueID: leagueID, Name: "B", DraftPosition: 2})
	gw.SeedDraftState(&models.DraftState{LeagueID: leagueID, Status: models.DraftStatusNotStarted})

	order := []uuid.UUID{teamA, teamB}
	picks := pickgen.Generate(leagueID, "2026", order, draftType, totalRounds)
	gw.SeedPicks(picks)

	return leagueID, teamA, teamB
}

func seedPlayers(gw *store.MemoryGateway, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		ids[i] = id
		rank := i + 1
		gw.SeedPlayer(&models.Player{ID: id, SportID: "nfl", FullName: "Player", Rank: &rank, IsActive: true})
	}
	return ids
}

func newTestCoordinator(leagueID uuid.UUID, gw store.Gateway, clock clockwork.Clock) *Coordinator {
	return NewCoordinator(leagueID, gw, clock, nil, zerolog.Nop())
}

func TestHappyPickLinear(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, teamB := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	s, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentPick)
	require.Equal(t, teamA, *s.CurrentTeamID)

	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))
	s, _ = c.Snapshot(ctx)
	require.Equal(t, 2, s.CurrentPick)
	require.Equal(t, teamB, *s.CurrentTeamID)

	require.NoError(t, c.MakePick(ctx, teamB, players[1], false))
	s, _ = c.Snapshot(ctx)
	require.Equal(t, 3, s.CurrentPick)
	require.Equal(t, teamA, *s.CurrentTeamID)

	require.NoError(t, c.MakePick(ctx, teamA, players[2], false))
	s, _ = c.Snapshot(ctx)
	require.Equal(t, 4, s.CurrentPick)
	require.Equal(t, teamB, *s.CurrentTeamID)

	require.NoError(t, c.MakePick(ctx, teamB, players[3], false))
	s, _ = c.Snapshot(ctx)
	require.Equal(t, models.DraftStatusCompleted, s.Status)

	aRoster, _ := gw.ListRosterEntries(ctx, leagueID)
	require.Len(t, aRoster, 4)
}

func TestSnakeOrdering(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, teamB := newTwoTeamLeague(t, gw, models.DraftTypeSnake, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))

	expectedTeams := []uuid.UUID{teamA, teamB, teamB, teamA}
	for i, pl := range players {
		s, err := c.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, expectedTeams[i], *s.CurrentTeamID, "pick %d", i+1)
		require.NoError(t, c.MakePick(ctx, expectedTeams[i], pl, false))
	}
}

func TestNotYourTurnRejected(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, _, teamB := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	err := c.MakePick(ctx, teamB, players[0], false)
	require.Error(t, err)
	ce, ok := err.(*CoreError)
	require.True(t, ok)
	require.Equal(t, "NOT_YOUR_TURN", ce.Code)
}

func TestPlayerAlreadyDraftedRejected(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, teamB := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))
	err := c.MakePick(ctx, teamB, players[0], false)
	require.Error(t, err)
	ce, ok := err.(*CoreError)
	require.True(t, ok)
	require.Equal(t, "PLAYER_UNAVAILABLE", ce.Code)
}

func TestUndoLastPick(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))

	require.NoError(t, c.UndoLastPick(ctx, true))
	s, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentPick)
	require.Equal(t, teamA, *s.CurrentTeamID)
	require.False(t, s.UndoAvailable)

	roster, _ := gw.ListRosterEntries(ctx, leagueID)
	require.Empty(t, roster)
	pick, err := gw.GetPickByOverall(ctx, leagueID, "2026", 1)
	require.NoError(t, err)
	require.False(t, pick.IsComplete)
}

func TestUndoRequiresCommissioner(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))

	err := c.UndoLastPick(ctx, false)
	require.Error(t, err)
	ce := err.(*CoreError)
	require.Equal(t, "UNAUTHORIZED", ce.Code)
}

func TestPauseResumeClearsUndoAvailable(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))

	s, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, s.UndoAvailable)

	require.NoError(t, c.PauseDraft(ctx, "commissioner requested"))
	s, err = c.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, s.UndoAvailable)
	require.Nil(t, s.LastPickID)

	require.NoError(t, c.ResumeDraft(ctx))
	s, err = c.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, s.UndoAvailable)
	require.Nil(t, s.LastPickID)

	err = c.UndoLastPick(ctx, true)
	require.Error(t, err)
	ce := err.(*CoreError)
	require.Equal(t, "INVALID_STATE", ce.Code)
}

func TestTimerAutoPick(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 3)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))

	clock.BlockUntil(1)
	for i := 0; i < 3; i++ {
		clock.Advance(1 * time.Second)
	}

	require.Eventually(t, func() bool {
		s, err := c.Snapshot(ctx)
		return err == nil && s.CurrentPick == 2
	}, 2*time.Second, 10*time.Millisecond)

	roster, _ := gw.ListRosterEntries(ctx, leagueID)
	require.Len(t, roster, 1)
	require.Equal(t, teamA, roster[0].TeamID)
	require.Equal(t, players[0], roster[0].PlayerID)
}

func TestPauseResumePreservesResidualTimer(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, _, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.PauseDraft(ctx, "commissioner requested"))

	s, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, s.IsPaused)
	require.Equal(t, "commissioner requested", *s.PauseReason)
	// No time has elapsed on the fake clock, so the residual is the full 90s.
	require.NotNil(t, s.TimerSecondsRemaining)
	require.Equal(t, 90, *s.TimerSecondsRemaining)
	require.Nil(t, s.TimerStartedAt)

	err = c.PauseDraft(ctx, "again")
	require.Error(t, err)

	require.NoError(t, c.ResumeDraft(ctx))
	s, _ = c.Snapshot(ctx)
	require.False(t, s.IsPaused)
	require.NotNil(t, s.TimerSecondsRemaining)
	require.Equal(t, 90, *s.TimerSecondsRemaining)
	require.NotNil(t, s.TimerStartedAt)
}

func TestResetDraft(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, teamB := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))
	require.NoError(t, c.MakePick(ctx, teamB, players[1], false))

	require.NoError(t, c.ResetDraft(ctx, true))

	s, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DraftStatusNotStarted, s.Status)

	roster, _ := gw.ListRosterEntries(ctx, leagueID)
	require.Empty(t, roster)

	picks, _ := gw.ListPicks(ctx, leagueID, "2026")
	for _, p := range picks {
		require.False(t, p.IsComplete)
		require.Equal(t, p.OriginalOwnerTeamID, p.CurrentOwnerTeamID)
	}
}

func TestResetRequiresCommissioner(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, _, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	err := c.ResetDraft(ctx, false)
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", err.(*CoreError).Code)
}

func TestStartDraftRequiresNotStarted(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, _, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	err := c.StartDraft(ctx)
	require.Error(t, err)
	require.Equal(t, "INVALID_STATE", err.(*CoreError).Code)
}

func TestOutboxWrittenOnPick(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	c := newTestCoordinator(leagueID, gw, clock)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))

	outboxEvents := gw.Outbox()
	require.NotEmpty(t, outboxEvents)
	var sawPickMade bool
	for _, e := range outboxEvents {
		require.Equal(t, leagueID, e.LeagueID)
		if e.EventType == "PickMade" {
			sawPickMade = true
		}
	}
	require.True(t, sawPickMade)
}

func TestBroadcastOrderingOnPick(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID, teamA, _ := newTwoTeamLeague(t, gw, models.DraftTypeLinear, 2, 90)
	players := seedPlayers(gw, 4)
	clock := clockwork.NewFakeClock()
	bus := newRecordingBus()
	c := NewCoordinator(leagueID, gw, clock, bus, zerolog.Nop())
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.StartDraft(ctx))
	require.NoError(t, c.MakePick(ctx, teamA, players[0], false))

	require.GreaterOrEqual(t, len(bus.events), 2)
	require.Equal(t, events.EventDraftStarted, bus.events[0].Event)

	var sawPickMade, sawOnTheClock bool
	pickMadeIdx, onTheClockIdx := -1, -1
	for i, e := range bus.events {
		if e.Event == events.EventPickMade {
			sawPickMade = true
			pickMadeIdx = i
		}
		if e.Event == events.EventOnTheClock {
			sawOnTheClock = true
			onTheClockIdx = i
		}
	}
	require.True(t, sawPickMade)
	require.True(t, sawOnTheClock)
	require.Less(t, pickMadeIdx, onTheClockIdx, "PickMade must broadcast before the next OnTheClock")
}
