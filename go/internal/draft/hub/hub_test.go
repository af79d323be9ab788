package hub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftcore/go/internal/draft"
	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/pickgen"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

func newTestHub(t *testing.T) (*Hub, *store.MemoryGateway, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	gw := store.NewMemoryGateway()
	clock := clockwork.NewFakeClock()

	leagueID := uuid.New()
	commissionerID := uuid.New()
	teamID := uuid.New()
	ownerID := uuid.New()

	gw.SeedLeague(&models.League{
		ID: leagueID, Name: "Hub League", SportID: "nfl", Season: "2026",
		CommissionerID: commissionerID, Status: models.LeagueStatusActive,
		LeagueSettings: models.LeagueSettings{MaxTeams: 1, DraftType: models.DraftTypeLinear, TotalRounds: 1, TimerDurationSec: 90},
	})
	gw.SeedTeam(&models.FantasyTeam{ID: teamID, LeagueID: leagueID, Name: "A", OwnerUserID: &ownerID, DraftPosition: 1})
	gw.SeedDraftState(&models.DraftState{LeagueID: leagueID, Status: models.DraftStatusNotStarted})
	gw.SeedPicks(pickgen.Generate(leagueID, "2026", []uuid.UUID{teamID}, models.DraftTypeLinear, 1))

	registry := draft.NewRegistry(gw, clock, nil, zerolog.Nop())
	trades := draft.NewTradeEngine(gw, registry, clock)
	authorizer := NewGatewayAuthorizer(gw)
	h := NewHub(registry, trades, gw, authorizer, zerolog.Nop())
	return h, gw, leagueID, commissionerID, ownerID
}

func TestGatewayAuthorizerIdentify(t *testing.T) {
	a := NewGatewayAuthorizer(store.NewMemoryGateway())
	userID, isAdmin, err := a.Identify(context.Background(), "some-user-id")
	require.NoError(t, err)
	require.Equal(t, "some-user-id", userID)
	require.False(t, isAdmin)

	_, _, err = a.Identify(context.Background(), "")
	require.Error(t, err)
}

func TestGatewayAuthorizerLeagueMembership(t *testing.T) {
	_, gw, leagueID, commissionerID, ownerID := newTestHub(t)
	a := NewGatewayAuthorizer(gw)
	ctx := context.Background()

	m, err := a.LeagueMembership(ctx, commissionerID.String(), leagueID)
	require.NoError(t, err)
	require.True(t, m.IsMember)
	require.True(t, m.IsCommissioner)
	require.Nil(t, m.TeamID)

	m, err = a.LeagueMembership(ctx, ownerID.String(), leagueID)
	require.NoError(t, err)
	require.True(t, m.IsMember)
	require.False(t, m.IsCommissioner)
	require.NotNil(t, m.TeamID)

	stranger := uuid.New()
	m, err = a.LeagueMembership(ctx, stranger.String(), leagueID)
	require.NoError(t, err)
	require.False(t, m.IsMember)

	_, err = a.LeagueMembership(ctx, "not-a-uuid", leagueID)
	require.Error(t, err)
}

func newObserverSession(h *Hub, leagueID uuid.UUID, teamID *uuid.UUID, isCommissioner bool) *Session {
	return &Session{
		ID:             uuid.New().String(),
		UserID:         "test-user",
		LeagueID:       leagueID,
		TeamID:         teamID,
		IsCommissioner: isCommissioner,
		send:           make(chan []byte, 8),
		hub:            h,
		log:            zerolog.Nop(),
	}
}

func TestHandleIntentPauseDraftRequiresCommissioner(t *testing.T) {
	h, _, leagueID, _, ownerID := newTestHub(t)
	s := newObserverSession(h, leagueID, nil, false)
	_ = ownerID

	h.handleIntent(s, wireIntent{Event: events.IntentPauseDraft, Payload: json.RawMessage(`{"reason":"test"}`)})

	select {
	case payload := <-s.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		require.Equal(t, events.EventError, env.Event)
	default:
		t.Fatal("expected an Error event to be queued for unauthorized pause")
	}
}

func TestHandleIntentStartDraftByCommissioner(t *testing.T) {
	h, gw, leagueID, _, _ := newTestHub(t)
	s := newObserverSession(h, leagueID, nil, true)

	h.handleIntent(s, wireIntent{Event: events.IntentStartDraft, Payload: json.RawMessage(`{}`)})

	select {
	case payload := <-s.send:
		t.Fatalf("unexpected message queued for authorized commissioner action: %s", payload)
	default:
	}

	state, err := gw.GetDraftState(context.Background(), leagueID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStatusInProgress, state.Status)
}

func TestHandleIntentProposeTradeRequiresActingTeam(t *testing.T) {
	h, _, leagueID, _, _ := newTestHub(t)
	s := newObserverSession(h, leagueID, nil, false)

	receiverID := uuid.New()
	payload, _ := json.Marshal(proposeTradePayload{ReceiverTeamID: receiverID, Assets: nil})
	h.handleIntent(s, wireIntent{Event: events.IntentProposeTrade, Payload: payload})

	select {
	case raw := <-s.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		require.Equal(t, events.EventError, env.Event)
	default:
		t.Fatal("expected an Error event for a teamless proposeTrade")
	}
}

func TestHandleIntentUnrecognizedEvent(t *testing.T) {
	h, _, leagueID, _, _ := newTestHub(t)
	s := newObserverSession(h, leagueID, nil, true)

	h.handleIntent(s, wireIntent{Event: events.Type("NotARealEvent"), Payload: json.RawMessage(`{}`)})

	select {
	case raw := <-s.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		require.Equal(t, events.EventError, env.Event)
	default:
		t.Fatal("expected an Error event for an unrecognized intent")
	}
}
