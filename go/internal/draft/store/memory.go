package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftcore/go/internal/draft/pickgen"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// MemoryGateway is an in-process, map-backed Gateway implementation used
// by unit tests and local/dev runs without Postgres (SPEC_FULL.md §6).
// A single mutex guards all state; RunInTransaction snapshots the store
// before invoking fn and restores it on error, giving callers the same
// all-or-nothing semantics a real transaction would.
type MemoryGateway struct {
	mu sync.Mutex

	leagues      map[uuid.UUID]*models.League
	teams        map[uuid.UUID]*models.FantasyTeam
	players      map[uuid.UUID]*models.Player
	draftStates  map[uuid.UUID]*models.DraftState
	picks        map[uuid.UUID]*models.DraftPick
	rosters      map[uuid.UUID]*models.RosterEntry // keyed by (leagueID,playerID) composite via rosterKey
	trades       map[uuid.UUID]*models.Trade
	teamQueues   map[uuid.UUID]*models.TeamQueue
	activityLog  []models.ActivityLog
	outbox       []OutboxEvent
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		leagues:     make(map[uuid.UUID]*models.League),
		teams:       make(map[uuid.UUID]*models.FantasyTeam),
		players:     make(map[uuid.UUID]*models.Player),
		draftStates: make(map[uuid.UUID]*models.DraftState),
		picks:       make(map[uuid.UUID]*models.DraftPick),
		rosters:     make(map[uuid.UUID]*models.RosterEntry),
		trades:      make(map[uuid.UUID]*models.Trade),
		teamQueues:  make(map[uuid.UUID]*models.TeamQueue),
	}
}

// Seed helpers for tests — not part of the Gateway interface.

func (m *MemoryGateway) SeedLeague(l *models.League) { m.leagues[l.ID] = l }
func (m *MemoryGateway) SeedTeam(t *models.FantasyTeam) { m.teams[t.ID] = t }
func (m *MemoryGateway) SeedPlayer(p *models.Player) { m.players[p.ID] = p }
func (m *MemoryGateway) SeedDraftState(s *models.DraftState) { m.draftStates[s.LeagueID] = s }
func (m *MemoryGateway) SeedPicks(picks []models.DraftPick) {
	for i := range picks {
		p := picks[i]
		m.picks[p.ID] = &p
	}
}

func rosterKey(leagueID, playerID uuid.UUID) string {
	return leagueID.String() + "/" + playerID.String()
}

func (m *MemoryGateway) clone() *MemoryGateway {
	cp := NewMemoryGateway()
	for k, v := range m.leagues {
		l := *v
		cp.leagues[k] = &l
	}
	for k, v := range m.teams {
		t := *v
		cp.teams[k] = &t
	}
	for k, v := range m.players {
		p := *v
		cp.players[k] = &p
	}
	for k, v := range m.draftStates {
		cp.draftStates[k] = v.Clone()
	}
	for k, v := range m.picks {
		p := *v
		cp.picks[k] = &p
	}
	for k, v := range m.rosters {
		r := *v
		cp.rosters[k] = &r
	}
	for k, v := range m.trades {
		t := *v
		t.Assets = append([]models.TradeAsset(nil), v.Assets...)
		cp.trades[k] = &t
	}
	for k, v := range m.teamQueues {
		q := *v
		q.PlayerIDs = append([]uuid.UUID(nil), v.PlayerIDs...)
		cp.teamQueues[k] = &q
	}
	cp.activityLog = append([]models.ActivityLog(nil), m.activityLog...)
	cp.outbox = append([]OutboxEvent(nil), m.outbox...)
	return cp
}

func (m *MemoryGateway) restore(from *MemoryGateway) {
	m.leagues = from.leagues
	m.teams = from.teams
	m.players = from.players
	m.draftStates = from.draftStates
	m.picks = from.picks
	m.rosters = from.rosters
	m.trades = from.trades
	m.teamQueues = from.teamQueues
	m.activityLog = from.activityLog
	m.outbox = from.outbox
}

func (m *MemoryGateway) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Gateway) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.clone()
	if err := fn(ctx, m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryGateway) GetDraftState(ctx context.Context, leagueID uuid.UUID) (*models.DraftState, error) {
	s, ok := m.draftStates[leagueID]
	if !ok {
		return nil, fmt.Errorf("draft state not found for league %s", leagueID)
	}
	return s.Clone(), nil
}

func (m *MemoryGateway) UpsertDraftState(ctx context.Context, params UpsertDraftStateParams) error {
	m.draftStates[params.State.LeagueID] = params.State.Clone()
	return nil
}

func (m *MemoryGateway) ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	var out []models.FantasyTeam
	for _, t := range m.teams {
		if t.LeagueID == leagueID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DraftPosition < out[j].DraftPosition })
	return out, nil
}

func (m *MemoryGateway) SetDraftPositions(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID) error {
	for pos, teamID := range order {
		t, ok := m.teams[teamID]
		if !ok {
			return fmt.Errorf("team %s not found", teamID)
		}
		t.DraftPosition = pos + 1
	}
	return nil
}

func (m *MemoryGateway) GetLeague(ctx context.Context, leagueID uuid.UUID) (*models.League, error) {
	l, ok := m.leagues[leagueID]
	if !ok {
		return nil, fmt.Errorf("league %s not found", leagueID)
	}
	cp := *l
	return &cp, nil
}

func (m *MemoryGateway) GetPick(ctx context.Context, pickID uuid.UUID) (*models.DraftPick, error) {
	p, ok := m.picks[pickID]
	if !ok {
		return nil, fmt.Errorf("pick %s not found", pickID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryGateway) GetPickByOverall(ctx context.Context, leagueID uuid.UUID, season string, overall int) (*models.DraftPick, error) {
	for _, p := range m.picks {
		if p.LeagueID == leagueID && p.Season == season && p.OverallPickNumber == overall {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no pick at overall %d for league %s season %s", overall, leagueID, season)
}

func (m *MemoryGateway) ListPicks(ctx context.Context, leagueID uuid.UUID, season string) ([]models.DraftPick, error) {
	var out []models.DraftPick
	for _, p := range m.picks {
		if p.LeagueID == leagueID && p.Season == season {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallPickNumber < out[j].OverallPickNumber })
	return out, nil
}

func (m *MemoryGateway) UpdatePickSelection(ctx context.Context, params UpdatePickSelectionParams) error {
	p, ok := m.picks[params.PickID]
	if !ok {
		return fmt.Errorf("pick %s not found", params.PickID)
	}
	p.SelectedPlayerID = params.PlayerID
	p.SelectedAt = params.SelectedAt
	p.IsComplete = params.IsComplete
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryGateway) SetPickOwner(ctx context.Context, pickID, newOwnerTeamID uuid.UUID) error {
	p, ok := m.picks[pickID]
	if !ok {
		return fmt.Errorf("pick %s not found", pickID)
	}
	p.CurrentOwnerTeamID = newOwnerTeamID
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryGateway) DeleteFuturePicks(ctx context.Context, leagueID uuid.UUID, currentSeason string) error {
	for id, p := range m.picks {
		if p.LeagueID == leagueID && p.IsFuturePick(currentSeason) {
			delete(m.picks, id)
		}
	}
	return nil
}

func (m *MemoryGateway) RegenerateCurrentSeasonPicks(ctx context.Context, leagueID uuid.UUID, season string, teamIDsInOrder []uuid.UUID, draftType models.DraftType, totalRounds int) error {
	for id, p := range m.picks {
		if p.LeagueID == leagueID && p.Season == season {
			delete(m.picks, id)
		}
	}
	fresh := pickgen.Generate(leagueID, season, teamIDsInOrder, draftType, totalRounds)
	for i := range fresh {
		p := fresh[i]
		m.picks[p.ID] = &p
	}
	return nil
}

func (m *MemoryGateway) GetOrMaterializeFuturePick(ctx context.Context, leagueID uuid.UUID, ref FuturePickRef) (*models.DraftPick, error) {
	for _, p := range m.picks {
		if p.LeagueID == leagueID && p.Season == ref.Season && p.Round == ref.Round && p.OriginalOwnerTeamID == ref.OriginalOwnerTeamID {
			cp := *p
			return &cp, nil
		}
	}
	now := time.Now()
	p := &models.DraftPick{
		ID:                  uuid.New(),
		LeagueID:            leagueID,
		Season:              ref.Season,
		Round:               ref.Round,
		OriginalOwnerTeamID: ref.OriginalOwnerTeamID,
		CurrentOwnerTeamID:  ref.OriginalOwnerTeamID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	m.picks[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *MemoryGateway) CreateRosterEntry(ctx context.Context, params CreateRosterEntryParams) (*models.RosterEntry, error) {
	key := uuid.NewSHA1(uuid.Nil, []byte(rosterKey(params.LeagueID, params.PlayerID)))
	if _, exists := m.rosters[key]; exists {
		return nil, fmt.Errorf("player %s already rostered in league %s", params.PlayerID, params.LeagueID)
	}
	entry := &models.RosterEntry{
		ID:          uuid.New(),
		LeagueID:    params.LeagueID,
		TeamID:      params.TeamID,
		PlayerID:    params.PlayerID,
		IsKeeper:    params.IsKeeper,
		KeeperRound: params.KeeperRound,
		AcquiredVia: params.AcquiredVia,
		AcquiredAt:  time.Now(),
	}
	m.rosters[key] = entry
	return entry, nil
}

func (m *MemoryGateway) GetRosterEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error) {
	key := uuid.NewSHA1(uuid.Nil, []byte(rosterKey(leagueID, playerID)))
	e, ok := m.rosters[key]
	if !ok {
		return nil, fmt.Errorf("no roster entry for player %s in league %s", playerID, leagueID)
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryGateway) DeleteRosterEntry(ctx context.Context, leagueID, playerID uuid.UUID) error {
	key := uuid.NewSHA1(uuid.Nil, []byte(rosterKey(leagueID, playerID)))
	delete(m.rosters, key)
	return nil
}

func (m *MemoryGateway) MoveRosterEntry(ctx context.Context, params MoveRosterEntryParams) error {
	key := uuid.NewSHA1(uuid.Nil, []byte(rosterKey(params.LeagueID, params.PlayerID)))
	e, ok := m.rosters[key]
	if !ok {
		return fmt.Errorf("no roster entry for player %s in league %s", params.PlayerID, params.LeagueID)
	}
	e.TeamID = params.NewTeamID
	e.AcquiredVia = params.AcquiredVia
	return nil
}

func (m *MemoryGateway) ListRosterEntries(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error) {
	var out []models.RosterEntry
	for _, e := range m.rosters {
		if e.LeagueID == leagueID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *MemoryGateway) DeleteNonKeeperRosterEntries(ctx context.Context, leagueID uuid.UUID) error {
	for k, e := range m.rosters {
		if e.LeagueID == leagueID && !e.IsKeeper {
			delete(m.rosters, k)
		}
	}
	return nil
}

func (m *MemoryGateway) ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID, limit int) ([]models.Player, error) {
	taken := make(map[uuid.UUID]bool)
	for _, e := range m.rosters {
		if e.LeagueID == leagueID {
			taken[e.PlayerID] = true
		}
	}
	var out []models.Player
	for _, p := range m.players {
		if !p.IsActive || taken[p.ID] {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rankOf(out[i]), rankOf(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func rankOf(p models.Player) int {
	if p.Rank == nil {
		return int(^uint(0) >> 1) // nulls last
	}
	return *p.Rank
}

func (m *MemoryGateway) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	p, ok := m.players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s not found", playerID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryGateway) CreateTrade(ctx context.Context, params CreateTradeParams) (*models.Trade, error) {
	t := &models.Trade{
		ID:              uuid.New(),
		LeagueID:        params.LeagueID,
		InitiatorTeamID: params.InitiatorTeamID,
		ReceiverTeamID:  params.ReceiverTeamID,
		Status:          models.TradeStatusPending,
		ProposedAt:      time.Now(),
		ExpiresAt:       params.ExpiresAt,
		Assets:          params.Assets,
	}
	for i := range t.Assets {
		t.Assets[i].ID = uuid.New()
		t.Assets[i].TradeID = t.ID
	}
	m.trades[t.ID] = t
	return t, nil
}

func (m *MemoryGateway) LoadTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error) {
	t, ok := m.trades[tradeID]
	if !ok {
		return nil, fmt.Errorf("trade %s not found", tradeID)
	}
	cp := *t
	cp.Assets = append([]models.TradeAsset(nil), t.Assets...)
	return &cp, nil
}

func (m *MemoryGateway) UpdateTradeStatus(ctx context.Context, params UpdateTradeStatusParams) error {
	t, ok := m.trades[params.TradeID]
	if !ok {
		return fmt.Errorf("trade %s not found", params.TradeID)
	}
	t.Status = params.Status
	t.RespondedAt = params.RespondedAt
	t.ProcessedAt = params.ProcessedAt
	t.ForcedByCommissioner = params.ForcedByCommissioner
	t.CommissionerNotes = params.CommissionerNotes
	return nil
}

func (m *MemoryGateway) ListPendingTrades(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range m.trades {
		if t.LeagueID == leagueID && t.Status == models.TradeStatusPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MemoryGateway) CancelPendingTrades(ctx context.Context, leagueID uuid.UUID) error {
	for _, t := range m.trades {
		if t.LeagueID == leagueID && t.Status == models.TradeStatusPending {
			t.Status = models.TradeStatusCancelled
			now := time.Now()
			t.RespondedAt = &now
		}
	}
	return nil
}

func (m *MemoryGateway) GetTeamQueue(ctx context.Context, teamID uuid.UUID) (*models.TeamQueue, error) {
	q, ok := m.teamQueues[teamID]
	if !ok {
		return &models.TeamQueue{TeamID: teamID}, nil
	}
	cp := *q
	cp.PlayerIDs = append([]uuid.UUID(nil), q.PlayerIDs...)
	return &cp, nil
}

func (m *MemoryGateway) SetTeamQueue(ctx context.Context, teamID uuid.UUID, playerIDs []uuid.UUID) error {
	m.teamQueues[teamID] = &models.TeamQueue{TeamID: teamID, PlayerIDs: append([]uuid.UUID(nil), playerIDs...)}
	return nil
}

func (m *MemoryGateway) ListTeamQueues(ctx context.Context, leagueID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID)
	for teamID, t := range m.teams {
		if t.LeagueID != leagueID {
			continue
		}
		if q, ok := m.teamQueues[teamID]; ok {
			out[teamID] = append([]uuid.UUID(nil), q.PlayerIDs...)
		}
	}
	return out, nil
}

func (m *MemoryGateway) AppendActivity(ctx context.Context, params AppendActivityParams) error {
	var raw json.RawMessage
	if params.Details != nil {
		raw = params.Details
	}
	m.activityLog = append(m.activityLog, models.ActivityLog{
		ID:        uuid.New(),
		LeagueID:  params.LeagueID,
		Kind:      params.Kind,
		ActorID:   params.ActorID,
		Details:   raw,
		CreatedAt: time.Now(),
	})
	return nil
}

// Activity exposes the in-memory journal for assertions in tests.
func (m *MemoryGateway) Activity(leagueID uuid.UUID) []models.ActivityLog {
	var out []models.ActivityLog
	for _, a := range m.activityLog {
		if a.LeagueID == leagueID {
			out = append(out, a)
		}
	}
	return out
}

func (m *MemoryGateway) AppendOutboxEvent(ctx context.Context, params AppendOutboxEventParams) error {
	m.outbox = append(m.outbox, OutboxEvent{
		ID:        uuid.New(),
		LeagueID:  params.LeagueID,
		EventType: params.EventType,
		Payload:   append([]byte(nil), params.Payload...),
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *MemoryGateway) FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var out []OutboxEvent
	for _, e := range m.outbox {
		if e.SentAt == nil {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryGateway) MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error {
	sent := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	now := time.Now()
	for i := range m.outbox {
		if sent[m.outbox[i].ID] {
			m.outbox[i].SentAt = &now
		}
	}
	return nil
}

// Outbox exposes the in-memory outbox journal for assertions in tests.
func (m *MemoryGateway) Outbox() []OutboxEvent {
	return append([]OutboxEvent(nil), m.outbox...)
}
