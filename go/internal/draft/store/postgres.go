package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/draftcore/go/internal/draft/pickgen"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// Postgres SQLSTATE codes this package translates into domain errors.
// pgerrcode is not part of the retrieval pack (see DESIGN.md), so these
// are named directly the way the Postgres docs list them rather than
// imported from a constants package.
const (
	sqlstateUniqueViolation      = "23505"
	sqlstateSerializationFailure = "40001"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, i.e. a losing writer in a double-draft or stale-ownership
// race lost at the row level (uq_roster_entries_league_player,
// uq_draft_picks_selected_player).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateUniqueViolation
}

// IsSerializationFailure reports whether err is a Postgres serialization
// failure under pgx.Serializable, i.e. a losing writer in a concurrent
// pick-selection or trade-swap transaction lost at the snapshot level
// rather than at a unique index (§4.7).
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateSerializationFailure
}

// conn is the subset of pgx's pool/tx surface the Gateway needs — lets
// PostgresGateway run either against the pool directly or against a
// single *pgx.Tx inside RunInTransaction, the way the teacher's
// repository layer is built against a Querier interface
// (teams/repository.go) rather than a concrete pool type.
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgconnCommandTag narrows pgconn.CommandTag to what we use, so conn can
// be satisfied by both *pgxpool.Pool and pgx.Tx without importing pgconn
// directly in this file's exported surface.
type pgconnCommandTag = interface{ RowsAffected() int64 }

type poolAdapter struct{ pool *pgxpool.Pool }

func (p poolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}
func (p poolAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}
func (p poolAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

type txAdapter struct{ tx pgx.Tx }

func (t txAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}
func (t txAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.tx.QueryRow(ctx, sql, args...)
}
func (t txAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

// PostgresGateway is the production Gateway implementation, grounded on
// the teacher's pgx-backed repositories (teams/repository.go,
// draft/pick/repository.go) and hand-authored in the sqlc idiom since the
// generated `db` packages for this schema are not part of the retrieval
// pack (see DESIGN.md).
type PostgresGateway struct {
	pool *pgxpool.Pool
	c    conn
}

func NewPostgresGateway(pool *pgxpool.Pool) *PostgresGateway {
	return &PostgresGateway{pool: pool, c: poolAdapter{pool}}
}

// RunInTransaction runs fn at Serializable isolation: §4.7 requires the
// pick-selection and trade-swap transactions to detect concurrent
// writers rather than silently interleave them, and every Gateway
// transaction shares this opener, so every transactional call gets the
// same guarantee. A loser is reported back to fn's caller as a Postgres
// serialization failure (40001) via IsSerializationFailure, the same way
// a unique-constraint loser is reported via IsUniqueViolation.
func (g *PostgresGateway) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Gateway) error) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return ErrStorage("begin tx", err)
	}
	txGateway := &PostgresGateway{pool: g.pool, c: txAdapter{tx}}
	if err := fn(ctx, txGateway); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return ErrStorage("commit tx", err)
	}
	return nil
}

func ErrStorage(op string, err error) error {
	return fmt.Errorf("store: %s: %w", op, err)
}

func (g *PostgresGateway) GetDraftState(ctx context.Context, leagueID uuid.UUID) (*models.DraftState, error) {
	row := g.c.QueryRow(ctx, `
		SELECT league_id, status, current_round, current_pick, current_team_id,
		       is_paused, pause_reason, timer_seconds_remaining, timer_started_at,
		       last_pick_id, undo_available, started_at, completed_at, last_activity_at
		FROM draft_states WHERE league_id = $1`, leagueID)

	var s models.DraftState
	err := row.Scan(&s.LeagueID, &s.Status, &s.CurrentRound, &s.CurrentPick, &s.CurrentTeamID,
		&s.IsPaused, &s.PauseReason, &s.TimerSecondsRemaining, &s.TimerStartedAt,
		&s.LastPickID, &s.UndoAvailable, &s.StartedAt, &s.CompletedAt, &s.LastActivityAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft state not found for league %s", leagueID)
	}
	if err != nil {
		return nil, ErrStorage("get draft state", err)
	}
	return &s, nil
}

func (g *PostgresGateway) UpsertDraftState(ctx context.Context, params UpsertDraftStateParams) error {
	s := params.State
	_, err := g.c.Exec(ctx, `
		INSERT INTO draft_states (league_id, status, current_round, current_pick, current_team_id,
			is_paused, pause_reason, timer_seconds_remaining, timer_started_at,
			last_pick_id, undo_available, started_at, completed_at, last_activity_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (league_id) DO UPDATE SET
			status = EXCLUDED.status, current_round = EXCLUDED.current_round,
			current_pick = EXCLUDED.current_pick, current_team_id = EXCLUDED.current_team_id,
			is_paused = EXCLUDED.is_paused, pause_reason = EXCLUDED.pause_reason,
			timer_seconds_remaining = EXCLUDED.timer_seconds_remaining,
			timer_started_at = EXCLUDED.timer_started_at, last_pick_id = EXCLUDED.last_pick_id,
			undo_available = EXCLUDED.undo_available, started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at, last_activity_at = EXCLUDED.last_activity_at`,
		s.LeagueID, s.Status, s.CurrentRound, s.CurrentPick, s.CurrentTeamID,
		s.IsPaused, s.PauseReason, s.TimerSecondsRemaining, s.TimerStartedAt,
		s.LastPickID, s.UndoAvailable, s.StartedAt, s.CompletedAt, s.LastActivityAt)
	if err != nil {
		return ErrStorage("upsert draft state", err)
	}
	return nil
}

func (g *PostgresGateway) ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	rows, err := g.c.Query(ctx, `
		SELECT id, league_id, owner_user_id, name, logo_url, draft_position, created_at
		FROM fantasy_teams WHERE league_id = $1 ORDER BY draft_position ASC`, leagueID)
	if err != nil {
		return nil, ErrStorage("list teams", err)
	}
	defer rows.Close()

	var out []models.FantasyTeam
	for rows.Next() {
		var t models.FantasyTeam
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.OwnerUserID, &t.Name, &t.LogoURL, &t.DraftPosition, &t.CreatedAt); err != nil {
			return nil, ErrStorage("scan team", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (g *PostgresGateway) SetDraftPositions(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID) error {
	for pos, teamID := range order {
		if _, err := g.c.Exec(ctx, `UPDATE fantasy_teams SET draft_position = $1 WHERE id = $2 AND league_id = $3`,
			pos+1, teamID, leagueID); err != nil {
			return ErrStorage("set draft position", err)
		}
	}
	return nil
}

func (g *PostgresGateway) GetLeague(ctx context.Context, leagueID uuid.UUID) (*models.League, error) {
	row := g.c.QueryRow(ctx, `
		SELECT id, name, sport_id, league_type, commissioner_id, league_settings,
		       league_status, season, created_at, updated_at
		FROM leagues WHERE id = $1`, leagueID)

	var l models.League
	var settingsJSON []byte
	if err := row.Scan(&l.ID, &l.Name, &l.SportID, &l.LeagueType, &l.CommissionerID, &settingsJSON,
		&l.Status, &l.Season, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("league %s not found", leagueID)
		}
		return nil, ErrStorage("get league", err)
	}
	if err := json.Unmarshal(settingsJSON, &l.LeagueSettings); err != nil {
		return nil, ErrStorage("unmarshal league settings", err)
	}
	return &l, nil
}

func (g *PostgresGateway) GetPick(ctx context.Context, pickID uuid.UUID) (*models.DraftPick, error) {
	row := g.c.QueryRow(ctx, pickSelectSQL+` WHERE id = $1`, pickID)
	return scanPick(row)
}

func (g *PostgresGateway) GetPickByOverall(ctx context.Context, leagueID uuid.UUID, season string, overall int) (*models.DraftPick, error) {
	row := g.c.QueryRow(ctx, pickSelectSQL+` WHERE league_id = $1 AND season = $2 AND overall_pick_number = $3`,
		leagueID, season, overall)
	return scanPick(row)
}

func (g *PostgresGateway) ListPicks(ctx context.Context, leagueID uuid.UUID, season string) ([]models.DraftPick, error) {
	rows, err := g.c.Query(ctx, pickSelectSQL+` WHERE league_id = $1 AND season = $2 ORDER BY overall_pick_number ASC`,
		leagueID, season)
	if err != nil {
		return nil, ErrStorage("list picks", err)
	}
	defer rows.Close()

	var out []models.DraftPick
	for rows.Next() {
		p, err := scanPickRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const pickSelectSQL = `
	SELECT id, league_id, season, round, pick_in_round, overall_pick_number,
	       original_owner_team_id, current_owner_team_id, selected_player_id,
	       selected_at, is_complete, created_at, updated_at
	FROM draft_picks`

func scanPick(row pgx.Row) (*models.DraftPick, error) {
	var p models.DraftPick
	err := row.Scan(&p.ID, &p.LeagueID, &p.Season, &p.Round, &p.PickInRound, &p.OverallPickNumber,
		&p.OriginalOwnerTeamID, &p.CurrentOwnerTeamID, &p.SelectedPlayerID,
		&p.SelectedAt, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pick not found")
	}
	if err != nil {
		return nil, ErrStorage("scan pick", err)
	}
	return &p, nil
}

func scanPickRows(rows pgx.Rows) (*models.DraftPick, error) {
	var p models.DraftPick
	err := rows.Scan(&p.ID, &p.LeagueID, &p.Season, &p.Round, &p.PickInRound, &p.OverallPickNumber,
		&p.OriginalOwnerTeamID, &p.CurrentOwnerTeamID, &p.SelectedPlayerID,
		&p.SelectedAt, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, ErrStorage("scan pick row", err)
	}
	return &p, nil
}

func (g *PostgresGateway) UpdatePickSelection(ctx context.Context, params UpdatePickSelectionParams) error {
	_, err := g.c.Exec(ctx, `
		UPDATE draft_picks SET selected_player_id = $1, selected_at = $2, is_complete = $3, updated_at = now()
		WHERE id = $4`, params.PlayerID, params.SelectedAt, params.IsComplete, params.PickID)
	if err != nil {
		return ErrStorage("update pick selection", err)
	}
	return nil
}

func (g *PostgresGateway) SetPickOwner(ctx context.Context, pickID, newOwnerTeamID uuid.UUID) error {
	_, err := g.c.Exec(ctx, `UPDATE draft_picks SET current_owner_team_id = $1, updated_at = now() WHERE id = $2`,
		newOwnerTeamID, pickID)
	if err != nil {
		return ErrStorage("set pick owner", err)
	}
	return nil
}

func (g *PostgresGateway) DeleteFuturePicks(ctx context.Context, leagueID uuid.UUID, currentSeason string) error {
	_, err := g.c.Exec(ctx, `DELETE FROM draft_picks WHERE league_id = $1 AND season <> $2`, leagueID, currentSeason)
	if err != nil {
		return ErrStorage("delete future picks", err)
	}
	return nil
}

func (g *PostgresGateway) RegenerateCurrentSeasonPicks(ctx context.Context, leagueID uuid.UUID, season string, teamIDsInOrder []uuid.UUID, draftType models.DraftType, totalRounds int) error {
	if _, err := g.c.Exec(ctx, `DELETE FROM draft_picks WHERE league_id = $1 AND season = $2`, leagueID, season); err != nil {
		return ErrStorage("delete current season picks", err)
	}
	fresh := pickgen.Generate(leagueID, season, teamIDsInOrder, draftType, totalRounds)
	for _, p := range fresh {
		if _, err := g.c.Exec(ctx, `
			INSERT INTO draft_picks (id, league_id, season, round, pick_in_round, overall_pick_number,
				original_owner_team_id, current_owner_team_id, is_complete, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9,$9)`,
			p.ID, p.LeagueID, p.Season, p.Round, p.PickInRound, p.OverallPickNumber,
			p.OriginalOwnerTeamID, p.CurrentOwnerTeamID, p.CreatedAt); err != nil {
			return ErrStorage("insert regenerated pick", err)
		}
	}
	return nil
}

func (g *PostgresGateway) GetOrMaterializeFuturePick(ctx context.Context, leagueID uuid.UUID, ref FuturePickRef) (*models.DraftPick, error) {
	row := g.c.QueryRow(ctx, pickSelectSQL+` WHERE league_id = $1 AND season = $2 AND round = $3 AND original_owner_team_id = $4`,
		leagueID, ref.Season, ref.Round, ref.OriginalOwnerTeamID)
	p, err := scanPick(row)
	if err == nil {
		return p, nil
	}

	now := time.Now()
	fresh := &models.DraftPick{
		ID:                  uuid.New(),
		LeagueID:            leagueID,
		Season:              ref.Season,
		Round:               ref.Round,
		OriginalOwnerTeamID: ref.OriginalOwnerTeamID,
		CurrentOwnerTeamID:  ref.OriginalOwnerTeamID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	_, err = g.c.Exec(ctx, `
		INSERT INTO draft_picks (id, league_id, season, round, pick_in_round, overall_pick_number,
			original_owner_team_id, current_owner_team_id, is_complete, created_at, updated_at)
		VALUES ($1,$2,$3,$4,0,0,$5,$6,false,$7,$7)`,
		fresh.ID, fresh.LeagueID, fresh.Season, fresh.Round, fresh.OriginalOwnerTeamID, fresh.CurrentOwnerTeamID, now)
	if err != nil {
		return nil, ErrStorage("materialize future pick", err)
	}
	return fresh, nil
}

func (g *PostgresGateway) CreateRosterEntry(ctx context.Context, params CreateRosterEntryParams) (*models.RosterEntry, error) {
	row := g.c.QueryRow(ctx, `
		INSERT INTO roster_entries (id, league_id, team_id, player_id, is_keeper, keeper_round, acquired_via, acquired_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		RETURNING id, league_id, team_id, player_id, is_keeper, keeper_round, acquired_via, acquired_at`,
		uuid.New(), params.LeagueID, params.TeamID, params.PlayerID, params.IsKeeper, params.KeeperRound, params.AcquiredVia)

	var e models.RosterEntry
	if err := row.Scan(&e.ID, &e.LeagueID, &e.TeamID, &e.PlayerID, &e.IsKeeper, &e.KeeperRound, &e.AcquiredVia, &e.AcquiredAt); err != nil {
		return nil, ErrStorage("create roster entry", err)
	}
	return &e, nil
}

func (g *PostgresGateway) GetRosterEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error) {
	row := g.c.QueryRow(ctx, `
		SELECT id, league_id, team_id, player_id, is_keeper, keeper_round, acquired_via, acquired_at
		FROM roster_entries WHERE league_id = $1 AND player_id = $2`, leagueID, playerID)

	var e models.RosterEntry
	err := row.Scan(&e.ID, &e.LeagueID, &e.TeamID, &e.PlayerID, &e.IsKeeper, &e.KeeperRound, &e.AcquiredVia, &e.AcquiredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no roster entry for player %s in league %s", playerID, leagueID)
	}
	if err != nil {
		return nil, ErrStorage("get roster entry", err)
	}
	return &e, nil
}

func (g *PostgresGateway) DeleteRosterEntry(ctx context.Context, leagueID, playerID uuid.UUID) error {
	_, err := g.c.Exec(ctx, `DELETE FROM roster_entries WHERE league_id = $1 AND player_id = $2`, leagueID, playerID)
	if err != nil {
		return ErrStorage("delete roster entry", err)
	}
	return nil
}

func (g *PostgresGateway) MoveRosterEntry(ctx context.Context, params MoveRosterEntryParams) error {
	_, err := g.c.Exec(ctx, `UPDATE roster_entries SET team_id = $1, acquired_via = $2 WHERE league_id = $3 AND player_id = $4`,
		params.NewTeamID, params.AcquiredVia, params.LeagueID, params.PlayerID)
	if err != nil {
		return ErrStorage("move roster entry", err)
	}
	return nil
}

func (g *PostgresGateway) ListRosterEntries(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := g.c.Query(ctx, `
		SELECT id, league_id, team_id, player_id, is_keeper, keeper_round, acquired_via, acquired_at
		FROM roster_entries WHERE league_id = $1`, leagueID)
	if err != nil {
		return nil, ErrStorage("list roster entries", err)
	}
	defer rows.Close()

	var out []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.ID, &e.LeagueID, &e.TeamID, &e.PlayerID, &e.IsKeeper, &e.KeeperRound, &e.AcquiredVia, &e.AcquiredAt); err != nil {
			return nil, ErrStorage("scan roster entry", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (g *PostgresGateway) DeleteNonKeeperRosterEntries(ctx context.Context, leagueID uuid.UUID) error {
	_, err := g.c.Exec(ctx, `DELETE FROM roster_entries WHERE league_id = $1 AND is_keeper = false`, leagueID)
	if err != nil {
		return ErrStorage("delete non-keeper roster entries", err)
	}
	return nil
}

func (g *PostgresGateway) ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID, limit int) ([]models.Player, error) {
	rows, err := g.c.Query(ctx, `
		SELECT p.id, p.sport_id, p.external_id, p.full_name, p.team_id, p.rank, p.adp,
		       p.bye_week, p.injury_status, p.is_active, p.created_at
		FROM players p
		WHERE p.is_active = true
		  AND NOT EXISTS (SELECT 1 FROM roster_entries r WHERE r.league_id = $1 AND r.player_id = p.id)
		ORDER BY p.rank ASC NULLS LAST, p.id ASC
		LIMIT $2`, leagueID, limit)
	if err != nil {
		return nil, ErrStorage("list available players", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.SportID, &p.ExternalID, &p.FullName, &p.TeamID, &p.Rank, &p.ADP,
			&p.ByeWeek, &p.InjuryStatus, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, ErrStorage("scan player", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *PostgresGateway) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	row := g.c.QueryRow(ctx, `
		SELECT id, sport_id, external_id, full_name, team_id, rank, adp, bye_week, injury_status, is_active, created_at
		FROM players WHERE id = $1`, playerID)

	var p models.Player
	err := row.Scan(&p.ID, &p.SportID, &p.ExternalID, &p.FullName, &p.TeamID, &p.Rank, &p.ADP,
		&p.ByeWeek, &p.InjuryStatus, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %s not found", playerID)
	}
	if err != nil {
		return nil, ErrStorage("get player", err)
	}
	return &p, nil
}

func (g *PostgresGateway) CreateTrade(ctx context.Context, params CreateTradeParams) (*models.Trade, error) {
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
	_, err := g.c.Exec(ctx, `
		INSERT INTO trades (id, league_id, initiator_team_id, receiver_team_id, status, proposed_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.LeagueID, t.InitiatorTeamID, t.ReceiverTeamID, t.Status, t.ProposedAt, t.ExpiresAt)
	if err != nil {
		return nil, ErrStorage("create trade", err)
	}
	for i := range t.Assets {
		a := &t.Assets[i]
		a.ID = uuid.New()
		a.TradeID = t.ID
		_, err := g.c.Exec(ctx, `
			INSERT INTO trade_assets (id, trade_id, from_team_id, asset_kind, draft_pick_id, player_id,
				future_pick_season, future_pick_round)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			a.ID, a.TradeID, a.FromTeamID, a.AssetKind, a.DraftPickID, a.PlayerID, a.FuturePickSeason, a.FuturePickRound)
		if err != nil {
			return nil, ErrStorage("create trade asset", err)
		}
	}
	return t, nil
}

func (g *PostgresGateway) LoadTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error) {
	row := g.c.QueryRow(ctx, `
		SELECT id, league_id, initiator_team_id, receiver_team_id, status, proposed_at,
		       responded_at, processed_at, expires_at, forced_by_commissioner, commissioner_notes
		FROM trades WHERE id = $1`, tradeID)

	var t models.Trade
	err := row.Scan(&t.ID, &t.LeagueID, &t.InitiatorTeamID, &t.ReceiverTeamID, &t.Status, &t.ProposedAt,
		&t.RespondedAt, &t.ProcessedAt, &t.ExpiresAt, &t.ForcedByCommissioner, &t.CommissionerNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trade %s not found", tradeID)
	}
	if err != nil {
		return nil, ErrStorage("load trade", err)
	}

	rows, err := g.c.Query(ctx, `
		SELECT id, trade_id, from_team_id, asset_kind, draft_pick_id, player_id, future_pick_season, future_pick_round
		FROM trade_assets WHERE trade_id = $1`, tradeID)
	if err != nil {
		return nil, ErrStorage("load trade assets", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a models.TradeAsset
		if err := rows.Scan(&a.ID, &a.TradeID, &a.FromTeamID, &a.AssetKind, &a.DraftPickID, &a.PlayerID,
			&a.FuturePickSeason, &a.FuturePickRound); err != nil {
			return nil, ErrStorage("scan trade asset", err)
		}
		t.Assets = append(t.Assets, a)
	}
	return &t, rows.Err()
}

func (g *PostgresGateway) UpdateTradeStatus(ctx context.Context, params UpdateTradeStatusParams) error {
	_, err := g.c.Exec(ctx, `
		UPDATE trades SET status = $1, responded_at = $2, processed_at = $3,
			forced_by_commissioner = $4, commissioner_notes = $5 WHERE id = $6`,
		params.Status, params.RespondedAt, params.ProcessedAt, params.ForcedByCommissioner,
		params.CommissionerNotes, params.TradeID)
	if err != nil {
		return ErrStorage("update trade status", err)
	}
	return nil
}

func (g *PostgresGateway) ListPendingTrades(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error) {
	rows, err := g.c.Query(ctx, `SELECT id FROM trades WHERE league_id = $1 AND status = $2`,
		leagueID, models.TradeStatusPending)
	if err != nil {
		return nil, ErrStorage("list pending trades", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, ErrStorage("scan trade id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	var out []models.Trade
	for _, id := range ids {
		t, err := g.LoadTrade(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (g *PostgresGateway) CancelPendingTrades(ctx context.Context, leagueID uuid.UUID) error {
	now := time.Now()
	_, err := g.c.Exec(ctx, `UPDATE trades SET status = $1, responded_at = $2 WHERE league_id = $3 AND status = $4`,
		models.TradeStatusCancelled, now, leagueID, models.TradeStatusPending)
	if err != nil {
		return ErrStorage("cancel pending trades", err)
	}
	return nil
}

func (g *PostgresGateway) GetTeamQueue(ctx context.Context, teamID uuid.UUID) (*models.TeamQueue, error) {
	row := g.c.QueryRow(ctx, `SELECT player_ids FROM team_queues WHERE team_id = $1`, teamID)
	var ids []uuid.UUID
	if err := row.Scan(&ids); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.TeamQueue{TeamID: teamID}, nil
		}
		return nil, ErrStorage("get team queue", err)
	}
	return &models.TeamQueue{TeamID: teamID, PlayerIDs: ids}, nil
}

func (g *PostgresGateway) SetTeamQueue(ctx context.Context, teamID uuid.UUID, playerIDs []uuid.UUID) error {
	_, err := g.c.Exec(ctx, `
		INSERT INTO team_queues (team_id, player_ids) VALUES ($1, $2)
		ON CONFLICT (team_id) DO UPDATE SET player_ids = EXCLUDED.player_ids`, teamID, playerIDs)
	if err != nil {
		return ErrStorage("set team queue", err)
	}
	return nil
}

func (g *PostgresGateway) ListTeamQueues(ctx context.Context, leagueID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := g.c.Query(ctx, `
		SELECT q.team_id, q.player_ids FROM team_queues q
		JOIN fantasy_teams t ON t.id = q.team_id WHERE t.league_id = $1`, leagueID)
	if err != nil {
		return nil, ErrStorage("list team queues", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var teamID uuid.UUID
		var ids []uuid.UUID
		if err := rows.Scan(&teamID, &ids); err != nil {
			return nil, ErrStorage("scan team queue", err)
		}
		out[teamID] = ids
	}
	return out, rows.Err()
}

func (g *PostgresGateway) AppendActivity(ctx context.Context, params AppendActivityParams) error {
	_, err := g.c.Exec(ctx, `
		INSERT INTO activity_log (id, league_id, kind, actor_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`,
		uuid.New(), params.LeagueID, params.Kind, params.ActorID, params.Details)
	if err != nil {
		return ErrStorage("append activity", err)
	}
	return nil
}

func (g *PostgresGateway) AppendOutboxEvent(ctx context.Context, params AppendOutboxEventParams) error {
	_, err := g.c.Exec(ctx, `
		INSERT INTO outbox_events (id, league_id, event_type, payload, created_at)
		VALUES ($1,$2,$3,$4,now())`,
		uuid.New(), params.LeagueID, params.EventType, params.Payload)
	if err != nil {
		return ErrStorage("append outbox event", err)
	}
	return nil
}

func (g *PostgresGateway) FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := g.c.Query(ctx, `
		SELECT id, league_id, event_type, payload, created_at, sent_at
		FROM outbox_events WHERE sent_at IS NULL ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, ErrStorage("fetch unsent outbox", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.LeagueID, &e.EventType, &e.Payload, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, ErrStorage("scan outbox event", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (g *PostgresGateway) MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := g.c.Exec(ctx, `UPDATE outbox_events SET sent_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return ErrStorage("mark outbox sent", err)
	}
	return nil
}
