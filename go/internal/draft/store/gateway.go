// Package store is the Persistence Gateway (C7): the sole abstraction
// through which the draft core touches durable state (spec §4.7, §6).
// Grounded on the teacher's sqlc-shaped repository pattern
// (draft/repository/draftpick_repository.go, draft/pick/repository.go)
// — explicit param structs, one method per query, a generic transaction
// helper — adapted to a single Gateway interface with two
// implementations: PostgresGateway for production, MemoryGateway for
// tests and local/dev runs without Postgres.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// UpsertDraftStateParams carries the full DraftState row on every write;
// the Gateway always writes the whole row since the Coordinator holds the
// only in-memory copy and invalidates it after every call (§5 shared
// resource policy).
type UpsertDraftStateParams struct {
	State *models.DraftState
}

// UpdatePickSelectionParams completes a pick (PlayerID and SelectedAt
// set, IsComplete true) or un-completes it (both nil, IsComplete false).
// The matching roster entry is written by a separate CreateRosterEntry or
// DeleteRosterEntry call in the same transaction.
type UpdatePickSelectionParams struct {
	PickID     uuid.UUID
	PlayerID   *uuid.UUID
	SelectedAt *time.Time
	IsComplete bool
}

// CreateRosterEntryParams mirrors models.RosterEntry minus generated
// fields.
type CreateRosterEntryParams struct {
	LeagueID    uuid.UUID
	TeamID      uuid.UUID
	PlayerID    uuid.UUID
	IsKeeper    bool
	KeeperRound *int
	AcquiredVia models.AcquisitionType
}

// MoveRosterEntryParams reassigns an existing roster entry to a new team
// (trade settlement) while preserving IsKeeper (§4.4 step 3).
type MoveRosterEntryParams struct {
	LeagueID   uuid.UUID
	PlayerID   uuid.UUID
	NewTeamID  uuid.UUID
	AcquiredVia models.AcquisitionType
}

// CreateTradeParams is the pure-write proposal shape (§4.4 "propose").
type CreateTradeParams struct {
	LeagueID        uuid.UUID
	InitiatorTeamID uuid.UUID
	ReceiverTeamID  uuid.UUID
	ExpiresAt       time.Time
	Assets          []models.TradeAsset
}

// UpdateTradeStatusParams stamps a trade's terminal or in-flight status.
type UpdateTradeStatusParams struct {
	TradeID              uuid.UUID
	Status               models.TradeStatus
	RespondedAt          *time.Time
	ProcessedAt          *time.Time
	ForcedByCommissioner bool
	CommissionerNotes    *string
}

// AppendActivityParams is a single ActivityLog insert.
type AppendActivityParams struct {
	LeagueID uuid.UUID
	Kind     models.ActivityKind
	ActorID  *uuid.UUID
	Details  []byte
}

// AppendOutboxEventParams is a single outbox row. For picks, undo, reset
// and trade acceptance it is written in the same transaction as the state
// mutation that produced it, so the NATS relay never publishes those
// events without their write having committed; the other events are
// appended right after their write (§4.8 outbox-backed durability).
type AppendOutboxEventParams struct {
	LeagueID  uuid.UUID
	EventType string
	Payload   []byte
}

// OutboxEvent is an unsent (or recently sent) outbox row.
type OutboxEvent struct {
	ID        uuid.UUID
	LeagueID  uuid.UUID
	EventType string
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time
}

// FuturePickRef identifies a possibly-virtual future pick by its
// (season, round, originalOwner) triple — the source's synthetic
// FUTURE_PICK:originalOwner:season:round identity (§9 open question 2).
type FuturePickRef struct {
	Season             string
	Round              int
	OriginalOwnerTeamID uuid.UUID
}

// Gateway is the transactional data-access abstraction every Coordinator,
// Trade Engine, and Snapshot Builder call through. Implementation-free
// contract per spec §6; the method set includes every operation
// enumerated there, plus the further league, pick, trade, queue and
// outbox reads and writes the core uses.
type Gateway interface {
	GetDraftState(ctx context.Context, leagueID uuid.UUID) (*models.DraftState, error)
	UpsertDraftState(ctx context.Context, params UpsertDraftStateParams) error

	ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error)
	SetDraftPositions(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID) error

	GetLeague(ctx context.Context, leagueID uuid.UUID) (*models.League, error)

	GetPick(ctx context.Context, pickID uuid.UUID) (*models.DraftPick, error)
	GetPickByOverall(ctx context.Context, leagueID uuid.UUID, season string, overall int) (*models.DraftPick, error)
	ListPicks(ctx context.Context, leagueID uuid.UUID, season string) ([]models.DraftPick, error)
	UpdatePickSelection(ctx context.Context, params UpdatePickSelectionParams) error
	SetPickOwner(ctx context.Context, pickID, newOwnerTeamID uuid.UUID) error
	DeleteFuturePicks(ctx context.Context, leagueID uuid.UUID, currentSeason string) error
	RegenerateCurrentSeasonPicks(ctx context.Context, leagueID uuid.UUID, season string, teamIDsInOrder []uuid.UUID, draftType models.DraftType, totalRounds int) error
	GetOrMaterializeFuturePick(ctx context.Context, leagueID uuid.UUID, ref FuturePickRef) (*models.DraftPick, error)

	CreateRosterEntry(ctx context.Context, params CreateRosterEntryParams) (*models.RosterEntry, error)
	DeleteRosterEntry(ctx context.Context, leagueID, playerID uuid.UUID) error
	GetRosterEntryByPlayer(ctx context.Context, leagueID, playerID uuid.UUID) (*models.RosterEntry, error)
	MoveRosterEntry(ctx context.Context, params MoveRosterEntryParams) error
	ListRosterEntries(ctx context.Context, leagueID uuid.UUID) ([]models.RosterEntry, error)
	DeleteNonKeeperRosterEntries(ctx context.Context, leagueID uuid.UUID) error

	ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID, limit int) ([]models.Player, error)
	GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error)

	CreateTrade(ctx context.Context, params CreateTradeParams) (*models.Trade, error)
	LoadTrade(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error)
	UpdateTradeStatus(ctx context.Context, params UpdateTradeStatusParams) error
	ListPendingTrades(ctx context.Context, leagueID uuid.UUID) ([]models.Trade, error)
	CancelPendingTrades(ctx context.Context, leagueID uuid.UUID) error

	GetTeamQueue(ctx context.Context, teamID uuid.UUID) (*models.TeamQueue, error)
	SetTeamQueue(ctx context.Context, teamID uuid.UUID, playerIDs []uuid.UUID) error
	ListTeamQueues(ctx context.Context, leagueID uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	AppendActivity(ctx context.Context, params AppendActivityParams) error

	AppendOutboxEvent(ctx context.Context, params AppendOutboxEventParams) error
	FetchUnsentOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error

	// RunInTransaction executes fn with a Gateway bound to a single
	// transaction; all calls fn makes through the supplied Gateway are
	// part of that transaction. Required isolation is ≥ read-committed,
	// with row locks (or equivalent) on affected picks/roster rows during
	// pick selection and trade swaps (§4.7).
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Gateway) error) error
}
