// Package draft implements the authoritative per-league draft core:
// Coordinator Registry (C1), Draft Coordinator (C2), Pick Scheduler +
// Timer (C3), Trade Engine (C4), and Snapshot Builder (C6), wired
// against the Persistence Gateway (C7, internal/draft/store).
//
// Grounded on the teacher's Orchestrator (draft/orchestrator/orchestrator.go):
// a Clock abstraction for deterministic tests, a serial processing loop
// driven by an internal channel, and timer expiry re-entering that same
// loop rather than mutating state from its own goroutine. Generalized
// from one process-wide loop to one serial queue per league, because the
// spec requires per-league serialization (§5), not a single global one.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/pickgen"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// Broadcaster is the Coordinator's view of the Subscription Hub (C5): fan
// out an authoritative event to every session in a league's room. Kept as
// an interface here (rather than importing the hub package) so hub can
// depend on draft without a cycle.
type Broadcaster interface {
	Broadcast(leagueID uuid.UUID, env events.Envelope)
}

// job is one unit of work on a Coordinator's serial queue: client intents,
// timer expiries, and trade reconciliations all become a job so that
// exactly one mutates DraftState at a time (§5).
type job struct {
	run  func(ctx context.Context)
	done chan struct{}
}

// Coordinator is the per-league FSM and single writer of its DraftState
// (C2). All mutating operations enqueue a job and block until it runs;
// the run itself may suspend on Gateway calls and broadcast sends, the
// only permitted suspension points inside the serial queue (§5).
type Coordinator struct {
	leagueID uuid.UUID
	gw       store.Gateway
	clock    clockwork.Clock
	bus      Broadcaster
	log      zerolog.Logger

	queue chan job
	stopC chan struct{}
	wg    sync.WaitGroup

	mu    sync.Mutex
	state *models.DraftState

	timerMu  sync.Mutex
	timerGen int
	timerCh  chan struct{}
}

// NewCoordinator constructs a Coordinator for leagueID and starts its
// serial-queue goroutine. Callers obtain one through Registry.Acquire
// rather than calling this directly.
func NewCoordinator(leagueID uuid.UUID, gw store.Gateway, clock clockwork.Clock, bus Broadcaster, log zerolog.Logger) *Coordinator {
	c := &Coordinator{
		leagueID: leagueID,
		gw:       gw,
		clock:    clock,
		bus:      bus,
		log:      log.With().Str("league_id", leagueID.String()).Logger(),
		queue:    make(chan job, 64),
		stopC:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *Coordinator) loop() {
	defer c.wg.Done()
	ctx := context.Background()
	for {
		select {
		case j := <-c.queue:
			j.run(ctx)
			close(j.done)
		case <-c.stopC:
			return
		}
	}
}

// Stop cancels any running timer and stops the serial-queue goroutine;
// jobs still waiting in the queue are not run. Called by the Registry on
// eviction (§4.1).
func (c *Coordinator) Stop() {
	c.cancelTimer()
	close(c.stopC)
	c.wg.Wait()
}

// submit enqueues fn and blocks until it has run on the serial queue.
func (c *Coordinator) submit(ctx context.Context, fn func(ctx context.Context)) {
	j := job{run: fn, done: make(chan struct{})}
	select {
	case c.queue <- j:
	case <-ctx.Done():
		return
	}
	select {
	case <-j.done:
	case <-ctx.Done():
	}
}

func (c *Coordinator) broadcast(typ events.Type, payload interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Broadcast(c.leagueID, events.NewEnvelope(c.leagueID, typ, payload))
}

// writeOutbox records a domain event for the JetStream relay (§4.8).
// Called with tx whenever a transaction is already open so the outbox
// row commits atomically with the mutation it describes; called with
// c.gw for the handful of paths (startDraft, pauseDraft, resumeDraft)
// that persist DraftState directly without a transaction.
func (c *Coordinator) writeOutbox(ctx context.Context, gw store.Gateway, typ events.Type, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to marshal outbox payload")
		return
	}
	if err := gw.AppendOutboxEvent(ctx, store.AppendOutboxEventParams{
		LeagueID: c.leagueID, EventType: string(typ), Payload: data,
	}); err != nil {
		c.log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to append outbox event")
	}
}

// HasLiveTimer reports whether a timer is currently running, used by the
// Registry's eviction check (§4.1: subscribers==0 AND timerStartedAt==∅).
func (c *Coordinator) HasLiveTimer() bool {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	return c.timerCh != nil
}

// loadState fetches the current DraftState from the Gateway, refreshing
// the Coordinator's cache (§5: caches are invalidated at the end of every
// write; this is the re-fetch path for readers that missed).
func (c *Coordinator) loadState(ctx context.Context) (*models.DraftState, error) {
	s, err := c.gw.GetDraftState(ctx, c.leagueID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	return s, nil
}

func (c *Coordinator) cachedState() *models.DraftState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil
	}
	return c.state.Clone()
}

// Snapshot returns the Coordinator's best-known DraftState without
// touching the serial queue — safe to call concurrently with writes
// since it only reads the last-persisted copy (§5 read-only snapshot
// builds may run in parallel with writes).
func (c *Coordinator) Snapshot(ctx context.Context) (*models.DraftState, error) {
	if s := c.cachedState(); s != nil {
		return s, nil
	}
	return c.loadState(ctx)
}

// --- 4.2 Draft Coordinator public operations ---

// StartDraft requires status NOT_STARTED. isCommissioner gates the call
// at the Hub normally (§4.5 authorization table), but the Coordinator
// re-checks FSM validity regardless of caller.
func (c *Coordinator) StartDraft(ctx context.Context) error {
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.startDraft(ctx)
	})
	return opErr
}

func (c *Coordinator) startDraft(ctx context.Context) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if state.Status != models.DraftStatusNotStarted {
		return ErrInvalidState("startDraft requires NOT_STARTED")
	}

	league, err := c.gw.GetLeague(ctx, c.leagueID)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	firstPick, err := c.gw.GetPickByOverall(ctx, c.leagueID, league.Season, 1)
	if err != nil {
		return ErrValidationFailed("pick #1 does not exist; set the draft order first")
	}

	now := c.clock.Now()
	remaining := league.LeagueSettings.TimerDurationSec
	state.Status = models.DraftStatusInProgress
	state.CurrentRound = firstPick.Round
	state.CurrentPick = firstPick.OverallPickNumber
	owner := firstPick.CurrentOwnerTeamID
	state.CurrentTeamID = &owner
	state.TimerStartedAt = &now
	state.TimerSecondsRemaining = &remaining
	state.StartedAt = &now
	state.LastActivityAt = now

	if err := c.persist(ctx, state); err != nil {
		return err
	}
	c.appendActivity(ctx, models.ActivityDraftStarted, nil)
	c.writeOutbox(ctx, c.gw, events.EventDraftStarted, state)

	c.broadcast(events.EventDraftStarted, state)
	c.emitOnTheClock(state, remaining)
	c.restartTimer(remaining)
	return nil
}

// PauseDraft requires IN_PROGRESS && !isPaused.
func (c *Coordinator) PauseDraft(ctx context.Context, reason string) error {
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.pauseDraft(ctx, reason)
	})
	return opErr
}

func (c *Coordinator) pauseDraft(ctx context.Context, reason string) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if state.Status != models.DraftStatusInProgress || state.IsPaused {
		return ErrInvalidState("pauseDraft requires IN_PROGRESS and not already paused")
	}

	residual := c.residualSeconds(state)
	c.cancelTimer()

	state.IsPaused = true
	state.PauseReason = &reason
	state.TimerStartedAt = nil
	state.TimerSecondsRemaining = &residual
	state.LastActivityAt = c.clock.Now()
	// undoAvailable only survives until the next state-changing event;
	// a pause/resume cycle invalidates whatever pick it was guarding.
	state.UndoAvailable = false
	state.LastPickID = nil

	if err := c.persist(ctx, state); err != nil {
		return err
	}
	pausedPayload := events.DraftPausedPayload{Reason: reason}
	c.writeOutbox(ctx, c.gw, events.EventDraftPaused, pausedPayload)
	c.broadcast(events.EventDraftPaused, pausedPayload)
	return nil
}

// residualSeconds computes max(0, timerSecondsRemaining - elapsedSince(timerStartedAt)).
func (c *Coordinator) residualSeconds(state *models.DraftState) int {
	if state.TimerSecondsRemaining == nil {
		return 0
	}
	remaining := *state.TimerSecondsRemaining
	if state.TimerStartedAt != nil {
		elapsed := int(c.clock.Now().Sub(*state.TimerStartedAt).Seconds())
		remaining -= elapsed
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResumeDraft requires IN_PROGRESS && isPaused.
func (c *Coordinator) ResumeDraft(ctx context.Context) error {
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.resumeDraft(ctx)
	})
	return opErr
}

func (c *Coordinator) resumeDraft(ctx context.Context) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if state.Status != models.DraftStatusInProgress || !state.IsPaused {
		return ErrInvalidState("resumeDraft requires IN_PROGRESS and paused")
	}

	now := c.clock.Now()
	state.IsPaused = false
	state.PauseReason = nil
	state.TimerStartedAt = &now
	state.LastActivityAt = now
	state.UndoAvailable = false
	state.LastPickID = nil
	residual := 0
	if state.TimerSecondsRemaining != nil {
		residual = *state.TimerSecondsRemaining
	}

	if err := c.persist(ctx, state); err != nil {
		return err
	}
	c.writeOutbox(ctx, c.gw, events.EventDraftResumed, state)
	c.broadcast(events.EventDraftResumed, state)
	c.restartTimer(residual)
	return nil
}

// MakePick implements §4.2 makePick. callerTeamID is the acting session's
// team (authorization is primarily enforced at the Hub, §4.5; the
// Coordinator re-checks turn ownership regardless).
func (c *Coordinator) MakePick(ctx context.Context, callerTeamID uuid.UUID, playerID uuid.UUID, isCommissioner bool) error {
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.makePick(ctx, callerTeamID, playerID, isCommissioner, false)
	})
	return opErr
}

// ForcePick is the commissioner-only shortcut calling makePick(currentTeamId, playerId).
func (c *Coordinator) ForcePick(ctx context.Context, playerID uuid.UUID, isCommissioner bool) error {
	if !isCommissioner {
		return ErrUnauthorized("forcePick requires commissioner")
	}
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		state, err := c.loadState(ctx)
		if err != nil {
			opErr = ErrStorageError(err.Error())
			return
		}
		if state.CurrentTeamID == nil {
			opErr = ErrInvalidState("no team currently on the clock")
			return
		}
		opErr = c.makePick(ctx, *state.CurrentTeamID, playerID, true, false)
	})
	return opErr
}

func (c *Coordinator) makePick(ctx context.Context, callerTeamID, playerID uuid.UUID, isCommissioner, isAutoPick bool) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if state.Status != models.DraftStatusInProgress || state.IsPaused {
		return ErrInvalidState("makePick requires IN_PROGRESS and not paused")
	}
	if state.CurrentTeamID == nil {
		return ErrInvalidState("no team currently on the clock")
	}
	if !isCommissioner && callerTeamID != *state.CurrentTeamID {
		return ErrNotYourTurn("it is not this team's turn")
	}

	league, err := c.gw.GetLeague(ctx, c.leagueID)
	if err != nil {
		return ErrStorageError(err.Error())
	}

	currentPick, err := c.gw.GetPickByOverall(ctx, c.leagueID, league.Season, state.CurrentPick)
	if err != nil {
		return ErrStorageError(err.Error())
	}

	var nextState *models.DraftState
	txErr := c.gw.RunInTransaction(ctx, func(ctx context.Context, tx store.Gateway) error {
		if _, err := tx.GetRosterEntryByPlayer(ctx, c.leagueID, playerID); err == nil {
			return ErrPlayerUnavailable("player already rostered in this league")
		}
		picks, err := tx.ListPicks(ctx, c.leagueID, league.Season)
		if err != nil {
			return ErrStorageError(err.Error())
		}
		for _, p := range picks {
			if p.IsComplete && p.SelectedPlayerID != nil && *p.SelectedPlayerID == playerID {
				return ErrPlayerUnavailable("player already drafted in this league")
			}
		}

		now := c.clock.Now()
		if err := tx.UpdatePickSelection(ctx, store.UpdatePickSelectionParams{
			PickID: currentPick.ID, PlayerID: &playerID, SelectedAt: &now, IsComplete: true,
		}); err != nil {
			if store.IsUniqueViolation(err) || store.IsSerializationFailure(err) {
				return ErrPlayerUnavailable("player already drafted in this league")
			}
			return ErrStorageError(err.Error())
		}
		if _, err := tx.CreateRosterEntry(ctx, store.CreateRosterEntryParams{
			LeagueID: c.leagueID, TeamID: *state.CurrentTeamID, PlayerID: playerID,
			AcquiredVia: models.AcquisitionTypeDrafted,
		}); err != nil {
			if store.IsUniqueViolation(err) || store.IsSerializationFailure(err) {
				return ErrPlayerUnavailable("player already rostered in this league")
			}
			return ErrStorageError(err.Error())
		}

		next := findNextUncompletedPick(picks, currentPick.OverallPickNumber)
		ns := state.Clone()
		ns.LastPickID = &currentPick.ID
		ns.UndoAvailable = true
		ns.LastActivityAt = now
		if next != nil {
			ns.CurrentPick = next.OverallPickNumber
			ns.CurrentRound = next.Round
			owner := next.CurrentOwnerTeamID
			ns.CurrentTeamID = &owner
			ns.TimerStartedAt = &now
			remaining := league.LeagueSettings.TimerDurationSec
			ns.TimerSecondsRemaining = &remaining
		} else {
			ns.Status = models.DraftStatusCompleted
			ns.CompletedAt = &now
		}
		if err := tx.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: ns}); err != nil {
			return ErrStorageError(err.Error())
		}
		kind := models.ActivityPickMade
		if isAutoPick {
			kind = models.ActivityAutoPick
		}
		_ = tx.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: kind})
		pickMadePayload := events.PickMadePayload{
			PickID: currentPick.ID, PlayerID: playerID, TeamID: *state.CurrentTeamID,
			PickNumber: currentPick.OverallPickNumber, Round: currentPick.Round,
		}
		c.writeOutbox(ctx, tx, events.EventPickMade, pickMadePayload)
		nextState = ns
		return nil
	})
	if txErr != nil {
		if store.IsSerializationFailure(txErr) {
			return ErrPlayerUnavailable("player already drafted in this league")
		}
		return AsCoreError(txErr)
	}

	c.mu.Lock()
	c.state = nextState
	c.mu.Unlock()

	c.broadcast(events.EventPickMade, events.PickMadePayload{
		PickID: currentPick.ID, PlayerID: playerID, TeamID: *state.CurrentTeamID,
		PickNumber: currentPick.OverallPickNumber, Round: currentPick.Round,
	})
	if nextState.Status == models.DraftStatusCompleted {
		c.cancelTimer()
		c.broadcast(events.EventDraftComplete, nextState)
	} else {
		remaining := 0
		if nextState.TimerSecondsRemaining != nil {
			remaining = *nextState.TimerSecondsRemaining
		}
		c.emitOnTheClock(nextState, remaining)
		c.restartTimer(remaining)
	}
	return nil
}

func findNextUncompletedPick(picks []models.DraftPick, afterOverall int) *models.DraftPick {
	var best *models.DraftPick
	for i := range picks {
		p := &picks[i]
		if p.IsComplete || p.OverallPickNumber <= afterOverall {
			continue
		}
		if best == nil || p.OverallPickNumber < best.OverallPickNumber {
			best = p
		}
	}
	return best
}

// UndoLastPick is commissioner-only and requires undoAvailable.
func (c *Coordinator) UndoLastPick(ctx context.Context, isCommissioner bool) error {
	if !isCommissioner {
		return ErrUnauthorized("undoLastPick requires commissioner")
	}
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.undoLastPick(ctx)
	})
	return opErr
}

func (c *Coordinator) undoLastPick(ctx context.Context) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if !state.UndoAvailable || state.LastPickID == nil {
		return ErrInvalidState("no pick available to undo")
	}

	pick, err := c.gw.GetPick(ctx, *state.LastPickID)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if pick.SelectedPlayerID == nil {
		return ErrInvalidState("last pick has no selection to undo")
	}

	txErr := c.gw.RunInTransaction(ctx, func(ctx context.Context, tx store.Gateway) error {
		if err := tx.DeleteRosterEntry(ctx, c.leagueID, *pick.SelectedPlayerID); err != nil {
			return ErrStorageError(err.Error())
		}
		if err := tx.UpdatePickSelection(ctx, store.UpdatePickSelectionParams{
			PickID: pick.ID, PlayerID: nil, SelectedAt: nil, IsComplete: false,
		}); err != nil {
			return ErrStorageError(err.Error())
		}

		now := c.clock.Now()
		ns := state.Clone()
		ns.Status = models.DraftStatusInProgress
		ns.CurrentPick = pick.OverallPickNumber
		ns.CurrentRound = pick.Round
		owner := pick.CurrentOwnerTeamID
		ns.CurrentTeamID = &owner
		ns.UndoAvailable = false
		ns.CompletedAt = nil
		ns.TimerStartedAt = &now
		league, err := tx.GetLeague(ctx, c.leagueID)
		if err != nil {
			return ErrStorageError(err.Error())
		}
		remaining := league.LeagueSettings.TimerDurationSec
		ns.TimerSecondsRemaining = &remaining
		ns.LastActivityAt = now
		if err := tx.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: ns}); err != nil {
			return ErrStorageError(err.Error())
		}
		_ = tx.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: models.ActivityPickUndone})
		c.writeOutbox(ctx, tx, events.EventPickUndone, ns)

		c.mu.Lock()
		c.state = ns
		c.mu.Unlock()
		return nil
	})
	if txErr != nil {
		return AsCoreError(txErr)
	}

	s := c.cachedState()
	c.broadcast(events.EventPickUndone, s)
	remaining := 0
	if s.TimerSecondsRemaining != nil {
		remaining = *s.TimerSecondsRemaining
	}
	c.emitOnTheClock(s, remaining)
	c.restartTimer(remaining)
	return nil
}

// ResetDraft is commissioner-only.
func (c *Coordinator) ResetDraft(ctx context.Context, isCommissioner bool) error {
	if !isCommissioner {
		return ErrUnauthorized("resetDraft requires commissioner")
	}
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.resetDraft(ctx)
	})
	return opErr
}

func (c *Coordinator) resetDraft(ctx context.Context) error {
	c.cancelTimer()
	league, err := c.gw.GetLeague(ctx, c.leagueID)
	if err != nil {
		return ErrStorageError(err.Error())
	}

	txErr := c.gw.RunInTransaction(ctx, func(ctx context.Context, tx store.Gateway) error {
		if err := tx.DeleteFuturePicks(ctx, c.leagueID, league.Season); err != nil {
			return ErrStorageError(err.Error())
		}
		picks, err := tx.ListPicks(ctx, c.leagueID, league.Season)
		if err != nil {
			return ErrStorageError(err.Error())
		}
		for _, p := range picks {
			if err := tx.SetPickOwner(ctx, p.ID, p.OriginalOwnerTeamID); err != nil {
				return ErrStorageError(err.Error())
			}
			if err := tx.UpdatePickSelection(ctx, store.UpdatePickSelectionParams{
				PickID: p.ID, PlayerID: nil, SelectedAt: nil, IsComplete: false,
			}); err != nil {
				return ErrStorageError(err.Error())
			}
		}
		if err := tx.DeleteNonKeeperRosterEntries(ctx, c.leagueID); err != nil {
			return ErrStorageError(err.Error())
		}
		if err := tx.CancelPendingTrades(ctx, c.leagueID); err != nil {
			return ErrStorageError(err.Error())
		}

		now := c.clock.Now()
		ns := &models.DraftState{
			LeagueID:       c.leagueID,
			Status:         models.DraftStatusNotStarted,
			UndoAvailable:  false,
			LastActivityAt: now,
		}
		if err := tx.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: ns}); err != nil {
			return ErrStorageError(err.Error())
		}
		_ = tx.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: models.ActivityDraftReset})
		c.writeOutbox(ctx, tx, events.EventDraftReset, ns)

		c.mu.Lock()
		c.state = ns
		c.mu.Unlock()
		return nil
	})
	if txErr != nil {
		return AsCoreError(txErr)
	}
	c.broadcast(events.EventDraftReset, c.cachedState())
	return nil
}

// SetDraftOrder is allowed when NOT_STARTED or PAUSED.
func (c *Coordinator) SetDraftOrder(ctx context.Context, teamIDsInOrder []uuid.UUID, isCommissioner bool) error {
	if !isCommissioner {
		return ErrUnauthorized("setDraftOrder requires commissioner")
	}
	var opErr error
	c.submit(ctx, func(ctx context.Context) {
		opErr = c.setDraftOrder(ctx, teamIDsInOrder)
	})
	return opErr
}

func (c *Coordinator) setDraftOrder(ctx context.Context, teamIDsInOrder []uuid.UUID) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	paused := state.Status == models.DraftStatusPaused ||
		(state.Status == models.DraftStatusInProgress && state.IsPaused)
	if state.Status != models.DraftStatusNotStarted && !paused {
		return ErrInvalidState("setDraftOrder requires NOT_STARTED or PAUSED")
	}

	teams, err := c.gw.ListTeams(ctx, c.leagueID)
	if err != nil {
		return ErrStorageError(err.Error())
	}
	if err := validatePermutation(teamIDsInOrder, teams); err != nil {
		return ErrValidationFailed(err.Error())
	}

	txErr := c.gw.RunInTransaction(ctx, func(ctx context.Context, tx store.Gateway) error {
		if err := tx.SetDraftPositions(ctx, c.leagueID, teamIDsInOrder); err != nil {
			return ErrStorageError(err.Error())
		}
		if state.Status == models.DraftStatusNotStarted {
			league, err := tx.GetLeague(ctx, c.leagueID)
			if err != nil {
				return ErrStorageError(err.Error())
			}
			if err := tx.RegenerateCurrentSeasonPicks(ctx, c.leagueID, league.Season, teamIDsInOrder,
				league.LeagueSettings.DraftType, league.LeagueSettings.TotalRounds); err != nil {
				return ErrStorageError(err.Error())
			}
		}
		_ = tx.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: models.ActivityOrderUpdated})
		return nil
	})
	if txErr != nil {
		return AsCoreError(txErr)
	}
	return nil
}

func validatePermutation(order []uuid.UUID, teams []models.FantasyTeam) error {
	if len(order) != len(teams) {
		return fmt.Errorf("draft order must list exactly %d teams, got %d", len(teams), len(order))
	}
	known := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if !known[id] {
			return fmt.Errorf("team %s is not in this league", id)
		}
		if seen[id] {
			return fmt.Errorf("team %s appears more than once in draft order", id)
		}
		seen[id] = true
	}
	return nil
}

func (c *Coordinator) persist(ctx context.Context, state *models.DraftState) error {
	if err := c.gw.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: state}); err != nil {
		return ErrStorageError(err.Error())
	}
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) appendActivity(ctx context.Context, kind models.ActivityKind, actor *uuid.UUID) {
	_ = c.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: kind, ActorID: actor})
}

func (c *Coordinator) emitOnTheClock(state *models.DraftState, timerDuration int) {
	if state.CurrentTeamID == nil {
		return
	}
	started := c.clock.Now()
	if state.TimerStartedAt != nil {
		started = *state.TimerStartedAt
	}
	c.broadcast(events.EventOnTheClock, events.OnTheClockPayload{
		TeamID: *state.CurrentTeamID, PickNumber: state.CurrentPick, Round: state.CurrentRound,
		TimerDuration: timerDuration, TimerStartedAt: started,
	})
}

// reconcileCurrentTeam re-reads the DB-authoritative owner of the current
// pick and, if it differs from the cached CurrentTeamID, updates it and
// resets the timer to the full duration; OnTheClock is emitted and the
// timer restarted only when the draft is not paused. Run on the serial
// queue by the Trade Engine after an ownership swap may have changed
// whose turn it is (§4.4).
func (c *Coordinator) reconcileCurrentTeam(ctx context.Context) error {
	state, err := c.loadState(ctx)
	if err != nil {
		return err
	}
	if state.Status != models.DraftStatusInProgress {
		return nil
	}
	league, err := c.gw.GetLeague(ctx, c.leagueID)
	if err != nil {
		return err
	}
	pick, err := c.gw.GetPickByOverall(ctx, c.leagueID, league.Season, state.CurrentPick)
	if err != nil {
		return err
	}
	if state.CurrentTeamID != nil && *state.CurrentTeamID == pick.CurrentOwnerTeamID {
		return nil
	}

	now := c.clock.Now()
	owner := pick.CurrentOwnerTeamID
	state.CurrentTeamID = &owner
	remaining := league.LeagueSettings.TimerDurationSec
	state.TimerSecondsRemaining = &remaining
	state.TimerStartedAt = &now
	if err := c.persist(ctx, state); err != nil {
		return err
	}
	if !state.IsPaused {
		c.emitOnTheClock(state, remaining)
		c.restartTimer(remaining)
	}
	return nil
}
