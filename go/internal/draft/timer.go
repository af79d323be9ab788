package draft

import (
	"context"
	"time"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// restartTimer cancels any running timer and starts a fresh one counting
// down from durationSec, per §4.3. The timer is strictly internal: it
// never mutates DraftState directly, only enqueues onExpire onto the
// Coordinator's serial queue.
func (c *Coordinator) restartTimer(durationSec int) {
	c.cancelTimer()
	if durationSec <= 0 {
		durationSec = 0
	}

	c.timerMu.Lock()
	c.timerGen++
	gen := c.timerGen
	stop := make(chan struct{})
	c.timerCh = stop
	c.timerMu.Unlock()

	go c.runTimer(gen, stop, durationSec)
}

// cancelTimer stops any running timer goroutine synchronously; a
// cancellation never leaves a pending onExpire visible to clients (§5).
func (c *Coordinator) cancelTimer() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timerCh != nil {
		close(c.timerCh)
		c.timerCh = nil
	}
	c.timerGen++
}

func (c *Coordinator) runTimer(gen int, stop chan struct{}, remaining int) {
	ticker := c.clock.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ticks := 0
	for remaining > 0 {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			remaining--
			ticks++

			c.timerMu.Lock()
			current := c.timerGen
			c.timerMu.Unlock()
			if current != gen {
				return
			}

			state := c.cachedState()
			if state != nil && state.CurrentTeamID != nil {
				c.broadcast(events.EventTimerTick, events.TimerTickPayload{
					SecondsRemaining: remaining, CurrentPick: state.CurrentPick, CurrentTeamID: *state.CurrentTeamID,
				})
			}
			if ticks%10 == 0 {
				c.persistTimerRemaining(remaining)
			}
		}
	}

	select {
	case <-stop:
		return
	default:
	}

	ctx := context.Background()
	c.submit(ctx, func(ctx context.Context) {
		c.timerMu.Lock()
		current := c.timerGen
		c.timerMu.Unlock()
		if current != gen {
			return
		}
		c.onExpire(ctx)
	})
}

func (c *Coordinator) persistTimerRemaining(remaining int) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state == nil {
		return
	}
	state.TimerSecondsRemaining = &remaining
	ctx := context.Background()
	_ = c.gw.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: state})
}

// onExpire implements §4.3 onExpire: emit TimerExpired, compute the
// best-available player, and invoke makePick on behalf of the team on
// the clock. An empty pool auto-pauses rather than calling makePick with
// no player (§9 open question 3).
func (c *Coordinator) onExpire(ctx context.Context) {
	state, err := c.loadState(ctx)
	if err != nil || state.Status != models.DraftStatusInProgress || state.IsPaused || state.CurrentTeamID == nil {
		return
	}

	c.broadcast(events.EventTimerExpired, state)
	_ = c.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: c.leagueID, Kind: models.ActivityTimerExpired})

	best, err := c.bestAvailablePlayer(ctx)
	if err != nil || best == nil {
		reason := "no available players"
		state.IsPaused = true
		state.PauseReason = &reason
		state.TimerStartedAt = nil
		zero := 0
		state.TimerSecondsRemaining = &zero
		_ = c.persist(ctx, state)
		c.broadcast(events.EventStaleWarning, events.DraftPausedPayload{Reason: reason})
		return
	}

	_ = c.makePick(ctx, *state.CurrentTeamID, best.ID, true, true)
}

// bestAvailablePlayer finds the highest-ranked (ascending, nulls last)
// available player, breaking ties by ascending playerId (§4.3).
func (c *Coordinator) bestAvailablePlayer(ctx context.Context) (*models.Player, error) {
	players, err := c.gw.ListAvailablePlayers(ctx, c.leagueID, 1)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, nil
	}
	return &players[0], nil
}
