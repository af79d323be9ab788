package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/draft/store"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// writeOutboxEvent records a domain event for the JetStream relay (§4.8).
// Marshal/append failures are swallowed the same way AppendActivity's are
// here, so a failed outbox write never fails the trade operation that
// produced it; a dropped outbox row only costs a subscriber a StateSync
// reconciliation rather than correctness.
func writeOutboxEvent(ctx context.Context, gw store.Gateway, leagueID uuid.UUID, typ events.Type, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = gw.AppendOutboxEvent(ctx, store.AppendOutboxEventParams{LeagueID: leagueID, EventType: string(typ), Payload: data})
}

// defaultTradeOfferTTL is how long a proposed trade stays PENDING before
// AcceptTrade starts refusing it as expired (§4.4).
const defaultTradeOfferTTL = 48 * time.Hour

// TradeEngine implements the two-phase trade workflow of §4.4: a
// pure-write proposal, and an atomic accept that re-validates and swaps
// every asset before reconciling the Coordinator's notion of who is on
// the clock. New relative to the teacher (whose only trade trace is the
// AcquisitionTypeTrade roster tag) but built on its three-layer
// app/service/repository shape (draft/pick/{app,service,repository}.go)
// collapsed here into one Engine over the shared Gateway.
type TradeEngine struct {
	gw       store.Gateway
	registry *Registry
	clock    clockwork.Clock
}

func NewTradeEngine(gw store.Gateway, registry *Registry, clock clockwork.Clock) *TradeEngine {
	return &TradeEngine{gw: gw, registry: registry, clock: clock}
}

// ProposeTrade is a pure write: no ownership changes happen until accept.
func (e *TradeEngine) ProposeTrade(ctx context.Context, leagueID, initiatorTeamID, receiverTeamID uuid.UUID, assets []models.TradeAsset) (*models.Trade, error) {
	expiresAt := e.clock.Now().Add(defaultTradeOfferTTL)
	trade, err := e.gw.CreateTrade(ctx, store.CreateTradeParams{
		LeagueID: leagueID, InitiatorTeamID: initiatorTeamID, ReceiverTeamID: receiverTeamID,
		ExpiresAt: expiresAt, Assets: assets,
	})
	if err != nil {
		return nil, ErrStorageError(err.Error())
	}
	_ = e.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: leagueID, Kind: models.ActivityTradeProposed})
	writeOutboxEvent(ctx, e.gw, leagueID, events.EventTradeProposed, trade)
	if c, ok := e.registry.Peek(leagueID); ok {
		c.broadcast(events.EventTradeProposed, trade)
	}
	return trade, nil
}

// AcceptTrade runs the full §4.4 accept flow inside one transaction, then
// reconciles the Coordinator and applies the auto-pause policy.
func (e *TradeEngine) AcceptTrade(ctx context.Context, leagueID, tradeID, callerTeamID uuid.UUID, isCommissioner bool) error {
	trade, err := e.gw.LoadTrade(ctx, tradeID)
	if err != nil {
		return ErrTradeNotFound(err.Error())
	}
	if trade.LeagueID != leagueID {
		return ErrTradeNotFound("trade does not belong to this league")
	}
	if !isCommissioner && callerTeamID != trade.ReceiverTeamID {
		return ErrUnauthorized("only the receiving team or commissioner may accept")
	}
	if trade.Status != models.TradeStatusPending {
		return ErrInvalidState(fmt.Sprintf("trade is %s, not PENDING", trade.Status))
	}
	if e.clock.Now().After(trade.ExpiresAt) {
		_ = e.gw.UpdateTradeStatus(ctx, store.UpdateTradeStatusParams{TradeID: tradeID, Status: models.TradeStatusExpired})
		return ErrTradeExpired("trade offer has expired")
	}

	league, err := e.gw.GetLeague(ctx, leagueID)
	if err != nil {
		return ErrStorageError(err.Error())
	}

	txErr := e.gw.RunInTransaction(ctx, func(ctx context.Context, tx store.Gateway) error {
		for _, asset := range trade.Assets {
			if err := e.revalidateAsset(ctx, tx, leagueID, asset); err != nil {
				return err
			}
		}
		for _, asset := range trade.Assets {
			if err := e.swapAsset(ctx, tx, leagueID, trade, asset); err != nil {
				if store.IsUniqueViolation(err) || store.IsSerializationFailure(err) {
					return ErrValidationFailed("traded asset's ownership changed concurrently")
				}
				return err
			}
		}
		now := e.clock.Now()
		if err := tx.UpdateTradeStatus(ctx, store.UpdateTradeStatusParams{
			TradeID: tradeID, Status: models.TradeStatusCompleted,
			RespondedAt: &now, ProcessedAt: &now, ForcedByCommissioner: isCommissioner,
		}); err != nil {
			return err
		}
		// A completed trade invalidates whatever pick undoAvailable was
		// guarding, the same way pause/resume and reset do.
		if draftState, err := tx.GetDraftState(ctx, leagueID); err == nil {
			draftState.UndoAvailable = false
			draftState.LastPickID = nil
			if err := tx.UpsertDraftState(ctx, store.UpsertDraftStateParams{State: draftState}); err != nil {
				return err
			}
		}
		writeOutboxEvent(ctx, tx, leagueID, events.EventTradeAccepted, events.TradeAcceptedPayload{
			TradeID: tradeID, InitiatorTeamID: trade.InitiatorTeamID, ReceiverTeamID: trade.ReceiverTeamID,
			InitiatorAssets: trade.AssetsFrom(trade.InitiatorTeamID), ReceiverAssets: trade.AssetsFrom(trade.ReceiverTeamID),
		})
		return nil
	})
	if txErr != nil {
		if store.IsSerializationFailure(txErr) {
			return ErrValidationFailed("traded asset's ownership changed concurrently")
		}
		return AsCoreError(txErr)
	}
	_ = e.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: leagueID, Kind: models.ActivityTradeAccepted})

	coord := e.registry.AcquireTransient(leagueID)
	coord.submit(ctx, func(ctx context.Context) {
		_ = coord.reconcileCurrentTeam(ctx)
	})
	paused, reason := e.applyAutoPausePolicy(ctx, coord, league, trade)

	coord.broadcast(events.EventTradeAccepted, events.TradeAcceptedPayload{
		TradeID: tradeID, InitiatorTeamID: trade.InitiatorTeamID, ReceiverTeamID: trade.ReceiverTeamID,
		InitiatorAssets: trade.AssetsFrom(trade.InitiatorTeamID), ReceiverAssets: trade.AssetsFrom(trade.ReceiverTeamID),
		DraftPaused: paused, PauseReason: reason,
	})
	return nil
}

// revalidateAsset re-checks ownership at acceptance time per §4.4 step 2.
func (e *TradeEngine) revalidateAsset(ctx context.Context, tx store.Gateway, leagueID uuid.UUID, asset models.TradeAsset) error {
	switch asset.AssetKind {
	case models.AssetKindDraftPick:
		pick, err := tx.GetPick(ctx, *asset.DraftPickID)
		if err != nil {
			return ErrValidationFailed("traded pick no longer exists")
		}
		if pick.IsComplete || pick.CurrentOwnerTeamID != asset.FromTeamID {
			return ErrValidationFailed("traded pick is no longer owned by the stated team or is already complete")
		}
	case models.AssetKindPlayer:
		entry, err := tx.GetRosterEntryByPlayer(ctx, leagueID, *asset.PlayerID)
		if err != nil || entry.TeamID != asset.FromTeamID {
			return ErrValidationFailed("traded player is no longer on the stated team's roster")
		}
	case models.AssetKindFuturePick:
		// Either a matching record exists and is owned by fromTeamId, or no
		// record exists yet (virtual pick), in which case fromTeamId is
		// treated as original owner (§4.4 step 2, §9 open question 2).
		pick, err := tx.GetOrMaterializeFuturePick(ctx, leagueID, store.FuturePickRef{
			Season: *asset.FuturePickSeason, Round: *asset.FuturePickRound, OriginalOwnerTeamID: asset.FromTeamID,
		})
		if err != nil || pick.CurrentOwnerTeamID != asset.FromTeamID {
			return ErrValidationFailed("traded future pick is no longer owned by the stated team")
		}
	default:
		return ErrValidationFailed("unknown asset kind")
	}
	return nil
}

// swapAsset performs the in-place ownership swap of §4.4 step 3.
func (e *TradeEngine) swapAsset(ctx context.Context, tx store.Gateway, leagueID uuid.UUID, trade *models.Trade, asset models.TradeAsset) error {
	to := trade.CounterpartyOf(asset.FromTeamID)
	switch asset.AssetKind {
	case models.AssetKindDraftPick:
		return tx.SetPickOwner(ctx, *asset.DraftPickID, to)
	case models.AssetKindPlayer:
		return tx.MoveRosterEntry(ctx, store.MoveRosterEntryParams{
			LeagueID: leagueID, PlayerID: *asset.PlayerID, NewTeamID: to, AcquiredVia: models.AcquisitionTypeTraded,
		})
	case models.AssetKindFuturePick:
		pick, err := tx.GetOrMaterializeFuturePick(ctx, leagueID, store.FuturePickRef{
			Season: *asset.FuturePickSeason, Round: *asset.FuturePickRound, OriginalOwnerTeamID: asset.FromTeamID,
		})
		if err != nil {
			return ErrStorageError(err.Error())
		}
		return tx.SetPickOwner(ctx, pick.ID, to)
	}
	return nil
}

// applyAutoPausePolicy implements §4.4's auto-pause rule: if pauseOnTrade,
// the draft is IN_PROGRESS, and either team involved is on the clock, or
// any traded pick falls within [currentPick, currentPick+3], pause before
// the completion is broadcast.
func (e *TradeEngine) applyAutoPausePolicy(ctx context.Context, coord *Coordinator, league *models.League, trade *models.Trade) (bool, string) {
	if !league.LeagueSettings.PauseOnTrade {
		return false, ""
	}
	state, err := coord.Snapshot(ctx)
	if err != nil || state.Status != models.DraftStatusInProgress {
		return false, ""
	}

	affectsClock := state.CurrentTeamID != nil &&
		(*state.CurrentTeamID == trade.InitiatorTeamID || *state.CurrentTeamID == trade.ReceiverTeamID)
	if !affectsClock {
		for _, a := range trade.Assets {
			if a.AssetKind != models.AssetKindDraftPick || a.DraftPickID == nil {
				continue
			}
			pick, err := e.gw.GetPick(ctx, *a.DraftPickID)
			if err != nil {
				continue
			}
			if pick.OverallPickNumber >= state.CurrentPick && pick.OverallPickNumber <= state.CurrentPick+3 {
				affectsClock = true
				break
			}
		}
	}
	if !affectsClock {
		return false, ""
	}

	reason := "Trade completed — draft paused for review"
	if err := coord.PauseDraft(ctx, reason); err != nil {
		return false, ""
	}
	return true, reason
}

// RejectTrade, CancelTrade, and VetoTrade are terminal refusals — pure
// status writes with no asset swap (§4.4).
func (e *TradeEngine) RejectTrade(ctx context.Context, leagueID, tradeID, callerTeamID uuid.UUID, isCommissioner bool) error {
	trade, err := e.gw.LoadTrade(ctx, tradeID)
	if err != nil {
		return ErrTradeNotFound(err.Error())
	}
	if !isCommissioner && callerTeamID != trade.ReceiverTeamID {
		return ErrUnauthorized("only the receiving team or commissioner may reject")
	}
	if trade.Status != models.TradeStatusPending {
		return ErrInvalidState(fmt.Sprintf("trade is %s, not PENDING", trade.Status))
	}
	now := e.clock.Now()
	if err := e.gw.UpdateTradeStatus(ctx, store.UpdateTradeStatusParams{
		TradeID: tradeID, Status: models.TradeStatusRejected, RespondedAt: &now,
	}); err != nil {
		return ErrStorageError(err.Error())
	}
	_ = e.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: leagueID, Kind: models.ActivityTradeRejected})
	writeOutboxEvent(ctx, e.gw, leagueID, events.EventTradeRejected, trade)
	if c, ok := e.registry.Peek(leagueID); ok {
		c.broadcast(events.EventTradeRejected, trade)
	}
	return nil
}

func (e *TradeEngine) CancelTrade(ctx context.Context, leagueID, tradeID, callerTeamID uuid.UUID, isCommissioner bool) error {
	trade, err := e.gw.LoadTrade(ctx, tradeID)
	if err != nil {
		return ErrTradeNotFound(err.Error())
	}
	if !isCommissioner && callerTeamID != trade.InitiatorTeamID {
		return ErrUnauthorized("only the initiating team or commissioner may cancel")
	}
	if trade.Status != models.TradeStatusPending {
		return ErrInvalidState(fmt.Sprintf("trade is %s, not PENDING", trade.Status))
	}
	now := e.clock.Now()
	if err := e.gw.UpdateTradeStatus(ctx, store.UpdateTradeStatusParams{
		TradeID: tradeID, Status: models.TradeStatusCancelled, RespondedAt: &now,
	}); err != nil {
		return ErrStorageError(err.Error())
	}
	writeOutboxEvent(ctx, e.gw, leagueID, events.EventTradeCancelled, trade)
	if c, ok := e.registry.Peek(leagueID); ok {
		c.broadcast(events.EventTradeCancelled, trade)
	}
	return nil
}

// VetoTrade is the commissioner override that kills a pending trade
// without either side acting (§4.4, §4.5's ForceAccept/Veto pair).
func (e *TradeEngine) VetoTrade(ctx context.Context, leagueID, tradeID uuid.UUID, isCommissioner bool, notes string) error {
	if !isCommissioner {
		return ErrUnauthorized("veto requires commissioner")
	}
	trade, err := e.gw.LoadTrade(ctx, tradeID)
	if err != nil {
		return ErrTradeNotFound(err.Error())
	}
	if trade.Status != models.TradeStatusPending {
		return ErrInvalidState(fmt.Sprintf("trade is %s, not PENDING", trade.Status))
	}
	now := e.clock.Now()
	if err := e.gw.UpdateTradeStatus(ctx, store.UpdateTradeStatusParams{
		TradeID: tradeID, Status: models.TradeStatusVetoed, RespondedAt: &now, CommissionerNotes: &notes,
	}); err != nil {
		return ErrStorageError(err.Error())
	}
	_ = e.gw.AppendActivity(ctx, store.AppendActivityParams{LeagueID: leagueID, Kind: models.ActivityTradeVetoed})
	writeOutboxEvent(ctx, e.gw, leagueID, events.EventTradeVetoed, events.TradeVetoedPayload{TradeID: tradeID, Notes: notes})
	if c, ok := e.registry.Peek(leagueID); ok {
		c.broadcast(events.EventTradeVetoed, tradeID)
	}
	return nil
}

// ForceAccept is the commissioner override that accepts a pending trade
// on both teams' behalf, bypassing the receiver-only authorization check
// (§4.5).
func (e *TradeEngine) ForceAccept(ctx context.Context, leagueID, tradeID uuid.UUID) error {
	trade, err := e.gw.LoadTrade(ctx, tradeID)
	if err != nil {
		return ErrTradeNotFound(err.Error())
	}
	return e.AcceptTrade(ctx, leagueID, tradeID, trade.ReceiverTeamID, true)
}
