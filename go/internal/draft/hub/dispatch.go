package hub

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mcdev12/draftcore/go/internal/draft"
	"github.com/mcdev12/draftcore/go/internal/draft/events"
	"github.com/mcdev12/draftcore/go/internal/models"
)

// wireIntent is the envelope a client sends in: a discriminant plus a
// per-intent payload (§6).
type wireIntent struct {
	Event   events.Type     `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type makePickPayload struct {
	PlayerID uuid.UUID `json:"playerId"`
}

type proposeTradePayload struct {
	ReceiverTeamID uuid.UUID          `json:"receiverTeamId"`
	Assets         []models.TradeAsset `json:"assets"`
}

type tradeIDPayload struct {
	TradeID uuid.UUID `json:"tradeId"`
}

type vetoPayload struct {
	TradeID uuid.UUID `json:"tradeId"`
	Notes   string    `json:"notes,omitempty"`
}

type updateOrderPayload struct {
	TeamIDsInOrder []uuid.UUID `json:"teamIdsInOrder"`
}

type updateQueuePayload struct {
	PlayerIDs []uuid.UUID `json:"playerIds"`
}

type pauseDraftPayload struct {
	Reason string `json:"reason"`
}

// handleIntent routes a client intent to the Coordinator or Trade Engine
// and translates any resulting error into a single-recipient Error event
// (§7 propagation: no error ever causes a broadcast). The commissioner
// requirement of StartDraft, PauseDraft, ResumeDraft, UpdateOrder,
// ForceAccept and Veto, and the acting-team requirement of ProposeTrade
// and UpdateQueue, are checked here. Turn ownership for MakePick, the
// trade-party checks of Accept/Reject/CancelTrade, and the commissioner
// checks of ResetDraft, ForcePick and UndoLastPick are made by the
// Coordinator or Trade Engine from the session's team and commissioner
// flag.
func (h *Hub) handleIntent(s *Session, msg wireIntent) {
	// The WebSocket outlives any one HTTP request, so intents run against
	// a background context rather than the upgrade request's.
	ctx := context.Background()

	var err error
	switch msg.Event {
	case events.IntentMakePick:
		var p makePickPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.registry.Acquire(s.LeagueID).MakePick(ctx, teamIDOrNil(s.TeamID), p.PlayerID, s.IsCommissioner)
			h.registry.Release(s.LeagueID)
		}

	case events.IntentProposeTrade:
		var p proposeTradePayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			if !s.authorizedAsTeam(s.TeamID) {
				err = draft.ErrUnauthorized("proposeTrade requires an acting team")
				break
			}
			_, err = h.trades.ProposeTrade(ctx, s.LeagueID, *s.TeamID, p.ReceiverTeamID, p.Assets)
		}

	case events.IntentAcceptTrade:
		var p tradeIDPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.trades.AcceptTrade(ctx, s.LeagueID, p.TradeID, teamIDOrNil(s.TeamID), s.IsCommissioner)
		}

	case events.IntentRejectTrade:
		var p tradeIDPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.trades.RejectTrade(ctx, s.LeagueID, p.TradeID, teamIDOrNil(s.TeamID), s.IsCommissioner)
		}

	case events.IntentCancelTrade:
		var p tradeIDPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.trades.CancelTrade(ctx, s.LeagueID, p.TradeID, teamIDOrNil(s.TeamID), s.IsCommissioner)
		}

	case events.IntentForceAccept:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("forceAccept requires commissioner")
			break
		}
		var p tradeIDPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.trades.ForceAccept(ctx, s.LeagueID, p.TradeID)
		}

	case events.IntentVeto:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("veto requires commissioner")
			break
		}
		var p vetoPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.trades.VetoTrade(ctx, s.LeagueID, p.TradeID, true, p.Notes)
		}

	case events.IntentStartDraft:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("startDraft requires commissioner")
			break
		}
		err = h.registry.Acquire(s.LeagueID).StartDraft(ctx)
		h.registry.Release(s.LeagueID)

	case events.IntentPauseDraft:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("pauseDraft requires commissioner")
			break
		}
		var p pauseDraftPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.registry.Acquire(s.LeagueID).PauseDraft(ctx, p.Reason)
			h.registry.Release(s.LeagueID)
		}

	case events.IntentResumeDraft:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("resumeDraft requires commissioner")
			break
		}
		err = h.registry.Acquire(s.LeagueID).ResumeDraft(ctx)
		h.registry.Release(s.LeagueID)

	case events.IntentResetDraft:
		err = h.registry.Acquire(s.LeagueID).ResetDraft(ctx, s.IsCommissioner)
		h.registry.Release(s.LeagueID)

	case events.IntentForcePick:
		var p makePickPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.registry.Acquire(s.LeagueID).ForcePick(ctx, p.PlayerID, s.IsCommissioner)
			h.registry.Release(s.LeagueID)
		}

	case events.IntentUndoLastPick:
		err = h.registry.Acquire(s.LeagueID).UndoLastPick(ctx, s.IsCommissioner)
		h.registry.Release(s.LeagueID)

	case events.IntentUpdateOrder:
		if !s.IsCommissioner {
			err = draft.ErrUnauthorized("updateOrder requires commissioner")
			break
		}
		var p updateOrderPayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.registry.Acquire(s.LeagueID).SetDraftOrder(ctx, p.TeamIDsInOrder, true)
			h.registry.Release(s.LeagueID)
		}

	case events.IntentUpdateQueue:
		if !s.authorizedAsTeam(s.TeamID) {
			err = draft.ErrUnauthorized("updateQueue requires an acting team")
			break
		}
		var p updateQueuePayload
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.gw.SetTeamQueue(ctx, *s.TeamID, p.PlayerIDs)
		}

	default:
		err = draft.ErrValidationFailed("unrecognized intent")
	}

	if err != nil {
		ce := draft.AsCoreError(err)
		s.sendError(ce.Code, ce.Message)
	}
}

// authorizedAsTeam reports whether the session has a team of its own —
// ProposeTrade and UpdateQueue are only ever performed by the acting
// team, never by a commissioner on another team's behalf (§4.5).
func (s *Session) authorizedAsTeam(teamID *uuid.UUID) bool {
	return teamID != nil
}

func teamIDOrNil(teamID *uuid.UUID) uuid.UUID {
	if teamID == nil {
		return uuid.Nil
	}
	return *teamID
}
