package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus is the lifecycle status of a proposed trade (§3).
type TradeStatus string

const (
	TradeStatusPending    TradeStatus = "PENDING"
	TradeStatusProcessing TradeStatus = "PROCESSING"
	TradeStatusCompleted  TradeStatus = "COMPLETED"
	TradeStatusRejected   TradeStatus = "REJECTED"
	TradeStatusCancelled  TradeStatus = "CANCELLED"
	TradeStatusVetoed     TradeStatus = "VETOED"
	TradeStatusExpired    TradeStatus = "EXPIRED"
)

// AssetKind tags the variant of a TradeAsset, replacing the source's
// duck-typed assetType strings with an explicit tagged union (§9).
type AssetKind string

const (
	AssetKindDraftPick  AssetKind = "DRAFT_PICK"
	AssetKindPlayer     AssetKind = "PLAYER"
	AssetKindFuturePick AssetKind = "FUTURE_PICK"
)

// TradeAsset is one item changing hands in a Trade. Exactly the fields
// relevant to AssetKind are populated:
//   - DRAFT_PICK:  DraftPickID
//   - PLAYER:      PlayerID
//   - FUTURE_PICK: FuturePickSeason + FuturePickRound (+ DraftPickID once
//     materialized — see §9 open question 2)
type TradeAsset struct {
	ID               uuid.UUID  `json:"id"`
	TradeID          uuid.UUID  `json:"trade_id"`
	FromTeamID       uuid.UUID  `json:"from_team_id"`
	AssetKind        AssetKind  `json:"asset_kind"`
	DraftPickID      *uuid.UUID `json:"draft_pick_id,omitempty"`
	PlayerID         *uuid.UUID `json:"player_id,omitempty"`
	FuturePickSeason *string    `json:"future_pick_season,omitempty"`
	FuturePickRound  *int       `json:"future_pick_round,omitempty"`
}

// Trade is a proposed or settled asset swap between two teams in a
// league (§3, §4.4).
type Trade struct {
	ID                  uuid.UUID   `json:"id"`
	LeagueID            uuid.UUID   `json:"league_id"`
	InitiatorTeamID     uuid.UUID   `json:"initiator_team_id"`
	ReceiverTeamID      uuid.UUID   `json:"receiver_team_id"`
	Status              TradeStatus `json:"status"`
	ProposedAt          time.Time   `json:"proposed_at"`
	RespondedAt         *time.Time `json:"responded_at,omitempty"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
	ExpiresAt           time.Time  `json:"expires_at"`
	ForcedByCommissioner bool       `json:"forced_by_commissioner"`
	CommissionerNotes   *string    `json:"commissioner_notes,omitempty"`
	Assets              []TradeAsset `json:"assets"`
}

// AssetsFrom returns the subset of the trade's assets given up by teamID.
func (t *Trade) AssetsFrom(teamID uuid.UUID) []TradeAsset {
	var out []TradeAsset
	for _, a := range t.Assets {
		if a.FromTeamID == teamID {
			out = append(out, a)
		}
	}
	return out
}

// CounterpartyOf returns the other team in a two-team trade.
func (t *Trade) CounterpartyOf(teamID uuid.UUID) uuid.UUID {
	if teamID == t.InitiatorTeamID {
		return t.ReceiverTeamID
	}
	return t.InitiatorTeamID
}
