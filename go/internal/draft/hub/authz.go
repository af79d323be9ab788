package hub

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

// GatewayAuthorizer is a minimal Authorizer backed directly by the
// Persistence Gateway: the session token is taken to be the caller's
// userId (upstream auth — a reverse proxy or JWT-verifying middleware —
// is expected to have already turned a credential into this id; see
// spec §6's identify()), and league membership is derived from
// FantasyTeam.OwnerUserID and League.CommissionerID. Suitable for a
// single-process deployment with no separate identity service; swap in
// a JWT- or session-store-backed Authorizer for anything public-facing.
type GatewayAuthorizer struct {
	gw store.Gateway
}

func NewGatewayAuthorizer(gw store.Gateway) *GatewayAuthorizer {
	return &GatewayAuthorizer{gw: gw}
}

func (a *GatewayAuthorizer) Identify(ctx context.Context, sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, fmt.Errorf("missing session token")
	}
	return sessionToken, false, nil
}

func (a *GatewayAuthorizer) LeagueMembership(ctx context.Context, userID string, leagueID uuid.UUID) (Membership, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return Membership{}, fmt.Errorf("malformed user id: %w", err)
	}

	league, err := a.gw.GetLeague(ctx, leagueID)
	if err != nil {
		return Membership{}, err
	}
	isCommissioner := league.CommissionerID == userUUID

	teams, err := a.gw.ListTeams(ctx, leagueID)
	if err != nil {
		return Membership{}, err
	}
	var teamID *uuid.UUID
	for _, t := range teams {
		if t.OwnerUserID != nil && *t.OwnerUserID == userUUID {
			id := t.ID
			teamID = &id
			break
		}
	}

	return Membership{
		IsMember:       isCommissioner || teamID != nil,
		IsCommissioner: isCommissioner,
		TeamID:         teamID,
	}, nil
}
