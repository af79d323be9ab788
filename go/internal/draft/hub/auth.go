// Package hub implements the Subscription Hub (C5): a per-league room of
// WebSocket subscribers that authorizes and routes client intents to the
// owning Coordinator, and fans out the Coordinator's events back out.
//
// Grounded on the teacher's draft/gateway/{connection_manager,
// websocket_handler}.go: a gorilla/websocket upgrader, one goroutine pair
// (read/write pump) per connection, and a buffered broadcast channel
// drained by a single dispatcher goroutine. Generalized from one flat
// connection pool to per-league rooms with an authorization table
// (spec §4.5) gating every intent before it reaches the Coordinator.
package hub

import (
	"context"

	"github.com/google/uuid"
)

// Membership is the result of an authorization lookup for one user in
// one league (§6 Auth interface).
type Membership struct {
	IsMember       bool
	IsCommissioner bool
	TeamID         *uuid.UUID
}

// Authorizer resolves session tokens to users and users to league
// membership. The Hub enforces these before every intent (§6).
type Authorizer interface {
	Identify(ctx context.Context, sessionToken string) (userID string, isAdmin bool, err error)
	LeagueMembership(ctx context.Context, userID string, leagueID uuid.UUID) (Membership, error)
}
