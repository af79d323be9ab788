package draft

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

// entry pairs a Coordinator with its subscriber count so Registry can
// decide when it is safe to evict (§4.1).
type entry struct {
	coord       *Coordinator
	subscribers int
}

// Registry is the process-wide leagueId -> Coordinator map (C1). Grounded
// on the teacher's Orchestrator holding process-wide maps behind a mutex
// (orchestrator/orchestrator.go's inFlight map), generalized to one
// Coordinator per league instead of one flat in-flight set.
type Registry struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*entry
	gw       store.Gateway
	clock    clockwork.Clock
	bus      Broadcaster
	log      zerolog.Logger
}

func NewRegistry(gw store.Gateway, clock clockwork.Clock, bus Broadcaster, log zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]*entry),
		gw:      gw,
		clock:   clock,
		bus:     bus,
		log:     log,
	}
}

// Acquire returns the singleton Coordinator for leagueID, lazily creating
// it on first subscriber arrival. Concurrent Acquire calls for the same
// league resolve to the same instance (§4.1).
func (r *Registry) Acquire(leagueID uuid.UUID) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[leagueID]
	if !ok {
		e = &entry{coord: NewCoordinator(leagueID, r.gw, r.clock, r.bus, r.log)}
		r.entries[leagueID] = e
	}
	e.subscribers++
	return e.coord
}

// Release decrements leagueID's subscriber count and evicts the
// Coordinator once subscribers==0 AND no timer is currently running
// (§4.1, §3 lifecycles).
func (r *Registry) Release(leagueID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[leagueID]
	if !ok {
		return
	}
	e.subscribers--
	if e.subscribers <= 0 && !e.coord.HasLiveTimer() {
		delete(r.entries, leagueID)
		e.coord.Stop()
	}
}

// Peek returns the Coordinator for leagueID if one currently exists,
// without affecting the subscriber count or creating it — used by the
// Trade Engine to broadcast proposal/reject/cancel/veto events only when
// the league already has a Coordinator.
func (r *Registry) Peek(leagueID uuid.UUID) (*Coordinator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[leagueID]
	if !ok {
		return nil, false
	}
	return e.coord, true
}

// AcquireTransient returns a Coordinator for leagueID without registering
// a subscriber — used for one-off server-side operations (e.g. the Trade
// Engine reconciling a league with no active room). The Coordinator is
// left in the registry afterward so a later Acquire finds it warm.
func (r *Registry) AcquireTransient(leagueID uuid.UUID) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[leagueID]
	if !ok {
		e = &entry{coord: NewCoordinator(leagueID, r.gw, r.clock, r.bus, r.log)}
		r.entries[leagueID] = e
	}
	return e.coord
}
