package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftcore/go/internal/draft/store"
)

// fakePublisher records every Publish call and fails the first
// failCount calls for a given event before succeeding, so retry
// behavior can be exercised deterministically.
type fakePublisher struct {
	mu         sync.Mutex
	failCount  int
	attempts   map[uuid.UUID]int
	published  []Event
	alwaysFail bool
}

func newFakePublisher(failCount int) *fakePublisher {
	return &fakePublisher{failCount: failCount, attempts: make(map[uuid.UUID]int)}
}

func (p *fakePublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts[event.ID]++
	if p.alwaysFail || p.attempts[event.ID] <= p.failCount {
		return errors.New("simulated publish failure")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) publishedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func seedOutboxEvent(t *testing.T, gw *store.MemoryGateway, leagueID uuid.UUID, eventType string) {
	t.Helper()
	require.NoError(t, gw.AppendOutboxEvent(context.Background(), store.AppendOutboxEventParams{
		LeagueID: leagueID, EventType: eventType, Payload: []byte(`{}`),
	}))
}

func TestProcessOutboxPublishesAndMarksSent(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID := uuid.New()
	seedOutboxEvent(t, gw, leagueID, "PickMade")
	seedOutboxEvent(t, gw, leagueID, "DraftStarted")

	pub := newFakePublisher(0)
	w := NewWorker(gw, pub, Config{PollInterval: time.Hour, BatchSize: 10, MaxRetries: 0, RetryDelay: time.Millisecond}, zerolog.Nop())

	w.processOutbox(context.Background())

	require.Equal(t, 2, pub.publishedCount())
	remaining, err := gw.FetchUnsentOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestProcessOutboxRetriesBeforeSucceeding(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID := uuid.New()
	seedOutboxEvent(t, gw, leagueID, "PickMade")

	pub := newFakePublisher(2)
	w := NewWorker(gw, pub, Config{PollInterval: time.Hour, BatchSize: 10, MaxRetries: 3, RetryDelay: time.Millisecond}, zerolog.Nop())

	w.processOutbox(context.Background())

	require.Equal(t, 1, pub.publishedCount())
	remaining, err := gw.FetchUnsentOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestProcessOutboxLeavesRowUnsentOnPermanentFailure(t *testing.T) {
	gw := store.NewMemoryGateway()
	leagueID := uuid.New()
	seedOutboxEvent(t, gw, leagueID, "PickMade")

	pub := newFakePublisher(0)
	pub.alwaysFail = true
	w := NewWorker(gw, pub, Config{PollInterval: time.Hour, BatchSize: 10, MaxRetries: 1, RetryDelay: time.Millisecond}, zerolog.Nop())

	w.processOutbox(context.Background())

	require.Equal(t, 0, pub.publishedCount())
	remaining, err := gw.FetchUnsentOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestWorkerStartStopIdempotence(t *testing.T) {
	gw := store.NewMemoryGateway()
	pub := newFakePublisher(0)
	w := NewWorker(gw, pub, Config{PollInterval: time.Hour, BatchSize: 10, MaxRetries: 0, RetryDelay: time.Millisecond}, zerolog.Nop())

	require.NoError(t, w.Start(context.Background()))
	require.Error(t, w.Start(context.Background()), "starting an already-running worker must error")
	require.NoError(t, w.Stop())
	require.Error(t, w.Stop(), "stopping an already-stopped worker must error")
}
