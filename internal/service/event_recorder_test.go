package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"crowdfund-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingEventRepo struct {
	mu     sync.Mutex
	events []*domain.GatewayEvent
	done   chan struct{}
}

func (r *capturingEventRepo) Record(_ context.Context, event *domain.GatewayEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestEventRecorder_PersistsAsync(t *testing.T) {
	repo := &capturingEventRepo{done: make(chan struct{}, 1)}
	recorder := NewEventRecorder(repo, zerolog.Nop())

	payload := []byte(`{"event":"charge.success"}`)
	recorder.Record(context.Background(), "charge.success", "cf_ref_001", domain.EventOutcomeApplied, payload)

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not persisted")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.events, 1)
	e := repo.events[0]
	assert.Equal(t, "charge.success", e.EventType)
	assert.Equal(t, "cf_ref_001", e.Reference)
	assert.Equal(t, domain.EventOutcomeApplied, e.Outcome)
	assert.Equal(t, payload, e.Payload)
	assert.False(t, e.ReceivedAt.IsZero())
}

func TestEventRecorder_NilRepoIsLogOnly(t *testing.T) {
	recorder := NewEventRecorder(nil, zerolog.Nop())
	// Must not panic.
	recorder.Record(context.Background(), "transfer.success", "cf_ref_002", domain.EventOutcomeDiscarded, nil)
}
