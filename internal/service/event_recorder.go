package service

import (
	"context"
	"time"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

type eventRecorder struct {
	repo ports.GatewayEventRepository
	log  zerolog.Logger
}

// NewEventRecorder creates the gateway event audit recorder.
// If repo is nil, events are only written to the logger.
func NewEventRecorder(repo ports.GatewayEventRepository, log zerolog.Logger) ports.EventRecorder {
	return &eventRecorder{repo: repo, log: log}
}

// Record persists a received gateway event asynchronously (fire-and-forget).
func (s *eventRecorder) Record(ctx context.Context, eventType, reference string, outcome domain.GatewayEventOutcome, payload []byte) {
	go func() {
		s.log.Info().
			Str("event_type", eventType).
			Str("reference", reference).
			Str("outcome", string(outcome)).
			Msg("gateway event")

		if s.repo != nil {
			event := &domain.GatewayEvent{
				EventType:  eventType,
				Reference:  reference,
				Outcome:    outcome,
				Payload:    payload,
				ReceivedAt: time.Now().UTC(),
			}
			if err := s.repo.Record(context.Background(), event); err != nil {
				s.log.Warn().Err(err).Str("reference", reference).Msg("failed to persist gateway event")
			}
		}
	}()
}
