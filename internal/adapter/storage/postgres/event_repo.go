package postgres

import (
	"context"
	"fmt"

	"crowdfund-ledger/internal/core/domain"
)

// GatewayEventRepo implements ports.GatewayEventRepository.
type GatewayEventRepo struct {
	pool Pool
}

// NewGatewayEventRepo creates a new GatewayEventRepo.
func NewGatewayEventRepo(pool Pool) *GatewayEventRepo {
	return &GatewayEventRepo{pool: pool}
}

// Record inserts a received gateway event.
func (r *GatewayEventRepo) Record(ctx context.Context, e *domain.GatewayEvent) error {
	query := `INSERT INTO gateway_events (event_type, reference, outcome, payload, received_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, e.EventType, e.Reference, e.Outcome, e.Payload, e.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert gateway event: %w", err)
	}
	return nil
}
