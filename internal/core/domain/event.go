package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatusSuccess is the gateway's status value for a successful movement.
// Anything else is treated as a failure outcome.
const EventStatusSuccess = "success"

// ChargeEvent is a typed charge notification handed to the engine by the
// webhook ingress. All monetary values arrive in minor currency units.
type ChargeEvent struct {
	Reference         string    `json:"reference"`
	Status            string    `json:"status"`
	GatewayID         int64     `json:"gateway_id"`
	AmountMinor       int64     `json:"amount_minor"`
	Channel           string    `json:"channel"`
	AuthorizationCode string    `json:"authorization_code"`
	FeeMinor          int64     `json:"fee_minor"`
	PaidAt            time.Time `json:"paid_at"`
}

// TransferEvent is a typed payout notification. The gateway's initial payload
// does not carry the final fee; the engine fetches it via a transfer lookup.
type TransferEvent struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	GatewayID   int64  `json:"gateway_id"`
	AmountMinor int64  `json:"amount_minor"`
}

var minorUnitsPerMajor = decimal.NewFromInt(100)

// MajorUnits converts a minor-unit amount to major currency units. This is the
// single place minor units are divided; all downstream arithmetic is in major
// units.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorUnitsPerMajor)
}

// GatewayEventOutcome classifies what the engine did with an event.
type GatewayEventOutcome string

const (
	EventOutcomeApplied   GatewayEventOutcome = "applied"
	EventOutcomeDiscarded GatewayEventOutcome = "discarded"
	EventOutcomeErrored   GatewayEventOutcome = "errored"
)

// GatewayEvent is the audit record of one received webhook delivery,
// including duplicates and events for unknown references.
type GatewayEvent struct {
	ID         int64               `json:"id"`
	EventType  string              `json:"event_type"`
	Reference  string              `json:"reference"`
	Outcome    GatewayEventOutcome `json:"outcome"`
	Payload    []byte              `json:"-"`
	ReceivedAt time.Time           `json:"received_at"`
}
