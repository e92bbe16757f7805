package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformSettings holds operator-tunable values read fresh from storage on
// every processed event. They may change between events, so the engine never
// caches them in process memory.
type PlatformSettings struct {
	FeePercentage    decimal.Decimal `json:"fee_percentage"` // platform cut, 0..100
	GatewaySecretKey string          `json:"-"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
