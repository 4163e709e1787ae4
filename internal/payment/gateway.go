package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway authorizes a payment and returns its transaction id.
type Gateway interface {
	Charge(ctx context.Context, orderID string, amount decimal.Decimal) (string, error)
}

// SimulatedGateway approves every charge after a fixed delay. No money moves.
type SimulatedGateway struct {
	delay time.Duration
}

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay}
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ string, _ decimal.Decimal) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("payment aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return transactionID(), nil
}

func transactionID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN-" + strings.ToUpper(id[:12])
}
