package payment

import (
	"context"
	"errors"

	"shopbooking-backend/internal/domain"
)

// ErrGatewayNotConfigured is returned when no processor keys were provided.
var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// Gateway is the outbound side of the payment processor.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error)
}

type unconfiguredGateway struct{}

// NewUnconfiguredGateway returns a Gateway that refuses every request. It
// lets the server run webhook reconciliation without outbound processor keys.
func NewUnconfiguredGateway() Gateway { return unconfiguredGateway{} }

func (unconfiguredGateway) CreatePaymentLink(context.Context, domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	return nil, ErrGatewayNotConfigured
}
