package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

// OmiseGateway creates redirect-based charges whose authorize URI acts as the
// payment link. The invoice number travels in charge metadata and comes back
// on the webhook.
type OmiseGateway struct {
	publicKey  string
	secretKey  string
	sourceType string
	returnURI  string
	timeout    time.Duration
}

const omiseRequestTimeout = 30 * time.Second

func NewOmiseGateway(publicKey, secretKey, sourceType, returnURI string) (*OmiseGateway, error) {
	if _, err := omise.NewClient(publicKey, secretKey); err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	return &OmiseGateway{
		publicKey:  publicKey,
		secretKey:  secretKey,
		sourceType: sourceType,
		returnURI:  returnURI,
		timeout:    omiseRequestTimeout,
	}, nil
}

// client returns a client bound to ctx. omise.Client keeps the context on
// the client itself, so each request gets its own.
func (g *OmiseGateway) client(ctx context.Context) (*omise.Client, error) {
	c, err := omise.NewClient(g.publicKey, g.secretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	c.Client.Timeout = g.timeout
	c.WithContext(ctx)
	return c, nil
}

func (g *OmiseGateway) CreatePaymentLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	client, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	logger.ExternalServiceCall("omise", "create_source", "invoice_number", req.InvoiceNumber, "amount_minor", req.AmountMinor)

	src := &omise.Source{}
	if err := client.Do(src, &operations.CreateSource{
		Type:     g.sourceType,
		Amount:   req.AmountMinor,
		Currency: req.Currency,
	}); err != nil {
		logger.ExternalServiceResult("omise", "create_source", err)
		return nil, fmt.Errorf("create source: %w", err)
	}

	metadata := map[string]any{
		"invoice_number": req.InvoiceNumber,
		"customer_name":  req.CustomerName,
	}
	if req.BookingID != "" {
		metadata["booking_id"] = req.BookingID
	}

	ch := &omise.Charge{}
	err = client.Do(ch, &operations.CreateCharge{
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Source:      src.ID,
		Description: req.Description,
		ReturnURI:   g.returnURI,
		Metadata:    metadata,
	})
	logger.ExternalServiceResult("omise", "create_charge", err, "invoice_number", req.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	if ch.AuthorizeURI == "" {
		return nil, errors.New("processor returned no payment url")
	}

	return &domain.PaymentLink{
		URL:           ch.AuthorizeURI,
		ReferenceID:   ch.ID,
		InvoiceNumber: req.InvoiceNumber,
	}, nil
}
