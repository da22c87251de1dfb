package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/payment"
	"shopbooking-backend/internal/repository"
)

type paymentLinkService struct {
	bookingRepo     repository.BookingRepository
	gateway         payment.Gateway
	invoicePrefix   string
	defaultCurrency string
	shopName        string
	now             func() time.Time
}

func NewPaymentLinkService(
	bookingRepo repository.BookingRepository,
	gateway payment.Gateway,
	invoicePrefix, defaultCurrency, shopName string,
) PaymentLinkService {
	return &paymentLinkService{
		bookingRepo:     bookingRepo,
		gateway:         gateway,
		invoicePrefix:   invoicePrefix,
		defaultCurrency: defaultCurrency,
		shopName:        shopName,
		now:             time.Now,
	}
}

func (s *paymentLinkService) CreateLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}
	req.Currency = strings.ToLower(req.Currency)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	link, err := s.gateway.CreatePaymentLink(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	logger.Info("Payment link created", "invoice_number", req.InvoiceNumber, "reference", link.ReferenceID, "booking_id", req.BookingID)
	return link, nil
}

func (s *paymentLinkService) CreateBookingLink(ctx context.Context, bookingID string) (*domain.PaymentLink, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CanAcceptPayment(); err != nil {
		return nil, err
	}
	amount := domain.AmountToMinor(b.Price)
	if amount <= 0 {
		return nil, invalid("price", "booking has nothing to pay")
	}

	invoice, err := s.ensureInvoiceNumber(ctx, b)
	if err != nil {
		return nil, err
	}

	description := b.ServiceName
	if s.shopName != "" {
		description = fmt.Sprintf("%s - %s", s.shopName, b.ServiceName)
	}
	return s.CreateLink(ctx, domain.PaymentLinkRequest{
		AmountMinor:   amount,
		Currency:      b.Currency,
		Description:   truncate(description, 255),
		InvoiceNumber: invoice,
		CustomerName:  truncate(b.CustomerName, 200),
		BookingID:     b.ID,
	})
}

// ensureInvoiceNumber keeps the first invoice number ever assigned so a
// reissued link still correlates with earlier ones.
func (s *paymentLinkService) ensureInvoiceNumber(ctx context.Context, b *domain.Booking) (string, error) {
	if b.InvoiceNumber != nil && *b.InvoiceNumber != "" {
		return *b.InvoiceNumber, nil
	}
	invoice := payment.NewInvoiceNumber(s.invoicePrefix, s.now())
	set, err := s.bookingRepo.SetInvoiceNumber(ctx, b.ID, invoice)
	if err != nil {
		return "", fmt.Errorf("assign invoice number: %w", err)
	}
	if set {
		return invoice, nil
	}
	fresh, err := s.bookingRepo.GetByID(ctx, b.ID)
	if err != nil {
		return "", err
	}
	if fresh.InvoiceNumber == nil {
		return "", fmt.Errorf("booking %s has no invoice number after assignment", b.ID)
	}
	return *fresh.InvoiceNumber, nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
