package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/repository"
)

const failureWriteTimeout = 5 * time.Second

// Dispatcher walks an ordered channel list until one accepts the message.
// When every channel fails the message is stored for manual resend.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	failures repository.NotificationFailureRepository
	fallback string
	internal map[string]struct{}
	log      *slog.Logger
}

// NewDispatcher builds a dispatcher. fallbackRecipient receives messages that
// carry no address; internalAddresses are staff mailboxes checked by the
// customer-data warning.
func NewDispatcher(
	channels []Channel,
	timeout time.Duration,
	failures repository.NotificationFailureRepository,
	fallbackRecipient string,
	internalAddresses []string,
) *Dispatcher {
	internal := make(map[string]struct{}, len(internalAddresses)+1)
	for _, addr := range append(internalAddresses, fallbackRecipient) {
		if addr = normalizeAddress(addr); addr != "" {
			internal[addr] = struct{}{}
		}
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		failures: failures,
		fallback: fallbackRecipient,
		internal: internal,
		log:      logger.WithComponent("dispatcher"),
	}
}

// Dispatch delivers msg and reports how. It never fails; the worst outcome
// is a manual_log result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.Message) domain.DeliveryResult {
	if msg == nil {
		return domain.DeliveryResult{ChannelUsed: ChannelNone}
	}
	if len(msg.To) == 0 && len(msg.Phones) == 0 && d.fallback != "" {
		msg.To = domain.Recipients{d.fallback}
	}

	result := domain.DeliveryResult{Warning: d.safetyWarning(msg)}
	if result.Warning != "" {
		d.log.Warn("Notification addressed to internal mailbox", "kind", msg.Kind, "booking_id", msg.BookingID, "warning", result.Warning)
	}

	if msg.Preview {
		result.Success = true
		result.ChannelUsed = ChannelPreview
		result.Rendered = msg
		return result
	}

	var errs []string
	for _, ch := range d.channels {
		err := d.send(ctx, ch, msg)
		if err == nil {
			d.log.Info("Notification delivered", "kind", msg.Kind, "channel", ch.Name(), "booking_id", msg.BookingID)
			result.Success = true
			result.ChannelUsed = ch.Name()
			return result
		}
		d.log.Warn("Notification channel failed", "kind", msg.Kind, "channel", ch.Name(), "error", err)
		errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
	}
	if len(errs) == 0 {
		errs = append(errs, "no channels configured")
	}

	d.recordFailure(ctx, msg, strings.Join(errs, "; "))
	result.ChannelUsed = ChannelManualLog
	return result
}

// DispatchAsync sends on a context detached from the caller. In-flight sends
// are abandoned at shutdown; the failure log covers them.
func (d *Dispatcher) DispatchAsync(ctx context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go d.Dispatch(detached, msg)
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, msg *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("channel panicked: %v", r)
			}
		}()
		done <- ch.Send(ctx, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("gave up after %s: %w", d.timeout, ctx.Err())
	}
}

func (d *Dispatcher) recordFailure(ctx context.Context, msg *domain.Message, lastErr string) {
	payload, err := json.Marshal(msg)
	if err != nil {
		d.log.Error("Failed to encode undeliverable notification", "kind", msg.Kind, "error", err)
		return
	}

	f := &domain.NotificationFailure{
		Kind:       msg.Kind,
		Recipients: append(append([]string{}, msg.To...), msg.Phones...),
		Subject:    msg.Subject,
		BookingID:  msg.BookingID,
		Payload:    payload,
		LastError:  lastErr,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()
	if d.failures != nil {
		if err = d.failures.Create(writeCtx, f); err == nil {
			d.log.Error("Notification undeliverable, stored for manual resend", "failure_id", f.ID, "kind", msg.Kind, "booking_id", msg.BookingID, "error", lastErr)
			return
		}
	}
	// Last resort: the log line is the only record left.
	d.log.Error("Notification undeliverable and not stored",
		"kind", msg.Kind,
		"booking_id", msg.BookingID,
		"error", lastErr,
		"store_error", err,
		"payload", string(payload),
	)
}

// safetyWarning flags customer content going to a staff mailbox.
func (d *Dispatcher) safetyWarning(msg *domain.Message) string {
	if !msg.Kind.CustomerFacing() || !msg.ReferencesCustomer() {
		return ""
	}
	for _, to := range msg.To {
		if _, ok := d.internal[normalizeAddress(to)]; ok {
			return fmt.Sprintf("recipient %s is an internal address but the message references a customer or booking", to)
		}
	}
	return ""
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.LastIndex(addr, "<"); i >= 0 && strings.HasSuffix(addr, ">") {
		addr = addr[i+1 : len(addr)-1]
	}
	return strings.ToLower(addr)
}
