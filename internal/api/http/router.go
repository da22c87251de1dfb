package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"shopbooking-backend/internal/security"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Webhook       *WebhookHandler
	Bookings      *BookingHandler
	Earnings      *EarningsHandler
	Payments      *PaymentHandler
	Notifications *NotificationHandler
	DB            Pinger
}

func NewRouter(h Handlers, tokens security.TokenValidator) *mux.Router {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware, LoggingMiddleware, AuthMiddleware(tokens))

	router.HandleFunc("/healthz", healthz(h.DB)).Methods(http.MethodGet)
	router.HandleFunc("/webhooks/payment", h.Webhook.HandlePayment).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()

	b := api.PathPrefix("/bookings").Subrouter()
	b.HandleFunc("", h.Bookings.Create).Methods(http.MethodPost)
	b.HandleFunc("", h.Bookings.List).Methods(http.MethodGet)
	b.HandleFunc("/{id}", h.Bookings.Get).Methods(http.MethodGet)
	b.HandleFunc("/{id}", h.Bookings.Update).Methods(http.MethodPatch)
	b.HandleFunc("/{id}", h.Bookings.Delete).Methods(http.MethodDelete)
	b.HandleFunc("/{id}/reschedule", h.Bookings.Reschedule).Methods(http.MethodPost)
	b.HandleFunc("/{id}/complete", h.Bookings.Complete).Methods(http.MethodPost)
	b.HandleFunc("/{id}/cancel", h.Bookings.Cancel).Methods(http.MethodPost)
	b.HandleFunc("/{id}/cash-payment", h.Bookings.CashPayment).Methods(http.MethodPost)
	b.HandleFunc("/{id}/refund", h.Bookings.Refund).Methods(http.MethodPost)
	b.HandleFunc("/{id}/payment-link", h.Bookings.PaymentLink).Methods(http.MethodPost)

	api.HandleFunc("/payments/links", h.Payments.CreateLink).Methods(http.MethodPost)

	api.HandleFunc("/earnings/summary", h.Earnings.Summary).Methods(http.MethodGet)
	api.HandleFunc("/earnings/periods/{period}", h.Earnings.Period).Methods(http.MethodGet)
	api.HandleFunc("/earnings/dashboard", h.Earnings.Dashboard).Methods(http.MethodGet)

	api.HandleFunc("/notifications/send", h.Notifications.Send).Methods(http.MethodPost)
	api.HandleFunc("/notifications/failures", h.Notifications.ListFailures).Methods(http.MethodGet)
	api.HandleFunc("/notifications/failures/{id}/resend", h.Notifications.Resend).Methods(http.MethodPost)

	return router
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
