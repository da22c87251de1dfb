package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

const layout = `
{{define "header"}}<html><body style="font-family:sans-serif">{{end}}
{{define "footer"}}<p style="color:#888">{{.ShopName}}</p></body></html>{{end}}

{{define "booking_created"}}{{template "header"}}
<h2>New booking</h2>
<p><strong>{{.CustomerName}}</strong> booked <strong>{{.ServiceName}}</strong> for {{.When}}.</p>
<p>Price: {{.Amount}}</p>
<p>Booking ID: {{.BookingID}}</p>
{{template "footer" .}}{{end}}

{{define "customer_confirmation"}}{{template "header"}}
<p>Hi {{.CustomerName}},</p>
<p>Your {{.ServiceName}} appointment{{if .StaffName}} with {{.StaffName}}{{end}} is booked for {{.When}}.</p>
<p>Booking ID: {{.BookingID}} | Price: {{.Amount}}</p>
{{template "footer" .}}{{end}}

{{define "payment_confirmed"}}{{template "header"}}
<h2>Payment received</h2>
<p>{{.CustomerName}} paid {{.Amount}} for {{.ServiceName}} on {{.When}}.</p>
<p>Reference: {{.Reference}}{{if .InvoiceNumber}} | Invoice: {{.InvoiceNumber}}{{end}}</p>
{{if .Commission}}<p>Your commission: {{.Commission}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "payment_receipt"}}{{template "header"}}
<p>Hi {{.CustomerName}},</p>
<p>We received your payment of {{.Amount}} for {{.ServiceName}}. Thank you!</p>
{{if .InvoiceNumber}}<p>Invoice: {{.InvoiceNumber}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "payment_failed"}}{{template "header"}}
<h2>Payment failed</h2>
<p>The payment for {{.CustomerName}}'s {{.ServiceName}} on {{.When}} did not go through.</p>
<p>Reference: {{.Reference}}</p>
{{template "footer" .}}{{end}}

{{define "refund_issued"}}{{template "header"}}
<h2>Refund issued</h2>
<p>{{.Amount}} was refunded to {{.CustomerName}} for {{.ServiceName}} on {{.When}}.</p>
{{template "footer" .}}{{end}}

{{define "appointment_reminder"}}{{template "header"}}
<p>Hi {{.CustomerName}},</p>
<p>A reminder that your {{.ServiceName}} appointment is on {{.When}}.</p>
{{template "footer" .}}{{end}}

{{define "unmatched_payment_digest"}}{{template "header"}}
<h2>Unmatched payment events since {{.Since}}</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Received</th><th>Type</th><th>Reference</th><th>Amount</th><th>Invoice</th><th>Booking</th><th>Reason</th></tr>
{{range .Rows}}<tr><td>{{.Received}}</td><td>{{.Type}}</td><td>{{.Reference}}</td><td>{{.Amount}}</td><td>{{.Invoice}}</td><td>{{.Booking}}</td><td>{{.Reason}}</td></tr>
{{end}}</table>
{{template "footer" .}}{{end}}
`

var pages = template.Must(template.New("notifications").Parse(layout))

type bookingView struct {
	ShopName      string
	CustomerName  string
	ServiceName   string
	StaffName     string
	When          string
	Amount        string
	Commission    string
	BookingID     string
	Reference     string
	InvoiceNumber string
}

type digestRow struct {
	Received  string
	Type      string
	Reference string
	Amount    string
	Invoice   string
	Booking   string
	Reason    string
}

// Templates renders the message for each notification kind. Methods return
// nil when the intended audience has no contact details.
type Templates struct {
	shopName  string
	shopEmail string
	loc       *time.Location
}

func NewTemplates(shopName, shopEmail string, loc *time.Location) *Templates {
	if loc == nil {
		loc = time.UTC
	}
	if shopName == "" {
		shopName = "Our shop"
	}
	return &Templates{shopName: shopName, shopEmail: shopEmail, loc: loc}
}

func (t *Templates) view(b *domain.Booking, staff *domain.Staff) bookingView {
	v := bookingView{
		ShopName:     t.shopName,
		CustomerName: b.CustomerName,
		ServiceName:  b.ServiceName,
		When:         b.ScheduledAt.In(t.loc).Format("Mon 2 Jan 2006 15:04"),
		Amount:       FormatMoney(b.Price, b.Currency),
		BookingID:    b.ID,
	}
	if b.PaymentAmount.Valid {
		v.Amount = FormatMoney(b.PaymentAmount.Decimal, b.Currency)
	}
	if b.PaymentReference != nil {
		v.Reference = *b.PaymentReference
	}
	if b.InvoiceNumber != nil {
		v.InvoiceNumber = *b.InvoiceNumber
	}
	if staff != nil {
		v.StaffName = staff.Name
	}
	return v
}

func (t *Templates) render(kind domain.MessageKind, data any) string {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, string(kind), data); err != nil {
		logger.Error("Failed to render notification template", "kind", kind, "error", err)
		return ""
	}
	return buf.String()
}

func (t *Templates) toStaff(kind domain.MessageKind, b *domain.Booking, staff *domain.Staff, subject, text string) *domain.Message {
	v := t.view(b, staff)
	msg := &domain.Message{
		Kind:         kind,
		Subject:      subject,
		HTML:         t.render(kind, v),
		Text:         text,
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
	}
	if staff != nil && staff.Email != "" {
		msg.To = domain.Recipients{staff.Email}
	}
	if staff != nil && staff.Phone != "" {
		msg.Phones = []string{staff.Phone}
	}
	return msg
}

func (t *Templates) toCustomer(kind domain.MessageKind, b *domain.Booking, staff *domain.Staff, subject, text string) *domain.Message {
	if b.CustomerEmail == "" && b.CustomerPhone == "" {
		return nil
	}
	msg := &domain.Message{
		Kind:         kind,
		Subject:      subject,
		HTML:         t.render(kind, t.view(b, staff)),
		Text:         text,
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
	}
	if b.CustomerEmail != "" {
		msg.To = domain.Recipients{b.CustomerEmail}
	}
	if b.CustomerPhone != "" {
		msg.Phones = []string{b.CustomerPhone}
	}
	return msg
}

func (t *Templates) BookingCreated(b *domain.Booking, staff *domain.Staff) *domain.Message {
	v := t.view(b, staff)
	return t.toStaff(domain.KindBookingCreated, b, staff,
		fmt.Sprintf("New booking: %s on %s", b.ServiceName, v.When),
		fmt.Sprintf("New booking: %s, %s on %s.", b.CustomerName, b.ServiceName, v.When))
}

func (t *Templates) CustomerConfirmation(b *domain.Booking, staff *domain.Staff) *domain.Message {
	v := t.view(b, staff)
	return t.toCustomer(domain.KindCustomerConfirmation, b, staff,
		fmt.Sprintf("Appointment booked: %s", v.When),
		fmt.Sprintf("%s: your %s appointment is booked for %s.", t.shopName, b.ServiceName, v.When))
}

// PaymentConfirmed goes to the staff member and includes their commission.
func (t *Templates) PaymentConfirmed(b *domain.Booking, staff *domain.Staff, txn *domain.Transaction) *domain.Message {
	v := t.view(b, staff)
	if txn != nil {
		v.Commission = FormatMoney(txn.CommissionAmount, txn.Currency)
	}
	msg := t.toStaff(domain.KindPaymentConfirmed, b, staff,
		fmt.Sprintf("Payment received: %s", v.Amount),
		fmt.Sprintf("Payment of %s received from %s for %s.", v.Amount, b.CustomerName, b.ServiceName))
	msg.HTML = t.render(domain.KindPaymentConfirmed, v)
	return msg
}

func (t *Templates) PaymentReceipt(b *domain.Booking) *domain.Message {
	v := t.view(b, nil)
	return t.toCustomer(domain.KindPaymentReceipt, b, nil,
		fmt.Sprintf("Payment receipt from %s", t.shopName),
		fmt.Sprintf("%s: we received your payment of %s. Thank you!", t.shopName, v.Amount))
}

func (t *Templates) PaymentFailed(b *domain.Booking, staff *domain.Staff, reference string) *domain.Message {
	v := t.view(b, staff)
	v.Reference = reference
	msg := t.toStaff(domain.KindPaymentFailed, b, staff,
		fmt.Sprintf("Payment failed: %s", b.CustomerName),
		fmt.Sprintf("Payment failed for %s, %s on %s (ref %s).", b.CustomerName, b.ServiceName, v.When, reference))
	msg.HTML = t.render(domain.KindPaymentFailed, v)
	return msg
}

func (t *Templates) RefundIssued(b *domain.Booking, staff *domain.Staff) *domain.Message {
	v := t.view(b, staff)
	return t.toStaff(domain.KindRefundIssued, b, staff,
		fmt.Sprintf("Refund issued: %s", v.Amount),
		fmt.Sprintf("Refunded %s to %s for %s.", v.Amount, b.CustomerName, b.ServiceName))
}

func (t *Templates) AppointmentReminder(b *domain.Booking) *domain.Message {
	v := t.view(b, nil)
	return t.toCustomer(domain.KindAppointmentReminder, b, nil,
		fmt.Sprintf("Reminder: %s on %s", b.ServiceName, v.When),
		fmt.Sprintf("%s reminder: %s on %s.", t.shopName, b.ServiceName, v.When))
}

// UnmatchedDigest lists payment events that could not be applied. It goes
// to the shop address; nil when there is nothing to report.
func (t *Templates) UnmatchedDigest(diags []domain.PaymentDiagnostic, since time.Time) *domain.Message {
	if len(diags) == 0 {
		return nil
	}
	rows := make([]digestRow, 0, len(diags))
	for _, d := range diags {
		rows = append(rows, digestRow{
			Received:  d.CreatedAt.In(t.loc).Format("2006-01-02 15:04"),
			Type:      string(d.EventType),
			Reference: d.Reference,
			Amount:    FormatMoney(domain.AmountFromMinor(d.AmountMinor), d.Currency),
			Invoice:   d.InvoiceNumber,
			Booking:   d.BookingID,
			Reason:    d.Reason,
		})
	}
	data := struct {
		ShopName string
		Since    string
		Rows     []digestRow
	}{t.shopName, since.In(t.loc).Format("2006-01-02 15:04"), rows}

	msg := &domain.Message{
		Kind:    domain.KindUnmatchedDigest,
		Subject: fmt.Sprintf("%d unmatched payment event(s)", len(diags)),
		HTML:    t.render(domain.KindUnmatchedDigest, data),
		Text:    fmt.Sprintf("%d payment event(s) could not be matched to a booking. Check the diagnostics log.", len(diags)),
	}
	if t.shopEmail != "" {
		msg.To = domain.Recipients{t.shopEmail}
	}
	return msg
}
