package billing

import (
	"strings"
	"time"

	"github.com/nurpe/faktura/internal/model"
)

// Explicit user actions only. Paid and cancelled are terminal.
var transitions = map[model.InvoiceStatus][]model.InvoiceStatus{
	model.InvoiceStatusDraft: {model.InvoiceStatusSent, model.InvoiceStatusCancelled},
	model.InvoiceStatusSent:  {model.InvoiceStatusPaid, model.InvoiceStatusCancelled},
}

// CanTransition reports whether a stored status may move to the target.
// Overdue is not a stored status; an overdue invoice transitions as sent.
func CanTransition(from, to model.InvoiceStatus) bool {
	if from == model.InvoiceStatusOverdue {
		from = model.InvoiceStatusSent
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsOverdue is true for a sent invoice whose due date lies strictly before now.
func IsOverdue(invoice model.Invoice, now time.Time) bool {
	return invoice.Status == model.InvoiceStatusSent &&
		invoice.DueDate != nil &&
		invoice.DueDate.Before(now)
}

// DisplayStatus layers the derived overdue state on top of the stored status.
func DisplayStatus(invoice model.Invoice, now time.Time) model.InvoiceStatus {
	if IsOverdue(invoice, now) {
		return model.InvoiceStatusOverdue
	}
	return invoice.Status
}

func ParseStatus(raw string) (model.InvoiceStatus, bool) {
	status := model.InvoiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case model.InvoiceStatusDraft,
		model.InvoiceStatusSent,
		model.InvoiceStatusPaid,
		model.InvoiceStatusCancelled,
		model.InvoiceStatusOverdue:
		return status, true
	default:
		return "", false
	}
}

var statusLabels = map[model.InvoiceStatus]string{
	model.InvoiceStatusDraft:     "Entwurf",
	model.InvoiceStatusSent:      "Gesendet",
	model.InvoiceStatusPaid:      "Bezahlt",
	model.InvoiceStatusOverdue:   "Überfällig",
	model.InvoiceStatusCancelled: "Storniert",
}

// StatusLabel is the German label printed on documents and exports.
func StatusLabel(status model.InvoiceStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
