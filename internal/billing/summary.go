package billing

import (
	"strings"
	"time"

	"github.com/nurpe/faktura/internal/model"
)

// Summarize computes the list KPIs from stored gross amounts. Overdue
// invoices are counted apart from the other open (sent) ones.
func Summarize(invoices []model.Invoice, now time.Time) model.InvoiceSummary {
	summary := model.InvoiceSummary{Total: len(invoices)}
	for _, invoice := range invoices {
		switch DisplayStatus(invoice, now) {
		case model.InvoiceStatusSent:
			summary.Open += invoice.GrossAmount
			summary.OpenCount++
		case model.InvoiceStatusOverdue:
			summary.Overdue += invoice.GrossAmount
			summary.OverdueCount++
		case model.InvoiceStatusPaid:
			summary.Paid += invoice.GrossAmount
			summary.PaidCount++
		}
	}
	return summary
}

// ContactDisplayName is the name copied onto invoices: the organization name,
// or "given family" for individuals.
func ContactDisplayName(contact model.Contact) string {
	if name := strings.TrimSpace(deref(contact.OrganizationName)); name != "" {
		return name
	}
	return strings.TrimSpace(deref(contact.GivenName) + " " + deref(contact.FamilyName))
}
