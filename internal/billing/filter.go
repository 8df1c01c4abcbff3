package billing

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/nurpe/faktura/internal/model"
)

// FilterInvoices matches query case-insensitively against number, customer
// name and title. A non-nil status must equal the display status, so
// "overdue" selects sent invoices past due and "sent" excludes them.
func FilterInvoices(invoices []model.Invoice, query string, status *model.InvoiceStatus, now time.Time) []model.Invoice {
	folder := cases.Fold()
	needle := folder.String(query)

	result := make([]model.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if status != nil && DisplayStatus(invoice, now) != *status {
			continue
		}
		if !containsAny(folder, needle, invoice.Number, invoice.CustomerName, deref(invoice.Title)) {
			continue
		}
		result = append(result, invoice)
	}
	return result
}

// FilterContacts matches query against organization name, given name,
// family name and email joined by spaces, so "hans weber" finds a person
// stored as given "Hans", family "Weber".
func FilterContacts(contacts []model.Contact, query string) []model.Contact {
	folder := cases.Fold()
	needle := folder.String(query)

	result := make([]model.Contact, 0, len(contacts))
	for _, contact := range contacts {
		haystack := strings.Join([]string{
			deref(contact.OrganizationName),
			deref(contact.GivenName),
			deref(contact.FamilyName),
			deref(contact.Email),
		}, " ")
		if !strings.Contains(folder.String(haystack), needle) {
			continue
		}
		result = append(result, contact)
	}
	return result
}

func containsAny(folder cases.Caser, needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
