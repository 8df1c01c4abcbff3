package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/faktura/internal/model"
)

func strPtr(s string) *string { return &s }

func TestFilterContacts(t *testing.T) {
	contacts := []model.Contact{
		{CustomerNumber: "KD-1001", OrganizationName: strPtr("Muster AG")},
		{CustomerNumber: "KD-1002", FamilyName: strPtr("Weber")},
	}

	got := FilterContacts(contacts, "mus")
	require.Len(t, got, 1)
	assert.Equal(t, "KD-1001", got[0].CustomerNumber)

	assert.Len(t, FilterContacts(contacts, ""), 2)
	assert.Len(t, FilterContacts(contacts, "WEB"), 1)
	assert.Empty(t, FilterContacts(contacts, "zürich"))
}

func TestFilterContactsAcrossNameFields(t *testing.T) {
	contacts := []model.Contact{
		{GivenName: strPtr("Hans"), FamilyName: strPtr("Müller"), Email: strPtr("hans@example.ch")},
	}

	assert.Len(t, FilterContacts(contacts, "hans müller"), 1)
	assert.Len(t, FilterContacts(contacts, "MÜLLER"), 1)
	assert.Len(t, FilterContacts(contacts, "example.ch"), 1)
}

func TestFilterInvoices(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	invoices := []model.Invoice{
		{Number: "RE-2026-001", CustomerName: "Muster AG", Title: strPtr("Webentwicklung März"), Status: model.InvoiceStatusDraft},
		{Number: "RE-2026-002", CustomerName: "Hans Weber", Status: model.InvoiceStatusSent, DueDate: &past},
		{Number: "RE-2026-003", CustomerName: "Beta GmbH", Status: model.InvoiceStatusSent},
		{Number: "RE-2026-004", CustomerName: "Muster AG", Status: model.InvoiceStatusPaid},
	}

	assert.Len(t, FilterInvoices(invoices, "", nil, now), 4)
	assert.Len(t, FilterInvoices(invoices, "muster", nil, now), 2)
	assert.Len(t, FilterInvoices(invoices, "MÄRZ", nil, now), 1)
	assert.Len(t, FilterInvoices(invoices, "2026-003", nil, now), 1)

	overdue := model.InvoiceStatusOverdue
	got := FilterInvoices(invoices, "", &overdue, now)
	require.Len(t, got, 1)
	assert.Equal(t, "RE-2026-002", got[0].Number)

	sent := model.InvoiceStatusSent
	got = FilterInvoices(invoices, "", &sent, now)
	require.Len(t, got, 1)
	assert.Equal(t, "RE-2026-003", got[0].Number)

	paid := model.InvoiceStatusPaid
	assert.Len(t, FilterInvoices(invoices, "muster", &paid, now), 1)
}
