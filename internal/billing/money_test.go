package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nurpe/faktura/internal/model"
)

func TestFormatCHF(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "CHF 0.00"},
		{1234.5, "CHF 1'234.50"},
		{999.999, "CHF 1'000.00"},
		{1234567.891, "CHF 1'234'567.89"},
		{-55300, "CHF -55'300.00"},
		{0.005, "CHF 0.01"},
		{123, "CHF 123.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCHF(tt.amount))
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	invoices := []model.Invoice{
		{Status: model.InvoiceStatusDraft, GrossAmount: 10},
		{Status: model.InvoiceStatusSent, GrossAmount: 100},
		{Status: model.InvoiceStatusSent, GrossAmount: 250, DueDate: &past},
		{Status: model.InvoiceStatusPaid, GrossAmount: 1000},
		{Status: model.InvoiceStatusCancelled, GrossAmount: 5},
	}

	summary := Summarize(invoices, now)

	assert.Equal(t, 5, summary.Total)
	assert.InDelta(t, 100, summary.Open, 1e-9)
	assert.Equal(t, 1, summary.OpenCount)
	assert.InDelta(t, 250, summary.Overdue, 1e-9)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.InDelta(t, 1000, summary.Paid, 1e-9)
	assert.Equal(t, 1, summary.PaidCount)
}

func TestContactDisplayName(t *testing.T) {
	assert.Equal(t, "Muster AG", ContactDisplayName(model.Contact{OrganizationName: strPtr(" Muster AG ")}))
	assert.Equal(t, "Hans Weber", ContactDisplayName(model.Contact{GivenName: strPtr("Hans"), FamilyName: strPtr("Weber")}))
	assert.Equal(t, "Weber", ContactDisplayName(model.Contact{OrganizationName: strPtr(""), FamilyName: strPtr("Weber")}))
}
