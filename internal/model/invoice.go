package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"

	// InvoiceStatusOverdue is derived from a sent invoice past its due date.
	// It is never written to the store.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

const CurrencyCHF = "CHF"

type Invoice struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Number    string
	ContactID *uuid.UUID
	// CustomerName is copied from the contact at save time and is not
	// re-synced when the contact is edited later.
	CustomerName string
	Title        *string
	Date         time.Time
	DueDate      *time.Time
	Status       InvoiceStatus
	NetAmount    float64
	VATAmount    float64
	GrossAmount  float64
	VATRate      float64
	Currency     string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetUserID reports the owning account.
func (i *Invoice) GetUserID() uuid.UUID {
	return i.UserID
}

type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    float64
	Unit        string
	UnitPrice   float64
	VATRate     float64
	Total       float64
	Position    int
}

type InvoiceTotals struct {
	Net   float64
	VAT   float64
	Gross float64
}

// InvoiceDocument is an invoice as shown or printed: its items, totals
// recomputed from those items, and the linked contact when it still exists.
// ContactPerson is the primary person of a linked organization.
type InvoiceDocument struct {
	Invoice       Invoice
	Items         []LineItem
	Totals        InvoiceTotals
	Overdue       bool
	Customer      *Contact
	ContactPerson *ContactPerson
}
