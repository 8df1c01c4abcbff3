package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/faktura/internal/model"
)

// ContactLookup resolves a single contact of an account and its persons.
type ContactLookup interface {
	GetContact(ctx context.Context, userID, id uuid.UUID) (*model.Contact, error)
	ListPersons(ctx context.Context, userID, contactID uuid.UUID) ([]model.ContactPerson, error)
}

type ContactStore interface {
	ContactLookup
	ListContacts(ctx context.Context, userID uuid.UUID) ([]model.Contact, error)
	LatestCustomerNumber(ctx context.Context, userID uuid.UUID) (string, error)
	CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	UpdateContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error
	ReplacePersons(ctx context.Context, userID, contactID uuid.UUID, persons []model.ContactPerson) ([]model.ContactPerson, error)
}

type InvoiceStore interface {
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error)
	CountInvoicesByNumberPrefix(ctx context.Context, userID uuid.UUID, prefix string) (int64, error)
	MaxInvoiceNumber(ctx context.Context, userID uuid.UUID, prefix string) (string, error)
	CreateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, userID, id uuid.UUID, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]model.LineItem, error)
	ReplaceLineItems(ctx context.Context, invoiceID uuid.UUID, items []model.LineItem) ([]model.LineItem, error)
}

type PDFGenerator interface {
	Generate(doc model.InvoiceDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(report model.InvoiceReport) ([]byte, error)
}

type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}
