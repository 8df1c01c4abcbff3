package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/model"
	"github.com/nurpe/faktura/internal/repository"
	"github.com/nurpe/faktura/internal/testutil"
)

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

type stubPDF struct {
	last model.InvoiceDocument
}

func (s *stubPDF) Generate(doc model.InvoiceDocument) ([]byte, error) {
	s.last = doc
	return []byte("%PDF-stub"), nil
}

type stubExcel struct {
	last model.InvoiceReport
}

func (s *stubExcel) Generate(report model.InvoiceReport) ([]byte, error) {
	s.last = report
	return []byte("xlsx"), nil
}

// countFailingStore makes the yearly count fail while everything else hits
// the real repository.
type countFailingStore struct {
	InvoiceStore
}

func (countFailingStore) CountInvoicesByNumberPrefix(context.Context, uuid.UUID, string) (int64, error) {
	return 0, errors.New("connection reset")
}

type invoiceFixture struct {
	svc      *InvoiceService
	contacts *ContactService
	invoices *repository.InvoiceRepository
	pdf      *stubPDF
	excel    *stubExcel
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	contactRepo := repository.NewContactRepository(gdb)
	invoiceRepo := repository.NewInvoiceRepository(gdb)

	f := &invoiceFixture{
		contacts: NewContactService(contactRepo, testConfig(), zerolog.Nop()),
		invoices: invoiceRepo,
		pdf:      &stubPDF{},
		excel:    &stubExcel{},
	}
	f.svc = NewInvoiceService(invoiceRepo, contactRepo, f.pdf, f.excel, testConfig(), zerolog.Nop())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func floatPtr(v float64) *float64 {
	return &v
}

func simpleInput(customer string, items ...LineItemInput) InvoiceInput {
	return InvoiceInput{
		CustomerName: customer,
		Date:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Items:        items,
	}
}

func TestInvoiceService_CreateNumbersPerYear(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	first, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-001", first.Invoice.Number)
	assert.Equal(t, model.InvoiceStatusDraft, first.Invoice.Status)
	assert.Equal(t, "CHF", first.Invoice.Currency)
	assert.InDelta(t, 8.1, first.Invoice.VATRate, 1e-9)

	second, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-002", second.Invoice.Number)

	other, err := f.svc.Create(ctx, signedIn(), simpleInput("Muster AG"))
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-001", other.Invoice.Number)
}

func TestInvoiceService_CreateComputesTotalsAndDefaults(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG",
		LineItemInput{Description: "Beratung", Quantity: floatPtr(10), Unit: "h", UnitPrice: 150},
		LineItemInput{Description: "Lizenz", UnitPrice: 200, VATRate: floatPtr(0)},
	))
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "h", doc.Items[0].Unit)
	assert.InDelta(t, 1500, doc.Items[0].Total, 1e-9)
	assert.Equal(t, "Stk", doc.Items[1].Unit)
	assert.InDelta(t, 1, doc.Items[1].Quantity, 1e-9)
	assert.InDelta(t, 0, doc.Items[1].VATRate, 1e-9)

	assert.InDelta(t, 1700, doc.Totals.Net, 1e-9)
	assert.InDelta(t, 121.5, doc.Totals.VAT, 1e-9)
	assert.InDelta(t, 1821.5, doc.Totals.Gross, 1e-9)

	stored, err := f.svc.Get(ctx, principal, doc.Invoice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1821.5, stored.Invoice.GrossAmount, 1e-9)
	assert.InDelta(t, 1821.5, stored.Totals.Gross, 1e-9)
	assert.Equal(t, "Beratung", stored.Items[0].Description)
	assert.Equal(t, "Lizenz", stored.Items[1].Description)
}

func TestInvoiceService_CreateDefaultsDateToToday(t *testing.T) {
	f := newInvoiceFixture(t)

	doc, err := f.svc.Create(context.Background(), signedIn(), InvoiceInput{CustomerName: "Muster AG"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", doc.Invoice.Date.Format("2006-01-02"))
	assert.Nil(t, doc.Invoice.DueDate)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	cases := []struct {
		name  string
		input InvoiceInput
		field string
	}{
		{name: "no customer", input: simpleInput("   "), field: "customer"},
		{name: "unknown contact", input: InvoiceInput{ContactID: uuidPtr(uuid.New())}, field: "contact_id"},
		{
			name:  "negative quantity",
			input: simpleInput("Muster AG", LineItemInput{Description: "x", Quantity: floatPtr(-1)}),
			field: "items[0].quantity",
		},
		{
			name:  "vat out of range",
			input: simpleInput("Muster AG", LineItemInput{Description: "x"}, LineItemInput{Description: "y", VATRate: floatPtr(120)}),
			field: "items[1].vat_rate",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, principal, tc.input)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	list, err := f.svc.List(ctx, principal, "", nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Create(ctx, model.Principal{}, simpleInput("Muster AG"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func TestInvoiceService_CustomerNameSnapshot(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	contact, err := f.contacts.Create(ctx, principal, organizationInput("Muster AG"))
	require.NoError(t, err)

	input := simpleInput("ignored")
	input.ContactID = &contact.Contact.ID
	doc, err := f.svc.Create(ctx, principal, input)
	require.NoError(t, err)
	assert.Equal(t, "Muster AG", doc.Invoice.CustomerName)
	require.NotNil(t, doc.Invoice.ContactID)

	_, err = f.contacts.Update(ctx, principal, contact.Contact.ID, organizationInput("Muster Holding AG"))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, principal, doc.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Muster AG", got.Invoice.CustomerName)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Muster Holding AG", *got.Customer.OrganizationName)

	require.NoError(t, f.contacts.Delete(ctx, principal, contact.Contact.ID))

	got, err = f.svc.Get(ctx, principal, doc.Invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Invoice.ContactID)
	assert.Nil(t, got.Customer)
	assert.Equal(t, "Muster AG", got.Invoice.CustomerName)
}

func TestInvoiceService_GetIncludesPrimaryPerson(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	org, err := f.contacts.Create(ctx, principal, organizationInput("Muster AG",
		PersonInput{Salutation: testutil.StrPtr("Frau"), GivenName: testutil.StrPtr("Eva"), FamilyName: "Keller"},
		PersonInput{FamilyName: "Meier"},
	))
	require.NoError(t, err)
	person, err := f.contacts.Create(ctx, principal, ContactInput{
		Type:       model.ContactTypeIndividual,
		GivenName:  testutil.StrPtr("Anna"),
		FamilyName: testutil.StrPtr("Weber"),
	})
	require.NoError(t, err)

	input := simpleInput("")
	input.ContactID = &org.Contact.ID
	orgInvoice, err := f.svc.Create(ctx, principal, input)
	require.NoError(t, err)

	input.ContactID = &person.Contact.ID
	personInvoice, err := f.svc.Create(ctx, principal, input)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, principal, orgInvoice.Invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ContactPerson)
	assert.Equal(t, "Keller", got.ContactPerson.FamilyName)
	assert.Equal(t, "KP-2001", got.ContactPerson.PersonNumber)

	got, err = f.svc.Get(ctx, principal, personInvoice.Invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Nil(t, got.ContactPerson)
}

func TestInvoiceService_CountFailureRetriesOnDuplicate(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	_, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)

	f.svc.invoices = countFailingStore{InvoiceStore: f.invoices}

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-002", doc.Invoice.Number)
}

func TestInvoiceService_CreateAfterDeletingEarlyInvoices(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	created := make([]*model.InvoiceDocument, 0, 10)
	for i := 0; i < 10; i++ {
		doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
		require.NoError(t, err)
		created = append(created, doc)
	}
	for _, doc := range created[:5] {
		require.NoError(t, f.svc.Delete(ctx, principal, doc.Invoice.ID))
	}

	for _, want := range []string{"RE-2026-011", "RE-2026-012", "RE-2026-013"} {
		doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
		require.NoError(t, err)
		assert.Equal(t, want, doc.Invoice.Number)
	}
}

func TestInvoiceService_CountFailureJumpsPastHighestNumber(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
		require.NoError(t, err)
	}
	f.svc.invoices = countFailingStore{InvoiceStore: f.invoices}

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-004", doc.Invoice.Number)
}

// takenStore reports every number as already used, as when concurrent
// writers keep winning the race.
type takenStore struct {
	InvoiceStore
}

func (takenStore) CreateInvoice(context.Context, model.Invoice) (*model.Invoice, error) {
	return nil, &repository.StoreError{Op: "create invoice", Err: gorm.ErrDuplicatedKey}
}

func TestInvoiceService_NumberRetriesExhausted(t *testing.T) {
	f := newInvoiceFixture(t)
	f.svc.invoices = takenStore{InvoiceStore: f.invoices}

	_, err := f.svc.Create(context.Background(), signedIn(), simpleInput("Muster AG"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInvoiceService_StatusTransitions(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	id := doc.Invoice.ID

	_, err = f.svc.MarkPaid(ctx, principal, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sent, err := f.svc.MarkSent(ctx, principal, id)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusSent, sent.Invoice.Status)

	_, err = f.svc.MarkSent(ctx, principal, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	paid, err := f.svc.MarkPaid(ctx, principal, id)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, paid.Invoice.Status)

	_, err = f.svc.Cancel(ctx, principal, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	draft, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	cancelled, err := f.svc.Cancel(ctx, principal, draft.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusCancelled, cancelled.Invoice.Status)

	_, err = f.svc.MarkSent(ctx, principal, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceService_OverdueIsDerived(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	pastDue := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)

	late := simpleInput("Spät AG", LineItemInput{Description: "x", UnitPrice: 100})
	late.DueDate = &pastDue
	lateDoc, err := f.svc.Create(ctx, principal, late)
	require.NoError(t, err)
	assert.False(t, lateDoc.Overdue, "drafts are never overdue")
	_, err = f.svc.MarkSent(ctx, principal, lateDoc.Invoice.ID)
	require.NoError(t, err)

	open := simpleInput("Pünktlich AG", LineItemInput{Description: "x", UnitPrice: 200})
	open.DueDate = &future
	openDoc, err := f.svc.Create(ctx, principal, open)
	require.NoError(t, err)
	_, err = f.svc.MarkSent(ctx, principal, openDoc.Invoice.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, principal, lateDoc.Invoice.ID)
	require.NoError(t, err)
	assert.True(t, got.Overdue)
	assert.Equal(t, model.InvoiceStatusSent, got.Invoice.Status)

	overdue := model.InvoiceStatusOverdue
	list, err := f.svc.List(ctx, principal, "", &overdue)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, lateDoc.Invoice.ID, list[0].ID)

	sent := model.InvoiceStatusSent
	list, err = f.svc.List(ctx, principal, "", &sent)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, openDoc.Invoice.ID, list[0].ID)

	summary, err := f.svc.Summary(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.InDelta(t, 108.1, summary.Overdue, 1e-9)
	assert.Equal(t, 1, summary.OpenCount)
	assert.InDelta(t, 216.2, summary.Open, 1e-9)

	paid, err := f.svc.MarkPaid(ctx, principal, lateDoc.Invoice.ID)
	require.NoError(t, err)
	assert.False(t, paid.Overdue)
}

func TestInvoiceService_UpdateReplacesItems(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG",
		LineItemInput{Description: "Alt", UnitPrice: 100},
	))
	require.NoError(t, err)

	input := simpleInput("Muster AG",
		LineItemInput{Description: "Neu A", Quantity: floatPtr(2), UnitPrice: 50},
		LineItemInput{Description: "Neu B", UnitPrice: 10, VATRate: floatPtr(2.6)},
	)
	input.Title = testutil.StrPtr("Projekt Q4")
	updated, err := f.svc.Update(ctx, principal, doc.Invoice.ID, input)
	require.NoError(t, err)

	assert.Equal(t, doc.Invoice.Number, updated.Invoice.Number)
	assert.Equal(t, "Projekt Q4", *updated.Invoice.Title)
	require.Len(t, updated.Items, 2)
	assert.InDelta(t, 110, updated.Totals.Net, 1e-9)
	assert.InDelta(t, 8.36, updated.Totals.VAT, 1e-9)

	got, err := f.svc.Get(ctx, principal, doc.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Neu A", got.Items[0].Description)
	assert.InDelta(t, 118.36, got.Invoice.GrossAmount, 1e-9)

	_, err = f.svc.Update(ctx, principal, uuid.New(), input)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceService_ListQueryAndDelete(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	a, err := f.svc.Create(ctx, principal, simpleInput("Muster AG"))
	require.NoError(t, err)
	withTitle := simpleInput("Beispiel GmbH")
	withTitle.Title = testutil.StrPtr("Webshop Relaunch")
	_, err = f.svc.Create(ctx, principal, withTitle)
	require.NoError(t, err)

	list, err := f.svc.List(ctx, principal, "relaunch", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Beispiel GmbH", list[0].CustomerName)

	list, err = f.svc.List(ctx, principal, "re-2026", nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, f.svc.Delete(ctx, principal, a.Invoice.ID))
	_, err = f.svc.Get(ctx, principal, a.Invoice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, principal, a.Invoice.ID), ErrNotFound)
}

func TestInvoiceService_Documents(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	principal := signedIn()

	doc, err := f.svc.Create(ctx, principal, simpleInput("Muster AG", LineItemInput{Description: "Beratung", UnitPrice: 1000}))
	require.NoError(t, err)

	file, err := f.svc.RenderPDF(ctx, principal, doc.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "rechnung-RE-2026-001.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, doc.Invoice.Number, f.pdf.last.Invoice.Number)
	assert.InDelta(t, 1081, f.pdf.last.Totals.Gross, 1e-9)

	draft := model.InvoiceStatusDraft
	export, err := f.svc.ExportXLSX(ctx, principal, "", &draft)
	require.NoError(t, err)
	assert.Equal(t, "rechnungen-20261017.xlsx", export.FileName)
	require.Len(t, f.excel.last.Rows, 1)
	assert.Equal(t, model.InvoiceStatusDraft, f.excel.last.Rows[0].Status)
	assert.Equal(t, 1, f.excel.last.Summary.Total)

	_, err = f.svc.RenderPDF(ctx, signedIn(), doc.Invoice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
