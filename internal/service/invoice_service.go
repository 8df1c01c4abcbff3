package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/config"
	"github.com/nurpe/faktura/internal/model"
)

type InvoiceService struct {
	invoices InvoiceStore
	contacts ContactLookup
	pdf      PDFGenerator
	excel    ExcelGenerator
	defaults config.InvoicesConfig
	log      zerolog.Logger
	now      func() time.Time
}

type InvoiceInput struct {
	ContactID    *uuid.UUID
	CustomerName string
	Title        *string
	Date         time.Time
	DueDate      *time.Time
	Notes        *string
	Items        []LineItemInput
}

// LineItemInput leaves Quantity and VATRate nil to take the defaults
// (one unit, the configured VAT rate).
type LineItemInput struct {
	Description string
	Quantity    *float64
	Unit        string
	UnitPrice   float64
	VATRate     *float64
}

func NewInvoiceService(
	invoices InvoiceStore,
	contacts ContactLookup,
	pdf PDFGenerator,
	excel ExcelGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *InvoiceService {
	defaults := cfg.Invoices
	if defaults.NumberRetries < 1 {
		defaults.NumberRetries = 1
	}
	if strings.TrimSpace(defaults.DefaultUnit) == "" {
		defaults.DefaultUnit = "Stk"
	}
	return &InvoiceService{
		invoices: invoices,
		contacts: contacts,
		pdf:      pdf,
		excel:    excel,
		defaults: defaults,
		log:      log.With().Str("component", "invoices").Logger(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// List returns the account's invoices narrowed by a free-text query and an
// optional display status.
func (s *InvoiceService) List(
	ctx context.Context,
	principal model.Principal,
	query string,
	status *model.InvoiceStatus,
) ([]model.Invoice, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	invoices, err := s.invoices.ListInvoices(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return billing.FilterInvoices(invoices, strings.TrimSpace(query), status, s.now()), nil
}

func (s *InvoiceService) Summary(ctx context.Context, principal model.Principal) (*model.InvoiceSummary, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	invoices, err := s.invoices.ListInvoices(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	summary := billing.Summarize(invoices, s.now())
	return &summary, nil
}

// Get loads an invoice with its items. Totals are recomputed from the items
// rather than read from the stored header.
func (s *InvoiceService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.InvoiceDocument, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	invoice, err := s.invoices.GetInvoice(ctx, principal.UserID, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !principal.Owns(invoice) {
		return nil, ErrNotFound
	}
	items, err := s.invoices.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	doc := &model.InvoiceDocument{
		Invoice: *invoice,
		Items:   items,
		Totals:  billing.Totals(items),
		Overdue: billing.IsOverdue(*invoice, s.now()),
	}
	if invoice.ContactID != nil {
		if err := s.attachCustomer(ctx, principal, *invoice.ContactID, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// attachCustomer adds the linked contact and, for organizations, its primary
// person. A contact deleted since the invoice was saved is skipped.
func (s *InvoiceService) attachCustomer(
	ctx context.Context,
	principal model.Principal,
	contactID uuid.UUID,
	doc *model.InvoiceDocument,
) error {
	contact, err := s.contacts.GetContact(ctx, principal.UserID, contactID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	doc.Customer = contact
	if contact.Type != model.ContactTypeOrganization {
		return nil
	}

	persons, err := s.contacts.ListPersons(ctx, principal.UserID, contact.ID)
	if err != nil {
		return err
	}
	for i := range persons {
		if persons[i].IsPrimary {
			doc.ContactPerson = &persons[i]
			return nil
		}
	}
	if len(persons) > 0 {
		doc.ContactPerson = &persons[0]
	}
	return nil
}

// Create saves a new draft under the next free number of the current year,
// then its line items. A failure while saving items leaves the header in place.
func (s *InvoiceService) Create(ctx context.Context, principal model.Principal, input InvoiceInput) (*model.InvoiceDocument, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	contactID, customerName, err := s.resolveCustomer(ctx, principal, input)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	date := dateOnly(input.Date)
	if date.IsZero() {
		date = dateOnly(s.now())
	}

	invoice := model.Invoice{
		UserID:       principal.UserID,
		ContactID:    contactID,
		CustomerName: customerName,
		Title:        input.Title,
		Date:         date,
		DueDate:      dateOnlyPtr(input.DueDate),
		Status:       model.InvoiceStatusDraft,
		VATRate:      s.defaults.DefaultVATRate,
		Currency:     model.CurrencyCHF,
		Notes:        input.Notes,
	}
	totals := billing.ApplyTotals(&invoice, items)

	created, err := s.createNumbered(ctx, invoice)
	if err != nil {
		return nil, err
	}

	saved, err := s.invoices.ReplaceLineItems(ctx, created.ID, items)
	if err != nil {
		s.log.Error().Err(err).Str("invoice_id", created.ID.String()).Msg("invoice saved without line items")
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", created.ID.String()).
		Str("number", created.Number).
		Float64("gross", totals.Gross).
		Msg("invoice created")

	return &model.InvoiceDocument{
		Invoice: *created,
		Items:   saved,
		Totals:  totals,
		Overdue: billing.IsOverdue(*created, s.now()),
	}, nil
}

// Update rewrites the header and replaces all line items. The number, status
// and VAT rate snapshot are kept.
func (s *InvoiceService) Update(
	ctx context.Context,
	principal model.Principal,
	id uuid.UUID,
	input InvoiceInput,
) (*model.InvoiceDocument, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	existing, err := s.invoices.GetInvoice(ctx, principal.UserID, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	contactID, customerName, err := s.resolveCustomer(ctx, principal, input)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	invoice := *existing
	invoice.ContactID = contactID
	invoice.CustomerName = customerName
	invoice.Title = input.Title
	if date := dateOnly(input.Date); !date.IsZero() {
		invoice.Date = date
	}
	invoice.DueDate = dateOnlyPtr(input.DueDate)
	invoice.Notes = input.Notes
	totals := billing.ApplyTotals(&invoice, items)

	updated, err := s.invoices.UpdateInvoice(ctx, invoice)
	if err != nil {
		return nil, mapStoreError(err)
	}
	saved, err := s.invoices.ReplaceLineItems(ctx, updated.ID, items)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceDocument{
		Invoice: *updated,
		Items:   saved,
		Totals:  totals,
		Overdue: billing.IsOverdue(*updated, s.now()),
	}, nil
}

func (s *InvoiceService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := s.invoices.DeleteInvoice(ctx, principal.UserID, id); err != nil {
		return mapStoreError(err)
	}
	s.log.Info().Str("invoice_id", id.String()).Msg("invoice deleted")
	return nil
}

func (s *InvoiceService) MarkSent(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.InvoiceDocument, error) {
	return s.transition(ctx, principal, id, model.InvoiceStatusSent)
}

func (s *InvoiceService) MarkPaid(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.InvoiceDocument, error) {
	return s.transition(ctx, principal, id, model.InvoiceStatusPaid)
}

func (s *InvoiceService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.InvoiceDocument, error) {
	return s.transition(ctx, principal, id, model.InvoiceStatusCancelled)
}

// RenderPDF prints a single invoice.
func (s *InvoiceService) RenderPDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*FileResult, error) {
	doc, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return &FileResult{
		FileName:    buildPDFFileName(doc.Invoice),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

// ExportXLSX writes the filtered invoice list to a spreadsheet.
func (s *InvoiceService) ExportXLSX(
	ctx context.Context,
	principal model.Principal,
	query string,
	status *model.InvoiceStatus,
) (*FileResult, error) {
	invoices, err := s.List(ctx, principal, query, status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := model.InvoiceReport{
		GeneratedAt: now,
		Query:       strings.TrimSpace(query),
		Status:      status,
		Rows:        make([]model.InvoiceReportRow, 0, len(invoices)),
		Summary:     billing.Summarize(invoices, now),
	}
	for _, invoice := range invoices {
		report.Rows = append(report.Rows, model.InvoiceReportRow{
			Invoice: invoice,
			Status:  billing.DisplayStatus(invoice, now),
		})
	}

	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, fmt.Errorf("render invoice export: %w", err)
	}
	return &FileResult{
		FileName:    fmt.Sprintf("rechnungen-%s.xlsx", now.Format("20060102")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *InvoiceService) transition(
	ctx context.Context,
	principal model.Principal,
	id uuid.UUID,
	target model.InvoiceStatus,
) (*model.InvoiceDocument, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	invoice, err := s.invoices.GetInvoice(ctx, principal.UserID, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !billing.CanTransition(invoice.Status, target) {
		return nil, fmt.Errorf("%w: %s invoice cannot become %s", ErrInvalidTransition, invoice.Status, target)
	}
	if err := s.invoices.UpdateInvoiceStatus(ctx, principal.UserID, id, target); err != nil {
		return nil, mapStoreError(err)
	}

	s.log.Info().
		Str("invoice_id", id.String()).
		Str("from", string(invoice.Status)).
		Str("to", string(target)).
		Msg("invoice status changed")

	return s.Get(ctx, principal, id)
}

// createNumbered counts this year's invoices and tries successive numbers
// until the per-account unique index accepts one. A failed count starts the
// sequence at one. After a clash the sequence continues above the highest
// number in use, which covers gaps left by deleted invoices.
func (s *InvoiceService) createNumbered(ctx context.Context, invoice model.Invoice) (*model.Invoice, error) {
	year := s.now().Year()
	seq, err := s.invoices.CountInvoicesByNumberPrefix(ctx, invoice.UserID, billing.InvoiceNumberPrefix(year))
	if err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("invoice count failed, numbering from the start")
		seq = 0
	}

	var lastErr error
	for attempt := 0; attempt < s.defaults.NumberRetries; attempt++ {
		invoice.Number = billing.NextInvoiceNumber(year, seq)
		created, err := s.invoices.CreateInvoice(ctx, invoice)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
		s.log.Warn().Str("number", invoice.Number).Msg("invoice number taken, retrying")
		seq = s.sequenceAfterClash(ctx, invoice.UserID, year, seq)
	}
	return nil, fmt.Errorf("%w: no free invoice number after %d attempts: %v", ErrConflict, s.defaults.NumberRetries, lastErr)
}

func (s *InvoiceService) sequenceAfterClash(ctx context.Context, userID uuid.UUID, year int, seq int64) int64 {
	latest, err := s.invoices.MaxInvoiceNumber(ctx, userID, billing.InvoiceNumberPrefix(year))
	if err != nil {
		s.log.Warn().Err(err).Int("year", year).Msg("highest invoice number lookup failed")
		return seq + 1
	}
	if highest, ok := billing.ParseInvoiceSequence(latest, year); ok && highest > seq {
		return highest
	}
	return seq + 1
}

// resolveCustomer takes the name snapshot from the linked contact, or the
// free-text name when no contact is linked.
func (s *InvoiceService) resolveCustomer(
	ctx context.Context,
	principal model.Principal,
	input InvoiceInput,
) (*uuid.UUID, string, error) {
	if input.ContactID != nil && *input.ContactID != uuid.Nil {
		contact, err := s.contacts.GetContact(ctx, principal.UserID, *input.ContactID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", invalid("contact_id", "unknown contact")
			}
			return nil, "", err
		}
		name := billing.ContactDisplayName(*contact)
		if name == "" {
			name = strings.TrimSpace(input.CustomerName)
		}
		id := contact.ID
		return &id, name, nil
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, "", invalid("customer", "select a contact or enter a customer name")
	}
	return nil, name, nil
}

func (s *InvoiceService) buildItems(inputs []LineItemInput) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(inputs))
	for i, input := range inputs {
		quantity := 1.0
		if input.Quantity != nil {
			quantity = *input.Quantity
		}
		if quantity < 0 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "must not be negative")
		}
		vatRate := s.defaults.DefaultVATRate
		if input.VATRate != nil {
			vatRate = *input.VATRate
		}
		if vatRate < 0 || vatRate > 100 {
			return nil, invalid(fmt.Sprintf("items[%d].vat_rate", i), "must be between 0 and 100")
		}
		unit := strings.TrimSpace(input.Unit)
		if unit == "" {
			unit = s.defaults.DefaultUnit
		}

		item := model.LineItem{
			Description: strings.TrimSpace(input.Description),
			Quantity:    quantity,
			Unit:        unit,
			UnitPrice:   input.UnitPrice,
			VATRate:     vatRate,
			Position:    i,
		}
		item.Total = billing.LineTotal(item)
		items = append(items, item)
	}
	return items, nil
}

func buildPDFFileName(invoice model.Invoice) string {
	number := sanitizeFileName(invoice.Number)
	if number == "" {
		number = invoice.ID.String()
	}
	return fmt.Sprintf("rechnung-%s.pdf", number)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
