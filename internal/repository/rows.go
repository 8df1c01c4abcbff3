package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/faktura/internal/model"
)

type contactRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_contacts_user_number"`
	Type             string    `gorm:"size:20;not null;check:chk_contacts_type,type IN ('organization','individual')"`
	CustomerNumber   string    `gorm:"size:32;not null;uniqueIndex:uq_contacts_user_number"`
	OrganizationName *string   `gorm:"size:255"`
	Industry         *string   `gorm:"size:255"`
	VATNumber        *string   `gorm:"column:vat_number;size:64"`
	Website          *string   `gorm:"size:255"`
	IBAN             *string   `gorm:"column:iban;size:64"`
	GivenName        *string   `gorm:"size:255"`
	FamilyName       *string   `gorm:"size:255"`
	Email            *string   `gorm:"size:255"`
	Phone            *string   `gorm:"size:64"`
	Street           *string   `gorm:"size:255"`
	PostalCode       *string   `gorm:"size:16"`
	City             *string   `gorm:"size:255"`
	Country          string    `gorm:"size:2;not null;default:'CH'"`
	Notes            *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null;index"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (contactRow) TableName() string { return "contacts" }

type personRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContactID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PersonNumber string    `gorm:"size:32;not null"`
	Salutation   *string   `gorm:"size:32"`
	GivenName    *string   `gorm:"size:255"`
	FamilyName   string    `gorm:"size:255;not null"`
	Role         *string   `gorm:"size:255"`
	Email        *string   `gorm:"size:255"`
	Phone        *string   `gorm:"size:64"`
	Mobile       *string   `gorm:"size:64"`
	IsPrimary    bool      `gorm:"not null;default:false"`
	Position     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (personRow) TableName() string { return "contact_persons" }

type invoiceRow struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_invoices_user_number"`
	Number       string     `gorm:"size:32;not null;uniqueIndex:uq_invoices_user_number"`
	ContactID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string     `gorm:"size:255;not null"`
	Title        *string    `gorm:"size:255"`
	Date         time.Time  `gorm:"type:date;not null"`
	DueDate      *time.Time `gorm:"type:date"`
	Status       string     `gorm:"size:20;not null;default:'draft';index;check:chk_invoices_status,status IN ('draft','sent','paid','cancelled')"`
	NetAmount    float64    `gorm:"type:numeric(18,4);not null"`
	VATAmount    float64    `gorm:"column:vat_amount;type:numeric(18,4);not null"`
	GrossAmount  float64    `gorm:"type:numeric(18,4);not null"`
	VATRate      float64    `gorm:"column:vat_rate;type:numeric(5,2);not null"`
	Currency     string     `gorm:"size:3;not null;default:'CHF'"`
	Notes        *string    `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (invoiceRow) TableName() string { return "invoices" }

type lineItemRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:text;not null"`
	Quantity    float64   `gorm:"type:numeric(12,3);not null"`
	Unit        string    `gorm:"size:32;not null"`
	UnitPrice   float64   `gorm:"type:numeric(18,4);not null"`
	VATRate     float64   `gorm:"column:vat_rate;type:numeric(5,2);not null"`
	Total       float64   `gorm:"type:numeric(18,4);not null"`
	Position    int       `gorm:"not null;default:0"`
}

func (lineItemRow) TableName() string { return "invoice_line_items" }

// Tables lists the row types in dependency order for schema migration.
func Tables() []interface{} {
	return []interface{}{&contactRow{}, &personRow{}, &invoiceRow{}, &lineItemRow{}}
}

// nullable is the one place where blank optional text turns into NULL.
func nullable(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func newContactRow(c model.Contact) contactRow {
	country := strings.ToUpper(strings.TrimSpace(c.Country))
	if country == "" {
		country = model.DefaultCountry
	}
	return contactRow{
		ID:               c.ID,
		UserID:           c.UserID,
		Type:             string(c.Type),
		CustomerNumber:   c.CustomerNumber,
		OrganizationName: nullable(c.OrganizationName),
		Industry:         nullable(c.Industry),
		VATNumber:        nullable(c.VATNumber),
		Website:          nullable(c.Website),
		IBAN:             nullable(c.IBAN),
		GivenName:        nullable(c.GivenName),
		FamilyName:       nullable(c.FamilyName),
		Email:            nullable(c.Email),
		Phone:            nullable(c.Phone),
		Street:           nullable(c.Street),
		PostalCode:       nullable(c.PostalCode),
		City:             nullable(c.City),
		Country:          country,
		Notes:            nullable(c.Notes),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (r contactRow) toModel() model.Contact {
	return model.Contact{
		ID:               r.ID,
		UserID:           r.UserID,
		Type:             model.ContactType(r.Type),
		CustomerNumber:   r.CustomerNumber,
		OrganizationName: r.OrganizationName,
		Industry:         r.Industry,
		VATNumber:        r.VATNumber,
		Website:          r.Website,
		IBAN:             r.IBAN,
		GivenName:        r.GivenName,
		FamilyName:       r.FamilyName,
		Email:            r.Email,
		Phone:            r.Phone,
		Street:           r.Street,
		PostalCode:       r.PostalCode,
		City:             r.City,
		Country:          r.Country,
		Notes:            r.Notes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func newPersonRow(p model.ContactPerson, position int) personRow {
	return personRow{
		ID:           p.ID,
		ContactID:    p.ContactID,
		UserID:       p.UserID,
		PersonNumber: p.PersonNumber,
		Salutation:   nullable(p.Salutation),
		GivenName:    nullable(p.GivenName),
		FamilyName:   strings.TrimSpace(p.FamilyName),
		Role:         nullable(p.Role),
		Email:        nullable(p.Email),
		Phone:        nullable(p.Phone),
		Mobile:       nullable(p.Mobile),
		IsPrimary:    p.IsPrimary,
		Position:     position,
		CreatedAt:    p.CreatedAt,
	}
}

func (r personRow) toModel() model.ContactPerson {
	return model.ContactPerson{
		ID:           r.ID,
		ContactID:    r.ContactID,
		UserID:       r.UserID,
		PersonNumber: r.PersonNumber,
		Salutation:   r.Salutation,
		GivenName:    r.GivenName,
		FamilyName:   r.FamilyName,
		Role:         r.Role,
		Email:        r.Email,
		Phone:        r.Phone,
		Mobile:       r.Mobile,
		IsPrimary:    r.IsPrimary,
		CreatedAt:    r.CreatedAt,
	}
}

func newInvoiceRow(i model.Invoice) invoiceRow {
	currency := i.Currency
	if currency == "" {
		currency = model.CurrencyCHF
	}
	return invoiceRow{
		ID:           i.ID,
		UserID:       i.UserID,
		Number:       i.Number,
		ContactID:    i.ContactID,
		CustomerName: strings.TrimSpace(i.CustomerName),
		Title:        nullable(i.Title),
		Date:         i.Date,
		DueDate:      i.DueDate,
		Status:       string(i.Status),
		NetAmount:    i.NetAmount,
		VATAmount:    i.VATAmount,
		GrossAmount:  i.GrossAmount,
		VATRate:      i.VATRate,
		Currency:     currency,
		Notes:        nullable(i.Notes),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (r invoiceRow) toModel() model.Invoice {
	return model.Invoice{
		ID:           r.ID,
		UserID:       r.UserID,
		Number:       r.Number,
		ContactID:    r.ContactID,
		CustomerName: r.CustomerName,
		Title:        r.Title,
		Date:         r.Date,
		DueDate:      r.DueDate,
		Status:       model.InvoiceStatus(r.Status),
		NetAmount:    r.NetAmount,
		VATAmount:    r.VATAmount,
		GrossAmount:  r.GrossAmount,
		VATRate:      r.VATRate,
		Currency:     r.Currency,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newLineItemRow(item model.LineItem) lineItemRow {
	return lineItemRow{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: strings.TrimSpace(item.Description),
		Quantity:    item.Quantity,
		Unit:        strings.TrimSpace(item.Unit),
		UnitPrice:   item.UnitPrice,
		VATRate:     item.VATRate,
		Total:       item.Total,
		Position:    item.Position,
	}
}

func (r lineItemRow) toModel() model.LineItem {
	return model.LineItem{
		ID:          r.ID,
		InvoiceID:   r.InvoiceID,
		Description: r.Description,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		UnitPrice:   r.UnitPrice,
		VATRate:     r.VATRate,
		Total:       r.Total,
		Position:    r.Position,
	}
}
