package http

import (
	"time"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/model"
)

const dateLayout = "2006-01-02"

type personRequest struct {
	PersonNumber string  `json:"person_number"`
	Salutation   *string `json:"salutation"`
	GivenName    *string `json:"given_name"`
	FamilyName   string  `json:"family_name"`
	Role         *string `json:"role"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
}

type contactRequest struct {
	Type             string          `json:"type"`
	OrganizationName *string         `json:"organization_name"`
	Industry         *string         `json:"industry"`
	VATNumber        *string         `json:"vat_number"`
	Website          *string         `json:"website"`
	IBAN             *string         `json:"iban"`
	GivenName        *string         `json:"given_name"`
	FamilyName       *string         `json:"family_name"`
	Email            *string         `json:"email"`
	Phone            *string         `json:"phone"`
	Street           *string         `json:"street"`
	PostalCode       *string         `json:"postal_code"`
	City             *string         `json:"city"`
	Country          string          `json:"country"`
	Notes            *string         `json:"notes"`
	Persons          []personRequest `json:"persons"`
}

type lineItemRequest struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	VATRate     *float64 `json:"vat_rate"`
}

type invoiceRequest struct {
	ContactID    *string           `json:"contact_id"`
	CustomerName string            `json:"customer_name"`
	Title        *string           `json:"title"`
	Date         string            `json:"date"`
	DueDate      string            `json:"due_date"`
	Notes        *string           `json:"notes"`
	Items        []lineItemRequest `json:"items"`
}

type contactResponse struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	CustomerNumber   string    `json:"customer_number"`
	DisplayName      string    `json:"display_name"`
	OrganizationName *string   `json:"organization_name"`
	Industry         *string   `json:"industry"`
	VATNumber        *string   `json:"vat_number"`
	Website          *string   `json:"website"`
	IBAN             *string   `json:"iban"`
	GivenName        *string   `json:"given_name"`
	FamilyName       *string   `json:"family_name"`
	Email            *string   `json:"email"`
	Phone            *string   `json:"phone"`
	Street           *string   `json:"street"`
	PostalCode       *string   `json:"postal_code"`
	City             *string   `json:"city"`
	Country          string    `json:"country"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type personResponse struct {
	ID           string  `json:"id"`
	PersonNumber string  `json:"person_number"`
	Salutation   *string `json:"salutation"`
	GivenName    *string `json:"given_name"`
	FamilyName   string  `json:"family_name"`
	Role         *string `json:"role"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
	IsPrimary    bool    `json:"is_primary"`
}

type contactDetailResponse struct {
	contactResponse
	Persons []personResponse `json:"persons"`
}

type invoiceResponse struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	ContactID     *string   `json:"contact_id"`
	CustomerName  string    `json:"customer_name"`
	Title         *string   `json:"title"`
	Date          string    `json:"date"`
	DueDate       *string   `json:"due_date"`
	Status        string    `json:"status"`
	DisplayStatus string    `json:"display_status"`
	StatusLabel   string    `json:"status_label"`
	NetAmount     float64   `json:"net_amount"`
	VATAmount     float64   `json:"vat_amount"`
	GrossAmount   float64   `json:"gross_amount"`
	GrossDisplay  string    `json:"gross_display"`
	VATRate       float64   `json:"vat_rate"`
	Currency      string    `json:"currency"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type lineItemResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	VATRate     float64 `json:"vat_rate"`
	Total       float64 `json:"total"`
	Position    int     `json:"position"`
}

type totalsResponse struct {
	Net   float64 `json:"net"`
	VAT   float64 `json:"vat"`
	Gross float64 `json:"gross"`
}

type invoiceDocumentResponse struct {
	invoiceResponse
	Overdue  bool               `json:"overdue"`
	Items    []lineItemResponse `json:"items"`
	Totals   totalsResponse     `json:"totals"`
	Customer *contactResponse   `json:"customer"`
	Person   *personResponse    `json:"contact_person"`
}

type summaryResponse struct {
	Open         float64 `json:"open"`
	OpenCount    int     `json:"open_count"`
	Overdue      float64 `json:"overdue"`
	OverdueCount int     `json:"overdue_count"`
	Paid         float64 `json:"paid"`
	PaidCount    int     `json:"paid_count"`
	Total        int     `json:"total"`
}

func toContactResponse(contact model.Contact) contactResponse {
	return contactResponse{
		ID:               contact.ID.String(),
		Type:             string(contact.Type),
		CustomerNumber:   contact.CustomerNumber,
		DisplayName:      billing.ContactDisplayName(contact),
		OrganizationName: contact.OrganizationName,
		Industry:         contact.Industry,
		VATNumber:        contact.VATNumber,
		Website:          contact.Website,
		IBAN:             contact.IBAN,
		GivenName:        contact.GivenName,
		FamilyName:       contact.FamilyName,
		Email:            contact.Email,
		Phone:            contact.Phone,
		Street:           contact.Street,
		PostalCode:       contact.PostalCode,
		City:             contact.City,
		Country:          contact.Country,
		Notes:            contact.Notes,
		CreatedAt:        contact.CreatedAt,
		UpdatedAt:        contact.UpdatedAt,
	}
}

func toContactDetailResponse(detail model.ContactDetail) contactDetailResponse {
	persons := make([]personResponse, 0, len(detail.Persons))
	for _, p := range detail.Persons {
		persons = append(persons, toPersonResponse(p))
	}
	return contactDetailResponse{
		contactResponse: toContactResponse(detail.Contact),
		Persons:         persons,
	}
}

func toInvoiceResponse(invoice model.Invoice, now time.Time) invoiceResponse {
	display := billing.DisplayStatus(invoice, now)
	resp := invoiceResponse{
		ID:            invoice.ID.String(),
		Number:        invoice.Number,
		CustomerName:  invoice.CustomerName,
		Title:         invoice.Title,
		Date:          invoice.Date.Format(dateLayout),
		Status:        string(invoice.Status),
		DisplayStatus: string(display),
		StatusLabel:   billing.StatusLabel(display),
		NetAmount:     invoice.NetAmount,
		VATAmount:     invoice.VATAmount,
		GrossAmount:   invoice.GrossAmount,
		GrossDisplay:  billing.FormatCHF(invoice.GrossAmount),
		VATRate:       invoice.VATRate,
		Currency:      invoice.Currency,
		Notes:         invoice.Notes,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
	if invoice.ContactID != nil {
		id := invoice.ContactID.String()
		resp.ContactID = &id
	}
	if invoice.DueDate != nil {
		due := invoice.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	return resp
}

func toInvoiceDocumentResponse(doc model.InvoiceDocument, now time.Time) invoiceDocumentResponse {
	items := make([]lineItemResponse, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, lineItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			VATRate:     item.VATRate,
			Total:       item.Total,
			Position:    item.Position,
		})
	}
	resp := invoiceDocumentResponse{
		invoiceResponse: toInvoiceResponse(doc.Invoice, now),
		Overdue:         doc.Overdue,
		Items:           items,
		Totals: totalsResponse{
			Net:   doc.Totals.Net,
			VAT:   doc.Totals.VAT,
			Gross: doc.Totals.Gross,
		},
	}
	if doc.Customer != nil {
		customer := toContactResponse(*doc.Customer)
		resp.Customer = &customer
	}
	if doc.ContactPerson != nil {
		person := toPersonResponse(*doc.ContactPerson)
		resp.Person = &person
	}
	return resp
}

func toPersonResponse(p model.ContactPerson) personResponse {
	return personResponse{
		ID:           p.ID.String(),
		PersonNumber: p.PersonNumber,
		Salutation:   p.Salutation,
		GivenName:    p.GivenName,
		FamilyName:   p.FamilyName,
		Role:         p.Role,
		Email:        p.Email,
		Phone:        p.Phone,
		Mobile:       p.Mobile,
		IsPrimary:    p.IsPrimary,
	}
}
