package model

import (
	"time"

	"github.com/google/uuid"
)

type ContactType string

const (
	ContactTypeOrganization ContactType = "organization"
	ContactTypeIndividual   ContactType = "individual"
)

const DefaultCountry = "CH"

type Contact struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Type             ContactType
	CustomerNumber   string
	OrganizationName *string
	Industry         *string
	VATNumber        *string
	Website          *string
	IBAN             *string
	GivenName        *string
	FamilyName       *string
	Email            *string
	Phone            *string
	Street           *string
	PostalCode       *string
	City             *string
	Country          string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GetUserID reports the owning account.
func (c *Contact) GetUserID() uuid.UUID {
	return c.UserID
}

type ContactPerson struct {
	ID           uuid.UUID
	ContactID    uuid.UUID
	UserID       uuid.UUID
	PersonNumber string
	Salutation   *string
	GivenName    *string
	FamilyName   string
	Role         *string
	Email        *string
	Phone        *string
	Mobile       *string
	IsPrimary    bool
	CreatedAt    time.Time
}

type ContactDetail struct {
	Contact Contact
	Persons []ContactPerson
}
