package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/config"
	"github.com/nurpe/faktura/internal/model"
)

type ContactService struct {
	store   ContactStore
	retries int
	log     zerolog.Logger
}

type ContactInput struct {
	Type             model.ContactType
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
	Persons          []PersonInput
}

// PersonInput carries one contact person. PersonNumber is only honoured when
// it already belongs to the contact being updated.
type PersonInput struct {
	PersonNumber string
	Salutation   *string
	GivenName    *string
	FamilyName   string
	Role         *string
	Email        *string
	Phone        *string
	Mobile       *string
}

func NewContactService(store ContactStore, cfg *config.Config, log zerolog.Logger) *ContactService {
	retries := cfg.Invoices.NumberRetries
	if retries < 1 {
		retries = 1
	}
	return &ContactService{
		store:   store,
		retries: retries,
		log:     log.With().Str("component", "contacts").Logger(),
	}
}

// List returns the account's contacts, narrowed by a free-text query.
func (s *ContactService) List(ctx context.Context, principal model.Principal, query string) ([]model.Contact, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	contacts, err := s.store.ListContacts(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return contacts, nil
	}
	return billing.FilterContacts(contacts, strings.TrimSpace(query)), nil
}

func (s *ContactService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ContactDetail, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	contact, err := s.store.GetContact(ctx, principal.UserID, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !principal.Owns(contact) {
		return nil, ErrNotFound
	}
	persons, err := s.store.ListPersons(ctx, principal.UserID, id)
	if err != nil {
		return nil, err
	}
	return &model.ContactDetail{Contact: *contact, Persons: persons}, nil
}

// Create assigns the next customer number, saves the contact and then its
// persons. A failure while saving persons leaves the contact in place.
func (s *ContactService) Create(ctx context.Context, principal model.Principal, input ContactInput) (*model.ContactDetail, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	contact, persons, err := buildContact(input)
	if err != nil {
		return nil, err
	}
	contact.UserID = principal.UserID
	persons = keepPersonIdentity(contact.Type, persons, nil)

	created, err := s.createNumbered(ctx, contact)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.ReplacePersons(ctx, principal.UserID, created.ID, billing.NumberPersons(created.CustomerNumber, persons))
	if err != nil {
		s.log.Error().Err(err).Str("contact_id", created.ID.String()).Msg("contact saved without persons")
		return nil, err
	}

	s.log.Info().
		Str("contact_id", created.ID.String()).
		Str("customer_number", created.CustomerNumber).
		Int("persons", len(saved)).
		Msg("contact created")

	return &model.ContactDetail{Contact: *created, Persons: saved}, nil
}

// Update replaces every editable field and the full person list. The
// customer number and already assigned person numbers stay as they are.
func (s *ContactService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input ContactInput) (*model.ContactDetail, error) {
	if !principal.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	existing, err := s.store.GetContact(ctx, principal.UserID, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	existingPersons, err := s.store.ListPersons(ctx, principal.UserID, id)
	if err != nil {
		return nil, err
	}

	contact, persons, err := buildContact(input)
	if err != nil {
		return nil, err
	}
	contact.ID = existing.ID
	contact.UserID = existing.UserID
	contact.CustomerNumber = existing.CustomerNumber
	contact.CreatedAt = existing.CreatedAt

	persons = keepPersonIdentity(contact.Type, persons, existingPersons)

	updated, err := s.store.UpdateContact(ctx, contact)
	if err != nil {
		return nil, mapStoreError(err)
	}
	saved, err := s.store.ReplacePersons(ctx, principal.UserID, updated.ID, billing.NumberPersons(updated.CustomerNumber, persons))
	if err != nil {
		return nil, err
	}
	return &model.ContactDetail{Contact: *updated, Persons: saved}, nil
}

// Delete removes the contact and its persons. Invoices that referenced it
// keep their customer name.
func (s *ContactService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := s.store.DeleteContact(ctx, principal.UserID, id); err != nil {
		return mapStoreError(err)
	}
	s.log.Info().Str("contact_id", id.String()).Msg("contact deleted")
	return nil
}

func (s *ContactService) createNumbered(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	latest, err := s.store.LatestCustomerNumber(ctx, contact.UserID)
	if err != nil {
		return nil, err
	}
	contact.CustomerNumber = billing.NextCustomerNumber(latest)

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		created, err := s.store.CreateContact(ctx, contact)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
		s.log.Warn().Str("customer_number", contact.CustomerNumber).Msg("customer number taken, retrying")
		contact.CustomerNumber = billing.NextCustomerNumber(contact.CustomerNumber)
	}
	return nil, fmt.Errorf("%w: no free customer number after %d attempts: %v", ErrConflict, s.retries, lastErr)
}

func buildContact(input ContactInput) (model.Contact, []model.ContactPerson, error) {
	contactType := input.Type
	if contactType == "" {
		contactType = model.ContactTypeIndividual
		if trimmed(input.OrganizationName) != "" {
			contactType = model.ContactTypeOrganization
		}
	}

	switch contactType {
	case model.ContactTypeOrganization:
		if trimmed(input.OrganizationName) == "" {
			return model.Contact{}, nil, invalid("organization_name", "is required for organizations")
		}
	case model.ContactTypeIndividual:
		if trimmed(input.FamilyName) == "" {
			return model.Contact{}, nil, invalid("family_name", "is required for individuals")
		}
	default:
		return model.Contact{}, nil, invalid("type", "must be organization or individual")
	}

	contact := model.Contact{
		Type:             contactType,
		OrganizationName: input.OrganizationName,
		Industry:         input.Industry,
		VATNumber:        input.VATNumber,
		Website:          input.Website,
		IBAN:             input.IBAN,
		GivenName:        input.GivenName,
		FamilyName:       input.FamilyName,
		Email:            input.Email,
		Phone:            input.Phone,
		Street:           input.Street,
		PostalCode:       input.PostalCode,
		City:             input.City,
		Country:          input.Country,
		Notes:            input.Notes,
	}

	if contactType == model.ContactTypeIndividual {
		return contact, []model.ContactPerson{{
			GivenName:  input.GivenName,
			FamilyName: strings.TrimSpace(*input.FamilyName),
			Email:      input.Email,
			Phone:      input.Phone,
		}}, nil
	}

	persons := make([]model.ContactPerson, 0, len(input.Persons))
	for i, p := range input.Persons {
		if strings.TrimSpace(p.FamilyName) == "" {
			return model.Contact{}, nil, invalid(fmt.Sprintf("persons[%d].family_name", i), "is required")
		}
		persons = append(persons, model.ContactPerson{
			PersonNumber: strings.TrimSpace(p.PersonNumber),
			Salutation:   p.Salutation,
			GivenName:    p.GivenName,
			FamilyName:   strings.TrimSpace(p.FamilyName),
			Role:         p.Role,
			Email:        p.Email,
			Phone:        p.Phone,
			Mobile:       p.Mobile,
		})
	}
	return contact, persons, nil
}

// keepPersonIdentity carries IDs and numbers of existing persons over to the
// new list and drops numbers the contact never had.
func keepPersonIdentity(contactType model.ContactType, persons, existing []model.ContactPerson) []model.ContactPerson {
	if contactType == model.ContactTypeIndividual && len(persons) == 1 && len(existing) > 0 {
		persons[0].ID = existing[0].ID
		persons[0].PersonNumber = existing[0].PersonNumber
		persons[0].CreatedAt = existing[0].CreatedAt
		return persons
	}

	byNumber := make(map[string]model.ContactPerson, len(existing))
	for _, person := range existing {
		byNumber[person.PersonNumber] = person
	}
	for i := range persons {
		if persons[i].PersonNumber == "" {
			continue
		}
		match, ok := byNumber[persons[i].PersonNumber]
		if !ok {
			persons[i].PersonNumber = ""
			continue
		}
		persons[i].ID = match.ID
		persons[i].CreatedAt = match.CreatedAt
		delete(byNumber, match.PersonNumber)
	}
	return persons
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
