package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/model"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListContacts returns the account's contacts ordered by display name.
func (r *ContactRepository) ListContacts(ctx context.Context, userID uuid.UUID) ([]model.Contact, error) {
	var rows []contactRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("COALESCE(organization_name, family_name, '') ASC").
		Order("customer_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrap("list contacts", err)
	}

	contacts := make([]model.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toModel())
	}
	return contacts, nil
}

func (r *ContactRepository) GetContact(ctx context.Context, userID, id uuid.UUID) (*model.Contact, error) {
	var row contactRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if err != nil {
		return nil, wrap("get contact", err)
	}
	contact := row.toModel()
	return &contact, nil
}

// LatestCustomerNumber returns the customer number of the most recently
// created contact, or an empty string when the account has none.
func (r *ContactRepository) LatestCustomerNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&contactRow{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("customer_number DESC").
		Limit(1).
		Pluck("customer_number", &numbers).Error
	if err != nil {
		return "", wrap("latest customer number", err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *ContactRepository) CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	row := newContactRow(contact)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, wrap("create contact", err)
	}
	created := row.toModel()
	return &created, nil
}

// UpdateContact overwrites every editable column. The customer number and
// ownership never change after creation.
func (r *ContactRepository) UpdateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	row := newContactRow(contact)
	row.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&contactRow{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Select("*").
		Omit("id", "user_id", "customer_number", "created_at").
		Updates(&row)
	if res.Error != nil {
		return nil, wrap("update contact", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetContact(ctx, contact.UserID, contact.ID)
}

// DeleteContact removes the contact with its persons and detaches any
// invoices that referenced it. Invoices keep their customer name snapshot.
func (r *ContactRepository) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ? AND user_id = ?", id, userID).Delete(&personRow{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&invoiceRow{}).
			Where("contact_id = ? AND user_id = ?", id, userID).
			Update("contact_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&contactRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap("delete contact", err)
}

// ListPersons returns a contact's persons in entry order.
func (r *ContactRepository) ListPersons(ctx context.Context, userID, contactID uuid.UUID) ([]model.ContactPerson, error) {
	var rows []personRow
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND user_id = ?", contactID, userID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrap("list contact persons", err)
	}

	persons := make([]model.ContactPerson, 0, len(rows))
	for _, row := range rows {
		persons = append(persons, row.toModel())
	}
	return persons, nil
}

// ReplacePersons swaps the full person list of a contact in one transaction.
func (r *ContactRepository) ReplacePersons(
	ctx context.Context,
	userID, contactID uuid.UUID,
	persons []model.ContactPerson,
) ([]model.ContactPerson, error) {
	now := time.Now().UTC()
	rows := make([]personRow, 0, len(persons))
	for i, person := range persons {
		row := newPersonRow(person, i)
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.ContactID = contactID
		row.UserID = userID
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		rows = append(rows, row)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ? AND user_id = ?", contactID, userID).Delete(&personRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, wrap("replace contact persons", err)
	}

	saved := make([]model.ContactPerson, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, row.toModel())
	}
	return saved, nil
}
