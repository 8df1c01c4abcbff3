package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// ListInvoices returns the account's invoices, newest invoice date first.
func (r *InvoiceRepository) ListInvoices(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error) {
	var rows []invoiceRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("number DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrap("list invoices", err)
	}

	invoices := make([]model.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, row.toModel())
	}
	return invoices, nil
}

func (r *InvoiceRepository) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	var row invoiceRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if err != nil {
		return nil, wrap("get invoice", err)
	}
	invoice := row.toModel()
	return &invoice, nil
}

// CountInvoicesByNumberPrefix counts the account's invoices whose number
// starts with prefix.
func (r *InvoiceRepository) CountInvoicesByNumberPrefix(ctx context.Context, userID uuid.UUID, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&invoiceRow{}).
		Where("user_id = ? AND number LIKE ?", userID, prefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, wrap("count invoices", err)
	}
	return count, nil
}

// MaxInvoiceNumber returns the highest number starting with prefix, or an
// empty string when there is none. Longer numbers sort first so RE-2026-1000
// ranks above RE-2026-999.
func (r *InvoiceRepository) MaxInvoiceNumber(ctx context.Context, userID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&invoiceRow{}).
		Where("user_id = ? AND number LIKE ?", userID, prefix+"%").
		Order("LENGTH(number) DESC").
		Order("number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", wrap("max invoice number", err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// CreateInvoice inserts the invoice header. A clash on the per-account
// number index surfaces as gorm.ErrDuplicatedKey.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error) {
	row := newInvoiceRow(invoice)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = string(model.InvoiceStatusDraft)
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, wrap("create invoice", err)
	}
	created := row.toModel()
	return &created, nil
}

// UpdateInvoice overwrites the editable header columns. Number, status and
// the VAT rate snapshot are left untouched.
func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, invoice model.Invoice) (*model.Invoice, error) {
	row := newInvoiceRow(invoice)
	row.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&invoiceRow{}).
		Where("id = ? AND user_id = ?", invoice.ID, invoice.UserID).
		Select("*").
		Omit("id", "user_id", "number", "status", "vat_rate", "currency", "created_at").
		Updates(&row)
	if res.Error != nil {
		return nil, wrap("update invoice", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetInvoice(ctx, invoice.UserID, invoice.ID)
}

func (r *InvoiceRepository) UpdateInvoiceStatus(
	ctx context.Context,
	userID, id uuid.UUID,
	status model.InvoiceStatus,
) error {
	res := r.db.WithContext(ctx).
		Model(&invoiceRow{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return wrap("update invoice status", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteInvoice removes an invoice together with its line items.
func (r *InvoiceRepository) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&invoiceRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("invoice_id = ?", id).Delete(&lineItemRow{}).Error
	})
	return wrap("delete invoice", err)
}

// ListLineItems returns the invoice's items ordered by position.
func (r *InvoiceRepository) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]model.LineItem, error) {
	var rows []lineItemRow
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrap("list line items", err)
	}

	items := make([]model.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// ReplaceLineItems deletes the invoice's items and inserts the given list
// in one transaction. Positions are rewritten to the slice order.
func (r *InvoiceRepository) ReplaceLineItems(
	ctx context.Context,
	invoiceID uuid.UUID,
	items []model.LineItem,
) ([]model.LineItem, error) {
	rows := make([]lineItemRow, 0, len(items))
	for i, item := range items {
		row := newLineItemRow(item)
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.InvoiceID = invoiceID
		row.Position = i
		rows = append(rows, row)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoiceID).Delete(&lineItemRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, wrap("replace line items", err)
	}

	saved := make([]model.LineItem, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, row.toModel())
	}
	return saved, nil
}
