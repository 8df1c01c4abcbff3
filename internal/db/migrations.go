package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/faktura/internal/repository"
)

// Statements run after the table migration. Each one must be idempotent and
// valid on both PostgreSQL and SQLite.
var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_contacts_user_org_name ON contacts (user_id, organization_name);`,
	`CREATE INDEX IF NOT EXISTS idx_contact_persons_contact_position ON contact_persons (contact_id, position);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_user_date ON invoices (user_id, date DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_open_due_date ON invoices (due_date) WHERE status = 'sent';`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_line_items_invoice_position ON invoice_line_items (invoice_id, position);`,
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	for _, table := range repository.Tables() {
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("automigrate %T: %w", table, err)
		}
	}
	return runMigrations(db)
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
