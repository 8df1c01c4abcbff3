package model

import "time"

type InvoiceReportRow struct {
	Invoice Invoice
	// Status is the display status, overdue included.
	Status InvoiceStatus
}

// InvoiceReport is the filtered invoice list handed to the spreadsheet export.
type InvoiceReport struct {
	GeneratedAt time.Time
	Query       string
	Status      *InvoiceStatus
	Rows        []InvoiceReportRow
	Summary     InvoiceSummary
}
