package model

// InvoiceSummary holds the KPI figures shown above the invoice list.
type InvoiceSummary struct {
	Open         float64
	OpenCount    int
	Overdue      float64
	OverdueCount int
	Paid         float64
	PaidCount    int
	Total        int
}
