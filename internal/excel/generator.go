package excel

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/model"
)

const (
	summarySheet  = "Übersicht"
	invoicesSheet = "Rechnungen"
	amountFormat  = "#,##0.00"
)

var invoiceHeaders = []string{
	"Nummer",
	"Datum",
	"Fällig",
	"Kunde",
	"Titel",
	"Status",
	"Netto CHF",
	"MWST CHF",
	"Brutto CHF",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type styles struct {
	header int
	amount int
	total  int
}

// Generate writes a workbook with a KPI sheet, the full invoice list with a
// totals row, and one sheet per customer.
func (g *Generator) Generate(report model.InvoiceReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	st, err := newStyles(file)
	if err != nil {
		return nil, err
	}

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report, st)

	if _, err := file.NewSheet(invoicesSheet); err != nil {
		return nil, err
	}
	g.writeInvoices(file, invoicesSheet, report.Rows, st)

	used := map[string]struct{}{
		strings.ToLower(summarySheet):  {},
		strings.ToLower(invoicesSheet): {},
	}
	for _, group := range groupByCustomer(report.Rows) {
		sheetName := buildSheetName(group.name, used)
		used[strings.ToLower(sheetName)] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeInvoices(file, sheetName, group.rows, st)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newStyles(file *excelize.File) (styles, error) {
	numFmt := amountFormat
	header, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styles{}, err
	}
	amount, err := file.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return styles{}, err
	}
	total, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt})
	if err != nil {
		return styles{}, err
	}
	return styles{header: header, amount: amount, total: total}, nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.InvoiceReport, st styles) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	statusFilter := "Alle"
	if report.Status != nil {
		statusFilter = billing.StatusLabel(*report.Status)
	}

	set("A1", "Erstellt am")
	set("B1", formatDateTime(report.GeneratedAt))
	set("A2", "Suche")
	set("B2", report.Query)
	set("A3", "Status")
	set("B3", statusFilter)
	set("A4", "Anzahl Rechnungen")
	set("B4", report.Summary.Total)

	set("A6", "Kennzahl")
	set("B6", "Anzahl")
	set("C6", "Betrag CHF")
	_ = file.SetCellStyle(summarySheet, "A6", "C6", st.header)

	kpis := []struct {
		label  string
		count  int
		amount float64
	}{
		{"Offen", report.Summary.OpenCount, report.Summary.Open},
		{"Überfällig", report.Summary.OverdueCount, report.Summary.Overdue},
		{"Bezahlt", report.Summary.PaidCount, report.Summary.Paid},
	}
	for i, kpi := range kpis {
		row := 7 + i
		set(fmt.Sprintf("A%d", row), kpi.label)
		set(fmt.Sprintf("B%d", row), kpi.count)
		set(fmt.Sprintf("C%d", row), round2(kpi.amount))
		_ = file.SetCellStyle(summarySheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), st.amount)
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 24)
	_ = file.SetColWidth(summarySheet, "B", "B", 20)
	_ = file.SetColWidth(summarySheet, "C", "C", 16)
}

func (g *Generator) writeInvoices(file *excelize.File, sheet string, rows []model.InvoiceReportRow, st styles) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	for i, header := range invoiceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}
	_ = file.SetCellStyle(sheet, "A1", "I1", st.header)

	for i, r := range rows {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), r.Invoice.Number)
		set(fmt.Sprintf("B%d", row), formatDate(r.Invoice.Date))
		set(fmt.Sprintf("C%d", row), formatDatePtr(r.Invoice.DueDate))
		set(fmt.Sprintf("D%d", row), r.Invoice.CustomerName)
		set(fmt.Sprintf("E%d", row), formatString(r.Invoice.Title))
		set(fmt.Sprintf("F%d", row), billing.StatusLabel(r.Status))
		set(fmt.Sprintf("G%d", row), round2(r.Invoice.NetAmount))
		set(fmt.Sprintf("H%d", row), round2(r.Invoice.VATAmount))
		set(fmt.Sprintf("I%d", row), round2(r.Invoice.GrossAmount))
	}

	last := len(rows) + 1
	totalRow := last + 1
	set(fmt.Sprintf("A%d", totalRow), "Total")
	for _, col := range []string{"G", "H", "I"} {
		cell := fmt.Sprintf("%s%d", col, totalRow)
		if len(rows) == 0 {
			set(cell, 0)
			continue
		}
		_ = file.SetCellFormula(sheet, cell, fmt.Sprintf("SUM(%s2:%s%d)", col, col, last))
	}
	if len(rows) > 0 {
		_ = file.SetCellStyle(sheet, "G2", fmt.Sprintf("I%d", last), st.amount)
	}
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("I%d", totalRow), st.total)

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "C", 12)
	_ = file.SetColWidth(sheet, "D", "E", 32)
	_ = file.SetColWidth(sheet, "F", "F", 12)
	_ = file.SetColWidth(sheet, "G", "I", 14)
}

type customerGroup struct {
	name string
	rows []model.InvoiceReportRow
}

// groupByCustomer keeps the list order inside each group and sorts groups
// by customer name.
func groupByCustomer(rows []model.InvoiceReportRow) []customerGroup {
	index := make(map[string]int)
	var groups []customerGroup
	for _, r := range rows {
		name := strings.TrimSpace(r.Invoice.CustomerName)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, customerGroup{name: name})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].name) < strings.ToLower(groups[j].name)
	})
	return groups
}

// buildSheetName derives a sheet name within Excel's 31 character limit that
// is not in used. Excel compares sheet names case-insensitively, so used
// holds lower-cased names.
func buildSheetName(name string, used map[string]struct{}) string {
	base := []rune(sanitizeSheetName("Kunde - " + name))
	if len(base) > 31 {
		base = base[:31]
	}

	candidate := string(base)
	counter := 2
	for {
		if _, exists := used[strings.ToLower(candidate)]; !exists {
			return candidate
		}
		suffix := []rune(fmt.Sprintf("-%d", counter))
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		candidate = string(trimmed) + string(suffix)
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
		"'", "",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" || value == "Kunde -" {
		return "Kunde"
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
