package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/model"
)

const fontFamily = "Helvetica"

var (
	itemHeaders = []string{"Pos.", "Beschreibung", "Menge", "Einheit", "Preis", "MWST", "Betrag"}
	itemWidths  = []float64{12, 68, 18, 17, 25, 15, 25}
)

// Generator prints invoices on A4 with the core Helvetica font. Text is
// translated to cp1252, which covers German and French umlauts.
type Generator struct {
	issuer string
}

func NewGenerator(issuer string) *Generator {
	return &Generator{issuer: strings.TrimSpace(issuer)}
}

func (g *Generator) Generate(doc model.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Rechnung "+doc.Invoice.Number, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "", 8)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s · Seite %d", doc.Invoice.Number, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if g.issuer != "" {
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 5, tr(g.issuer), "", 1, "R", false, 0, "")
	}

	addCustomerBlock(pdf, tr, doc)
	pdf.Ln(8)

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, tr("Rechnung "+doc.Invoice.Number), "", 1, "L", false, 0, "")
	if title := strings.TrimSpace(deref(doc.Invoice.Title)); title != "" {
		pdf.SetFont(fontFamily, "", 11)
		pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	addMetaBlock(pdf, tr, doc)
	pdf.Ln(4)

	drawRow(pdf, tr, itemHeaders, true)
	for i, item := range doc.Items {
		drawRow(pdf, tr, []string{
			strconv.Itoa(i + 1),
			item.Description,
			formatQuantity(item.Quantity),
			item.Unit,
			billing.FormatAmount(item.UnitPrice),
			formatRate(item.VATRate),
			billing.FormatAmount(billing.LineTotal(item)),
		}, false)
	}
	pdf.Ln(3)

	addTotals(pdf, tr, doc.Totals)

	if notes := strings.TrimSpace(deref(doc.Invoice.Notes)); notes != "" {
		pdf.Ln(6)
		pdf.SetFont(fontFamily, "B", 10)
		pdf.CellFormat(0, 6, tr("Bemerkungen"), "", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		pdf.MultiCell(0, 5, tr(notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addCustomerBlock(pdf *gofpdf.Fpdf, tr func(string) string, doc model.InvoiceDocument) {
	pdf.SetFont(fontFamily, "", 11)
	for _, line := range customerLines(doc) {
		pdf.CellFormat(0, 5.5, tr(line), "", 1, "L", false, 0, "")
	}
}

// customerLines builds the address block: customer name, the primary person
// of an organization, street, postal code and city, and a foreign country.
func customerLines(doc model.InvoiceDocument) []string {
	lines := []string{doc.Invoice.CustomerName}
	if c := doc.Customer; c != nil {
		if c.Type == model.ContactTypeOrganization {
			if person := personLine(doc.ContactPerson, c); person != "" {
				lines = append(lines, person)
			}
		}
		if street := deref(c.Street); street != "" {
			lines = append(lines, street)
		}
		if city := strings.TrimSpace(deref(c.PostalCode) + " " + deref(c.City)); city != "" {
			lines = append(lines, city)
		}
		if c.Country != "" && c.Country != model.DefaultCountry {
			lines = append(lines, c.Country)
		}
	}
	return lines
}

// personLine prefers the contact person and falls back to names stored on
// the organization itself.
func personLine(person *model.ContactPerson, c *model.Contact) string {
	if person != nil {
		return strings.Join(strings.Fields(deref(person.Salutation)+" "+deref(person.GivenName)+" "+person.FamilyName), " ")
	}
	return strings.TrimSpace(deref(c.GivenName) + " " + deref(c.FamilyName))
}

func addMetaBlock(pdf *gofpdf.Fpdf, tr func(string) string, doc model.InvoiceDocument) {
	status := doc.Invoice.Status
	if doc.Overdue {
		status = model.InvoiceStatusOverdue
	}
	rows := [][2]string{
		{"Rechnungsdatum", formatDate(doc.Invoice.Date)},
		{"Zahlbar bis", formatDatePtr(doc.Invoice.DueDate)},
		{"Status", billing.StatusLabel(status)},
	}
	if c := doc.Customer; c != nil && c.CustomerNumber != "" {
		rows = append(rows, [2]string{"Kundennummer", c.CustomerNumber})
	}

	for _, row := range rows {
		pdf.SetFont(fontFamily, "B", 10)
		pdf.CellFormat(40, 5.5, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(0, 5.5, tr(row[1]), "", 1, "L", false, 0, "")
	}
}

func addTotals(pdf *gofpdf.Fpdf, tr func(string) string, totals model.InvoiceTotals) {
	rows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Netto", totals.Net, false},
		{"MWST", totals.VAT, false},
		{"Total", totals.Gross, true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 10)
		pdf.CellFormat(140, 6, tr(row.label), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, tr(billing.FormatCHF(row.value)), "", 1, "R", false, 0, "")
	}
}

func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontFamily, style, 9)
	for i, col := range cols {
		align := "L"
		if i >= 2 && i != 3 {
			align = "R"
		}
		pdf.CellFormat(itemWidths[i], 7, tr(fit(pdf, col, itemWidths[i]-2)), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens text with an ellipsis until it fits into width.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatQuantity(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatRate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
