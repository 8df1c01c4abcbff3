package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/faktura/internal/model"
)

func strPtr(s string) *string {
	return &s
}

func TestGenerate(t *testing.T) {
	due := time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC)
	doc := model.InvoiceDocument{
		Invoice: model.Invoice{
			ID:           uuid.New(),
			Number:       "RE-2026-007",
			CustomerName: "Müller & Söhne AG",
			Title:        strPtr("Wartung Oktober"),
			Date:         time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
			DueDate:      &due,
			Status:       model.InvoiceStatusSent,
			Notes:        strPtr("Zahlbar innert 30 Tagen netto."),
		},
		Items: []model.LineItem{
			{Description: "Wartungspauschale für Serveranlage inklusive Fernüberwachung und Bereitschaft", Quantity: 1, Unit: "Stk", UnitPrice: 1200, VATRate: 8.1},
			{Description: "Einsatz vor Ort", Quantity: 2.5, Unit: "h", UnitPrice: 145, VATRate: 8.1},
		},
		Totals: model.InvoiceTotals{Net: 1562.5, VAT: 126.5625, Gross: 1689.0625},
		Customer: &model.Contact{
			Type:           model.ContactTypeOrganization,
			CustomerNumber: "KD-1004",
			Street:         strPtr("Bahnhofstrasse 1"),
			PostalCode:     strPtr("8001"),
			City:           strPtr("Zürich"),
			Country:        "CH",
		},
	}

	content, err := NewGenerator("Beispiel GmbH, Seestrasse 5, 8800 Thalwil").Generate(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.Greater(t, len(content), 500)
}

func TestCustomerLines(t *testing.T) {
	org := &model.Contact{
		Type:       model.ContactTypeOrganization,
		Street:     strPtr("Bahnhofstrasse 1"),
		PostalCode: strPtr("8001"),
		City:       strPtr("Zürich"),
		Country:    "CH",
	}

	tests := []struct {
		name string
		doc  model.InvoiceDocument
		want []string
	}{
		{
			name: "organization with primary person",
			doc: model.InvoiceDocument{
				Invoice:  model.Invoice{CustomerName: "Muster AG"},
				Customer: org,
				ContactPerson: &model.ContactPerson{
					Salutation: strPtr("Frau"),
					GivenName:  strPtr("Eva"),
					FamilyName: "Keller",
				},
			},
			want: []string{"Muster AG", "Frau Eva Keller", "Bahnhofstrasse 1", "8001 Zürich"},
		},
		{
			name: "person without salutation",
			doc: model.InvoiceDocument{
				Invoice:       model.Invoice{CustomerName: "Muster AG"},
				Customer:      org,
				ContactPerson: &model.ContactPerson{FamilyName: "Meier"},
			},
			want: []string{"Muster AG", "Meier", "Bahnhofstrasse 1", "8001 Zürich"},
		},
		{
			name: "organization without persons",
			doc:  model.InvoiceDocument{Invoice: model.Invoice{CustomerName: "Muster AG"}, Customer: org},
			want: []string{"Muster AG", "Bahnhofstrasse 1", "8001 Zürich"},
		},
		{
			name: "foreign individual",
			doc: model.InvoiceDocument{
				Invoice: model.Invoice{CustomerName: "Anna Weber"},
				Customer: &model.Contact{
					Type:       model.ContactTypeIndividual,
					GivenName:  strPtr("Anna"),
					FamilyName: strPtr("Weber"),
					City:       strPtr("Wien"),
					Country:    "AT",
				},
			},
			want: []string{"Anna Weber", "Wien", "AT"},
		},
		{
			name: "no linked contact",
			doc:  model.InvoiceDocument{Invoice: model.Invoice{CustomerName: "Laufkunde"}},
			want: []string{"Laufkunde"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, customerLines(tt.doc))
		})
	}
}

func TestGenerateWithoutItems(t *testing.T) {
	content, err := NewGenerator("").Generate(model.InvoiceDocument{
		Invoice: model.Invoice{Number: "RE-2026-001", CustomerName: "Muster AG", Status: model.InvoiceStatusDraft},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestFit(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont(fontFamily, "", 9)

	assert.Equal(t, "kurz", fit(pdf, "kurz", 50))

	long := fit(pdf, "eine sehr lange Beschreibung, die nicht in die Spalte passt", 30)
	assert.LessOrEqual(t, pdf.GetStringWidth(long), 30.0)
	assert.Contains(t, long, "...")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "2.5", formatQuantity(2.5))
	assert.Equal(t, "8.1%", formatRate(8.1))
	assert.Equal(t, "17.10.2026", formatDate(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", formatDatePtr(nil))
}
