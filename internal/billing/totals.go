package billing

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/faktura/internal/model"
)

const DefaultVATRate = 8.1

var hundred = decimal.NewFromInt(100)

func lineNet(item model.LineItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice))
}

func lineVAT(item model.LineItem) decimal.Decimal {
	return lineNet(item).Mul(decimal.NewFromFloat(item.VATRate)).Div(hundred)
}

func LineTotal(item model.LineItem) float64 {
	return lineNet(item).InexactFloat64()
}

func LineVAT(item model.LineItem) float64 {
	return lineVAT(item).InexactFloat64()
}

// Totals sums net and VAT in decimal arithmetic, so any permutation of the
// same items yields identical figures. Rounding is left to display.
func Totals(items []model.LineItem) model.InvoiceTotals {
	net, vat := decimal.Zero, decimal.Zero
	for _, item := range items {
		net = net.Add(lineNet(item))
		vat = vat.Add(lineVAT(item))
	}
	return model.InvoiceTotals{
		Net:   net.InexactFloat64(),
		VAT:   vat.InexactFloat64(),
		Gross: net.Add(vat).InexactFloat64(),
	}
}

// ApplyTotals stamps the computed amounts onto the invoice header.
func ApplyTotals(invoice *model.Invoice, items []model.LineItem) model.InvoiceTotals {
	totals := Totals(items)
	invoice.NetAmount = totals.Net
	invoice.VATAmount = totals.VAT
	invoice.GrossAmount = totals.Gross
	return totals
}
