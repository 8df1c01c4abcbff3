package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/faktura/internal/model"
	"github.com/nurpe/faktura/internal/service"
)

func (h *Handler) listInvoices(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	invoices, err := h.invoices.List(c.Request.Context(), principal, c.Query("q"), status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	now := h.now()
	resp := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		resp = append(resp, toInvoiceResponse(invoice, now))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *Handler) invoiceSummary(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	summary, err := h.invoices.Summary(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaryResponse{
		Open:         summary.Open,
		OpenCount:    summary.OpenCount,
		Overdue:      summary.Overdue,
		OverdueCount: summary.OverdueCount,
		Paid:         summary.Paid,
		PaidCount:    summary.PaidCount,
		Total:        summary.Total,
	}})
}

func (h *Handler) exportInvoices(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	file, err := h.invoices.ExportXLSX(c.Request.Context(), principal, c.Query("q"), status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, file)
}

func (h *Handler) getInvoice(c *gin.Context) {
	h.withInvoice(c, h.invoices.Get)
}

func (h *Handler) sendInvoice(c *gin.Context) {
	h.withInvoice(c, h.invoices.MarkSent)
}

func (h *Handler) payInvoice(c *gin.Context) {
	h.withInvoice(c, h.invoices.MarkPaid)
}

func (h *Handler) cancelInvoice(c *gin.Context) {
	h.withInvoice(c, h.invoices.Cancel)
}

func (h *Handler) createInvoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	input, ok := bindInvoice(c)
	if !ok {
		return
	}

	doc, err := h.invoices.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toInvoiceDocumentResponse(*doc, h.now())})
}

func (h *Handler) updateInvoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	input, ok := bindInvoice(c)
	if !ok {
		return
	}

	doc, err := h.invoices.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toInvoiceDocumentResponse(*doc, h.now())})
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invoicePDF(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := h.invoices.RenderPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, file)
}

type invoiceAction func(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.InvoiceDocument, error)

func (h *Handler) withInvoice(c *gin.Context, action invoiceAction) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := action(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toInvoiceDocumentResponse(*doc, h.now())})
}

func bindInvoice(c *gin.Context) (service.InvoiceInput, bool) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.InvoiceInput{}, false
	}

	input := service.InvoiceInput{
		CustomerName: req.CustomerName,
		Title:        req.Title,
		Notes:        req.Notes,
		Items:        make([]service.LineItemInput, 0, len(req.Items)),
	}

	if req.ContactID != nil && strings.TrimSpace(*req.ContactID) != "" {
		contactID, err := uuid.Parse(strings.TrimSpace(*req.ContactID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact_id", "field": "contact_id"})
			return service.InvoiceInput{}, false
		}
		input.ContactID = &contactID
	}

	if strings.TrimSpace(req.Date) != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date", "field": "date"})
			return service.InvoiceInput{}, false
		}
		input.Date = date
	}

	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date", "field": "due_date"})
		return service.InvoiceInput{}, false
	}
	input.DueDate = due

	for _, item := range req.Items {
		input.Items = append(input.Items, service.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			VATRate:     item.VATRate,
		})
	}
	return input, true
}
