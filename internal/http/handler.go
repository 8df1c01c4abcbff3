package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/faktura/internal/billing"
	"github.com/nurpe/faktura/internal/model"
	"github.com/nurpe/faktura/internal/repository"
	"github.com/nurpe/faktura/internal/service"
)

type Handler struct {
	contacts *service.ContactService
	invoices *service.InvoiceService
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandler(contacts *service.ContactService, invoices *service.InvoiceService, log zerolog.Logger) *Handler {
	return &Handler{
		contacts: contacts,
		invoices: invoices,
		log:      log,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/contacts", h.listContacts)
	protected.POST("/contacts", h.createContact)
	protected.GET("/contacts/:id", h.getContact)
	protected.PUT("/contacts/:id", h.updateContact)
	protected.DELETE("/contacts/:id", h.deleteContact)

	protected.GET("/invoices", h.listInvoices)
	protected.POST("/invoices", h.createInvoice)
	protected.GET("/invoices/summary", h.invoiceSummary)
	protected.GET("/invoices/export", h.exportInvoices)
	protected.GET("/invoices/:id", h.getInvoice)
	protected.PUT("/invoices/:id", h.updateInvoice)
	protected.DELETE("/invoices/:id", h.deleteInvoice)
	protected.GET("/invoices/:id/pdf", h.invoicePDF)
	protected.POST("/invoices/:id/send", h.sendInvoice)
	protected.POST("/invoices/:id/pay", h.payInvoice)
	protected.POST("/invoices/:id/cancel", h.cancelInvoice)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var storeErr *repository.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &storeErr):
		h.log.Error().Err(err).Str("op", storeErr.Op).Msg("store request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": storeErr.Message()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown error"})
	}
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := mustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return model.Principal{}, false
	}
	return principal, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func statusQuery(c *gin.Context) (*model.InvoiceStatus, bool) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, true
	}
	status, ok := billing.ParseStatus(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return nil, false
	}
	return &status, true
}

func sendFile(c *gin.Context, file *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"02.01.2006",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseOptionalDate treats a blank value as absent.
func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
