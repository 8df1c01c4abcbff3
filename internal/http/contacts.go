package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/faktura/internal/model"
	"github.com/nurpe/faktura/internal/service"
)

func (h *Handler) listContacts(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	contacts, err := h.contacts.List(c.Request.Context(), principal, c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		resp = append(resp, toContactResponse(contact))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *Handler) getContact(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.contacts.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toContactDetailResponse(*detail)})
}

func (h *Handler) createContact(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.contacts.Create(c.Request.Context(), principal, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toContactDetailResponse(*detail)})
}

func (h *Handler) updateContact(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.contacts.Update(c.Request.Context(), principal, id, req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toContactDetailResponse(*detail)})
}

func (h *Handler) deleteContact(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r contactRequest) toInput() service.ContactInput {
	persons := make([]service.PersonInput, 0, len(r.Persons))
	for _, p := range r.Persons {
		persons = append(persons, service.PersonInput{
			PersonNumber: p.PersonNumber,
			Salutation:   p.Salutation,
			GivenName:    p.GivenName,
			FamilyName:   p.FamilyName,
			Role:         p.Role,
			Email:        p.Email,
			Phone:        p.Phone,
			Mobile:       p.Mobile,
		})
	}
	return service.ContactInput{
		Type:             model.ContactType(r.Type),
		OrganizationName: r.OrganizationName,
		Industry:         r.Industry,
		VATNumber:        r.VATNumber,
		Website:          r.Website,
		IBAN:             r.IBAN,
		GivenName:        r.GivenName,
		FamilyName:       r.FamilyName,
		Email:            r.Email,
		Phone:            r.Phone,
		Street:           r.Street,
		PostalCode:       r.PostalCode,
		City:             r.City,
		Country:          r.Country,
		Notes:            r.Notes,
		Persons:          persons,
	}
}
