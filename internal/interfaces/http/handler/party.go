package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/profitpath/backend/internal/application/partner"
)

// PartyHandler handles party endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partnerapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// Create godoc
// @ID           createParty
// @Summary      Create a party
// @Description  Create a customer, a vendor, or a party that is both. At least one role is required.
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreatePartyRequest true "Party creation request"
// @Success      201 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties [post]
func (h *PartyHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req partnerapp.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, party)
}

// GetByID godoc
// @ID           getParty
// @Summary      Get a party
// @Tags         parties
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties/{id} [get]
func (h *PartyHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	party, err := h.partyService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}

// List godoc
// @ID           listParties
// @Summary      List parties
// @Description  Filter by role (customer, vendor) and status (active, inactive)
// @Tags         parties
// @Produce      json
// @Param        search query string false "Name, email or GSTIN contains"
// @Param        role query string false "Role filter" Enums(customer, vendor)
// @Param        status query string false "Status filter" Enums(active, inactive)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties [get]
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter partnerapp.PartyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	parties, total, err := h.partyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, parties, total, page, pageSize)
}

// Update godoc
// @ID           updateParty
// @Summary      Update party details
// @Description  Omitted fields are left unchanged
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body partnerapp.UpdatePartyRequest true "Party update request"
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties/{id} [put]
func (h *PartyHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}

// SetRoles godoc
// @ID           setPartyRoles
// @Summary      Replace the role flags of a party
// @Description  Clearing both flags fails with ERR_INVALID_PARTY_ROLE
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body partnerapp.SetRolesRequest true "Role flags"
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties/{id}/roles [put]
func (h *PartyHandler) SetRoles(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	party, err := h.partyService.SetRoles(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}

// Activate godoc
// @ID           activateParty
// @Summary      Reactivate a party
// @Tags         parties
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties/{id}/activate [post]
func (h *PartyHandler) Activate(c *gin.Context) {
	h.toggle(c, h.partyService.Activate)
}

// Deactivate godoc
// @ID           deactivateParty
// @Summary      Deactivate a party
// @Description  Soft delete. Existing documents keep their party; new documents are rejected.
// @Tags         parties
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parties/{id}/deactivate [post]
func (h *PartyHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.partyService.Deactivate)
}

func (h *PartyHandler) toggle(c *gin.Context, fn partyToggle) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	party, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}
