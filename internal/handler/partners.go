package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
)

type PartnersHandler struct {
	svc    *service.PartnerService
	ledger *service.LedgerService
}

func NewPartnersHandler(svc *service.PartnerService, ledger *service.LedgerService) *PartnersHandler {
	return &PartnersHandler{svc: svc, ledger: ledger}
}

// List godoc
// @Summary      List partners
// @Description  Merchants and representatives with their cached debt and products_count.
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PartnerResponse
// @Router       /v1/partners [get]
func (h *PartnersHandler) List(c *gin.Context) {
	partners, err := h.svc.List(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list partners"))
		return
	}
	resp := make([]dto.PartnerResponse, 0, len(partners))
	for i := range partners {
		resp = append(resp, service.PartnerToResponse(&partners[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a partner
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Partner UUID"
// @Success      200 {object} dto.PartnerResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/partners/{id} [get]
func (h *PartnersHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	partner, err := h.svc.Get(c.Request.Context(), middleware.CompanyID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.PartnerToResponse(partner))
}

// Statement godoc
// @Summary      Partner transaction statement
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true  "Partner UUID"
// @Param        type   query string false "take | restore | payment | fees"
// @Param        status query string false "pending | approved | rejected"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200    {object} dto.TransactionListResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/partners/{id}/statement [get]
func (h *PartnersHandler) Statement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	list, total, err := h.svc.Statement(c.Request.Context(), middleware.CompanyID(c), id, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp := dto.TransactionListResponse{
		Data:  make([]dto.TransactionResponse, 0, len(list)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range list {
		resp.Data = append(resp.Data, transactionToResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile godoc
// @Summary      Recompute a partner's balances
// @Description  Full recomputation of debt and products_count from the approved ledger history.
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Partner UUID"
// @Success      200 {object} dto.ReconcileResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/partners/{id}/reconcile [post]
func (h *PartnersHandler) Reconcile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.ledger.Reconcile(c.Request.Context(), middleware.CompanyID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
