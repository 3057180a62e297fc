package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
)

type POSHandler struct {
	svc        *service.POSService
	productSvc *service.ProductService
}

func NewPOSHandler(svc *service.POSService, productSvc *service.ProductService) *POSHandler {
	return &POSHandler{svc: svc, productSvc: productSvc}
}

// Checkout godoc
// @Summary      Register a POS sale
// @Description  All-or-nothing checkout: every line must be satisfiable from stock or nothing commits. Dispatches async receipt generation.
// @Tags         pos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Cart detail"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pos/sales [post]
func (h *POSHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sale, err := h.svc.Checkout(c.Request.Context(), middleware.CompanyID(c), middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saleToResponse(sale))
}

// Refund godoc
// @Summary      Refund a completed sale
// @Description  Restores stock for every line. Refunding a non-completed sale returns success=false.
// @Tags         pos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.RefundResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pos/sales/{id}/refund [post]
func (h *POSHandler) Refund(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	refunded, err := h.svc.Refund(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp := dto.RefundResponse{Success: refunded, Status: "refunded"}
	if !refunded {
		resp.Status = "unchanged"
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale
// @Tags         pos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pos/sales/{id} [get]
func (h *POSHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.svc.Get(c.Request.Context(), middleware.CompanyID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleToResponse(sale))
}

// List godoc
// @Summary      List sales
// @Description  Paginated sales for one day (default: today).
// @Tags         pos
// @Produce      json
// @Security     BearerAuth
// @Param        date   query string false "Date YYYY-MM-DD (default: today)"
// @Param        status query string false "completed | refunded | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200    {object} dto.SaleListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/pos/sales [get]
func (h *POSHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sales"))
		return
	}
	resp := dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(list)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range list {
		resp.Data = append(resp.Data, saleToResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DailySummary godoc
// @Summary      Daily sales summary
// @Description  Aggregates completed sales for one day: count, revenue, discounts, tax.
// @Tags         pos
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "Date YYYY-MM-DD (default: today)"
// @Success      200  {object} dto.DailySummaryResponse
// @Router       /v1/pos/summary [get]
func (h *POSHandler) DailySummary(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), middleware.CompanyID(c), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to compute summary"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LookupBarcode godoc
// @Summary      Barcode price check
// @Description  Returns name, price and stock for the scanned barcode. Cached in redis.
// @Tags         pos
// @Produce      json
// @Security     BearerAuth
// @Param        barcode path string true "Barcode"
// @Success      200     {object} dto.BarcodeLookupResponse
// @Failure      404     {object} apierror.APIError
// @Router       /v1/pos/barcode/{barcode} [get]
func (h *POSHandler) LookupBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, apierror.New("barcode required"))
		return
	}
	resp, err := h.productSvc.LookupBarcode(c.Request.Context(), middleware.CompanyID(c), barcode)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
