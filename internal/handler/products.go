package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
)

type ProductsHandler struct{ svc *service.ProductService }

func NewProductsHandler(svc *service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Product detail"
// @Success      201  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CompanyID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, productToResponse(p))
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name        query string false "Name filter (partial)"
// @Param        category_id query string false "Category UUID"
// @Param        barcode     query string false "Exact barcode"
// @Param        active      query string false "true | false | all"
// @Param        low_stock   query bool   false "Only low stock products"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Page size (default 50)"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list products"))
		return
	}
	resp := dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(list)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range list {
		resp.Data = append(resp.Data, productToResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.CompanyID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(p))
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update. Stock is excluded — use the stock adjustment endpoint.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Product UUID"
// @Param        body body dto.UpdateProductRequest true "Changes"
// @Success      200  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.CompanyID(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(p))
}

// Delete godoc
// @Summary      Delete a product
// @Description  Products with ledger history cannot be deleted; deactivate them instead.
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CompanyID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deactivate godoc
// @Summary      Deactivate a product
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id}/deactivate [patch]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), middleware.CompanyID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary      Reactivate a product
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id}/reactivate [patch]
func (h *ProductsHandler) Reactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivate(c.Request.Context(), middleware.CompanyID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Adjust stock manually
// @Description  Applies a signed delta with a reason, recorded as a stock movement.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Product UUID"
// @Param        body body dto.AdjustStockRequest true "Delta and reason"
// @Success      200  {object} dto.ProductResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/products/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.AdjustStock(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(p))
}

// ListMovements godoc
// @Summary      Stock movement audit trail
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query string false "Product UUID"
// @Param        type       query string false "Movement type"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50)"
// @Success      200 {object} map[string]interface{}
// @Router       /v1/stock-movements [get]
func (h *ProductsHandler) ListMovements(c *gin.Context) {
	var filter struct {
		ProductID string `form:"product_id"`
		Type      string `form:"type"`
		Page      int    `form:"page,default=1"`
		Limit     int    `form:"limit,default=50"`
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	mf := repository.StockMovementFilter{Type: filter.Type, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
			return
		}
		mf.ProductID = &pid
	}
	list, total, err := h.svc.ListMovements(c.Request.Context(), middleware.CompanyID(c), mf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list movements"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  list,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}
