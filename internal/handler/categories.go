package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
)

type CategoriesHandler struct{ svc *service.CategoryService }

func NewCategoriesHandler(svc *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// Create godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateCategoryRequest true "Category detail"
// @Success      201  {object} dto.CategoryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/categories [post]
func (h *CategoriesHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), middleware.CompanyID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryToResponse(cat))
}

// List godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.CategoryResponse
// @Router       /v1/categories [get]
func (h *CategoriesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list categories"))
		return
	}
	resp := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		resp = append(resp, categoryToResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Category UUID"
// @Param        body body dto.UpdateCategoryRequest true "Changes"
// @Success      200  {object} dto.CategoryResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/categories/{id} [put]
func (h *CategoriesHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, err := h.svc.Update(c.Request.Context(), middleware.CompanyID(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryToResponse(cat))
}

// Delete godoc
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        id path string true "Category UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/categories/{id} [delete]
func (h *CategoriesHandler) Delete(c *gin.Context) {
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
