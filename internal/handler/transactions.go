package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/middleware"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"
)

type TransactionsHandler struct{ svc *service.LedgerService }

func NewTransactionsHandler(svc *service.LedgerService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Create godoc
// @Summary      Register a ledger transaction
// @Description  Creates a pending take/restore/payment/fees transaction. Stock and balances move only at approval.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateTransactionRequest true "Transaction detail"
// @Success      201  {object} dto.TransactionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transactions [post]
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), middleware.CompanyID(c), middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(t))
}

// List godoc
// @Summary      List transactions
// @Description  Paginated company transactions, filterable by partner, type and status.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query string false "Partner UUID"
// @Param        type    query string false "take | restore | payment | fees"
// @Param        status  query string false "pending | approved | rejected"
// @Param        page    query int    false "Page (default 1)"
// @Param        limit   query int    false "Page size (default 50)"
// @Success      200     {object} dto.TransactionListResponse
// @Failure      400     {object} apierror.APIError
// @Router       /v1/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list transactions"))
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

// Get godoc
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.TransactionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id} [get]
func (h *TransactionsHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), middleware.CompanyID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(t))
}

// Approve godoc
// @Summary      Approve a pending transaction
// @Description  Applies stock deltas and partner balance effects. Approving a non-pending transaction returns success=false.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.DecisionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id}/approve [post]
func (h *TransactionsHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	approved, err := h.svc.Approve(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.writeDecision(c, approved, model.StatusApproved)
}

// Reject godoc
// @Summary      Reject a pending transaction
// @Description  No stock or balance effects. Rejecting a non-pending transaction returns success=false.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.DecisionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id}/reject [post]
func (h *TransactionsHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rejected, err := h.svc.Reject(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.writeDecision(c, rejected, model.StatusRejected)
}

func (h *TransactionsHandler) writeDecision(c *gin.Context, success bool, newStatus model.TransactionStatus) {
	resp := dto.DecisionResponse{Success: success, Status: string(newStatus)}
	if !success {
		resp.Status = "unchanged"
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a transaction
// @Description  Approved transactions have their stock and balance effects reversed before removal.
// @Tags         transactions
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id} [delete]
func (h *TransactionsHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem godoc
// @Summary      Add an item to a transaction
// @Description  Snapshots the product price. On approved transactions the stock effect applies immediately.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Transaction UUID"
// @Param        body body dto.AddItemRequest true "Item detail"
// @Success      201  {object} dto.TransactionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transactions/{id}/items [post]
func (h *TransactionsHandler) AddItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.AddItem(c.Request.Context(), middleware.CompanyID(c), id, middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(t))
}

// UpdateItem godoc
// @Summary      Update a transaction item
// @Description  Quantity edits on approved transactions apply only the delta to stock; price edits are pending-only.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string               true "Transaction UUID"
// @Param        itemId path string               true "Item UUID"
// @Param        body   body dto.UpdateItemRequest true "Changes"
// @Success      200    {object} dto.TransactionResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/transactions/{id}/items/{itemId} [patch]
func (h *TransactionsHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t, err := h.svc.UpdateItem(c.Request.Context(), middleware.CompanyID(c), id, itemID, middleware.UserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(t))
}

// RemoveItem godoc
// @Summary      Remove a transaction item
// @Description  On approved transactions the item's stock effect is reversed.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string true "Transaction UUID"
// @Param        itemId path string true "Item UUID"
// @Success      200    {object} dto.TransactionResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/transactions/{id}/items/{itemId} [delete]
func (h *TransactionsHandler) RemoveItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	t, err := h.svc.RemoveItem(c.Request.Context(), middleware.CompanyID(c), id, itemID, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(t))
}
