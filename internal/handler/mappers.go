package handler

import (
	"time"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
)

func transactionToResponse(t *model.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:        t.ID.String(),
		Type:      string(t.Type),
		Status:    string(t.Status),
		Amount:    t.Amount,
		Notes:     t.Notes,
		Items:     make([]dto.TransactionItemResponse, 0, len(t.Items)),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.UserID != nil {
		id := t.UserID.String()
		resp.UserID = &id
	}
	if t.User != nil {
		resp.UserName = t.User.Name
	}
	if t.ApprovedBy != nil {
		resp.ApprovedBy = &t.ApprovedBy.Name
	}
	if t.ApprovedAt != nil {
		at := t.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	for i := range t.Items {
		resp.Items = append(resp.Items, transactionItemToResponse(&t.Items[i]))
	}
	return resp
}

func transactionItemToResponse(item *model.TransactionItem) dto.TransactionItemResponse {
	resp := dto.TransactionItemResponse{
		ID:        item.ID.String(),
		ProductID: item.ProductID.String(),
		Quantity:  item.Quantity,
		Price:     item.Price,
		Total:     item.Total,
	}
	if item.Product != nil {
		resp.ProductName = item.Product.Name
	}
	return resp
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:                 s.ID.String(),
		ReceiptNumber:      s.ReceiptNumber,
		Items:              make([]dto.SaleItemResponse, 0, len(s.Items)),
		Subtotal:           s.Subtotal,
		Discount:           s.Discount,
		DiscountPercentage: s.DiscountPercentage,
		TaxAmount:          s.TaxAmount,
		Total:              s.Total,
		PaymentMethod:      s.PaymentMethod,
		AmountPaid:         s.AmountPaid,
		Change:             s.Change,
		Status:             s.Status,
		CustomerName:       s.CustomerName,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
	}
	for i := range s.Items {
		item := &s.Items[i]
		ir := dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
		}
		if item.Product != nil {
			ir.ProductName = item.Product.Name
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		Cost:              p.Cost,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		SKU:               p.SKU,
		Barcode:           p.Barcode,
		Active:            p.Active,
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}

func categoryToResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
	}
}
