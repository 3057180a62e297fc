package dto

import "github.com/shopspring/decimal"

// PartnerResponse is the accountant's view of a merchant or representative:
// the derived balance caches alongside identity.
type PartnerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	Role          string          `json:"role"`
	Phone         *string         `json:"phone,omitempty"`
	Debt          decimal.Decimal `json:"debt"`
	ProductsCount int             `json:"products_count"`
	Active        bool            `json:"active"`
}

// ReconcileResponse reports the balances after a full recomputation.
type ReconcileResponse struct {
	UserID        string          `json:"user_id"`
	Debt          decimal.Decimal `json:"debt"`
	ProductsCount int             `json:"products_count"`
}
