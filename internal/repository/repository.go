// Package repository contains the data access layer. Every aggregate gets an
// interface plus a GORM implementation; methods suffixed Tx take a live
// *gorm.DB and must be called inside a transaction opened by the service.
package repository

import "gorm.io/gorm/clause"

// forUpdate is the row lock used to serialize read-modify-write on an
// aggregate (transaction + touched products + user balances).
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
