package entity

import "time"

// Supplier proveedor de compras.
type Supplier struct {
	ID          string
	Name        string
	TaxID       string // NIT
	ContactName string
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
