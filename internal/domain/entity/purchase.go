package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. Recibir la mercancía es el único punto donde
// la compra afecta stock y costo.
const (
	PurchaseStatusPending  = "pending"
	PurchaseStatusReceived = "received"
	PurchaseStatusCanceled = "canceled"
)

// Purchase orden de compra a un proveedor.
type Purchase struct {
	ID             string
	SupplierID     string
	UserID         string
	PurchaseNumber string // correlativo PUR-000001, único
	PurchaseDate   time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TaxRate        decimal.Decimal
	Total          decimal.Decimal
	Status         string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PurchaseItem línea de una compra. CostPrice es el costo unitario CON IVA.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   int64
	CostPrice  decimal.Decimal
	TotalCost  decimal.Decimal // Quantity * CostPrice
}
