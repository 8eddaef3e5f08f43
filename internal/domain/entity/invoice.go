package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura. El estado derivado de pagos (pending/partial/paid)
// lo recalcula el caso de uso de pagos; canceled es una acción explícita.
const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusPartial  = "partial"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusCanceled = "canceled"
)

// Invoice cabecera de una factura de venta.
// Invariantes: Total = Subtotal + TaxAmount (redondeado a 2 decimales);
// BalanceDue = Total - suma de pagos.
type Invoice struct {
	ID          string
	CustomerID  string
	UserID      string
	InvoiceDate time.Time
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TaxRate     decimal.Decimal // 4 decimales (ej. 0.1200)
	Total       decimal.Decimal
	BalanceDue  decimal.Decimal
	Status      string
	CreatedAt   time.Time
}

// InvoiceItem línea de una factura. Price es el precio unitario CON IVA.
type InvoiceItem struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  int64
	Price     decimal.Decimal
}
