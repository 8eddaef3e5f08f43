package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
)

// ValidPaymentMethod indica si el método es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck:
		return true
	}
	return false
}

// Payment abono aplicado a una factura. Varias pagos pueden aplicar a la misma
// factura; la suma nunca debe superar el total (se valida al crear/actualizar).
type Payment struct {
	ID          string
	InvoiceID   string
	Amount      decimal.Decimal
	Method      string
	PaymentDate time.Time
	Notes       string
	CreatedAt   time.Time
}
