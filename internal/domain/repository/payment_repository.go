package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// PaymentRepository puerto de persistencia de pagos.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	GetByID(id string) (*entity.Payment, error)
	Update(payment *entity.Payment) error
	Delete(id string) error
	DeleteByInvoice(invoiceID string) error
	ListByInvoice(invoiceID string) ([]*entity.Payment, error)
	List(limit, offset int) ([]*entity.Payment, error)
	// SumByInvoice suma los pagos de la factura, excluyendo opcionalmente un
	// pago (excludeID) para validar una actualización contra "los demás".
	SumByInvoice(invoiceID, excludeID string) (decimal.Decimal, error)
}
