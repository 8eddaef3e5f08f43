package repository

import (
	"time"

	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas.
type InvoiceFilter struct {
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// InvoiceRepository puerto de persistencia de facturas y sus líneas.
// Las líneas pertenecen exclusivamente a su factura (borrado en cascada).
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	GetByID(id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila de la factura; serializa la reconciliación
	// de pagos concurrentes sobre la misma factura.
	GetForUpdate(id string) (*entity.Invoice, error)
	GetItems(invoiceID string) ([]*entity.InvoiceItem, error)
	Update(invoice *entity.Invoice) error
	List(filter InvoiceFilter) ([]*entity.Invoice, error)
	DeleteItems(invoiceID string) error
	Delete(id string) error
}
