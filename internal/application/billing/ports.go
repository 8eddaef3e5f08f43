// Package billing implementa los documentos financieros del sistema:
// facturas, pagos, cotizaciones y compras. Todo documento que mueve stock
// lo hace a través del libro de inventario, dentro de una sola transacción.
package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de inventario y los de documentos. Si fn devuelve error se hace rollback.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// Notifier notificación de eventos de facturación. Las implementaciones no
// deben bloquear: el envío ocurre fuera de la transacción y sus fallos no
// afectan al documento ya persistido.
type Notifier interface {
	InvoiceCreated(invoice *entity.Invoice, customer *entity.Customer)
}

// InvoiceLine línea de factura resuelta (con nombre de producto) para renderizado.
type InvoiceLine struct {
	ProductName string
	Quantity    int64
	UnitGross   decimal.Decimal
	LineTotal   decimal.Decimal
}

// InvoicePDFGenerator renderiza una factura como PDF.
type InvoicePDFGenerator interface {
	Generate(invoice *entity.Invoice, customer *entity.Customer, lines []InvoiceLine) ([]byte, error)
}
