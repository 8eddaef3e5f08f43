package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/finance"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// InvoiceUseCase crea, consulta y administra facturas de venta.
// Crear una factura descuenta el stock de sus productos físicos en la misma
// transacción; si alguna línea no tiene stock, nada se persiste.
type InvoiceUseCase struct {
	txRunner     BillingTxRunner
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	notifier     Notifier
	pdfGen       InvoicePDFGenerator
	taxRate      decimal.Decimal
	log          *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso de facturas.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	notifier Notifier,
	pdfGen InvoicePDFGenerator,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		notifier:     notifier,
		pdfGen:       pdfGen,
		taxRate:      taxRate,
		log:          log,
	}
}

// Create crea una factura con sus líneas y descuenta stock atómicamente.
func (uc *InvoiceUseCase) Create(ctx context.Context, userID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id es requerido", domain.ErrInvalidInput)
	}

	// Validaciones de solo lectura fuera de la transacción.
	customer, err := uc.customerRepo.GetByID(req.CustomerID)
	if err != nil {
		return nil, err
	}
	items, products, err := validateDocumentItems(uc.productRepo, req.Items)
	if err != nil {
		return nil, err
	}
	invoiceDate, err := parseDate(req.InvoiceDate, time.Now())
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	var created []*entity.InvoiceItem
	err = uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		inv, created, err = createInvoiceTx(movRepo, productRepo, invoiceRepo, invoiceDraft{
			CustomerID: req.CustomerID,
			UserID:     userID,
			Date:       invoiceDate,
			TaxRate:    uc.taxRate,
			Items:      items,
			Products:   products,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("customer_id", inv.CustomerID).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura creada")

	// La notificación ocurre fuera de la tx: su fallo no afecta a la factura.
	if uc.notifier != nil {
		uc.notifier.InvoiceCreated(inv, customer)
	}

	return uc.toResponse(inv, created, decimal.Zero), nil
}

// Get obtiene una factura con sus líneas y el total pagado.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	paid, err := uc.paymentRepo.SumByInvoice(id, "")
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv, items, paid), nil
}

// List lista facturas con filtros.
func (uc *InvoiceUseCase) List(ctx context.Context, filter repository.InvoiceFilter) ([]*dto.InvoiceResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	invoices, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, uc.toResponse(inv, nil, inv.Total.Sub(inv.BalanceDue)))
	}
	return out, nil
}

// Update reemplaza por completo las líneas y cabecera de una factura pendiente.
// Devuelve el stock de las líneas anteriores y descuenta el de las nuevas en
// la misma transacción; cualquier fallo deja la factura como estaba.
func (uc *InvoiceUseCase) Update(ctx context.Context, userID, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	items, products, err := validateDocumentItems(uc.productRepo, req.Items)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	var updated []*entity.InvoiceItem
	err = uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InvoiceStatusPending {
			return fmt.Errorf("%w: solo se editan facturas pendientes (estado actual %s)", domain.ErrConflict, inv.Status)
		}

		// Devolver el stock de las líneas actuales y reemplazarlas.
		if err := restoreInvoiceStockTx(movRepo, productRepo, invoiceRepo, inv.ID, userID, "edición de factura"); err != nil {
			return err
		}
		if err := invoiceRepo.DeleteItems(inv.ID); err != nil {
			return err
		}

		if req.CustomerID != "" {
			inv.CustomerID = req.CustomerID
		}
		if req.InvoiceDate != "" {
			date, err := parseDate(req.InvoiceDate, inv.InvoiceDate)
			if err != nil {
				return err
			}
			inv.InvoiceDate = date
		}

		totals := finance.ComputeTotals(toFinanceLines(items), inv.TaxRate)
		inv.Subtotal = totals.Subtotal
		inv.TaxAmount = totals.TaxAmount
		inv.Total = totals.Total
		inv.BalanceDue = totals.Total // pendiente: sin pagos aplicados

		updated = updated[:0]
		for _, reqItem := range items {
			item := &entity.InvoiceItem{
				ID:        newID(),
				InvoiceID: inv.ID,
				ProductID: reqItem.ProductID,
				Quantity:  reqItem.Quantity,
				Price:     reqItem.Price,
			}
			if err := invoiceRepo.CreateItem(item); err != nil {
				return err
			}
			updated = append(updated, item)
		}
		for _, reqItem := range items {
			if products[reqItem.ProductID].IsService() {
				continue
			}
			if _, err := inventoryApplySale(movRepo, productRepo, inv.ID, userID, reqItem); err != nil {
				return err
			}
		}

		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}

	return uc.toResponse(inv, updated, decimal.Zero), nil
}

// UpdateStatus aplica una transición explícita de estado:
//
//	paid     liquidación manual; deja el saldo en cero sin fabricar pagos
//	pending  revierte la liquidación manual; recalcula el saldo desde los pagos
//	canceled anulación desde cualquier estado no anulado; restaura el stock,
//	         elimina las líneas y deja todos los montos en cero
//
// partial es un estado derivado de los pagos y no se asigna a mano.
// canceled es terminal: una factura anulada no cambia más de estado.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, userID, id, status string) (*dto.InvoiceResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var inv *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if inv.Status == entity.InvoiceStatusCanceled {
			return &domain.TransitionError{Entity: "invoice", From: inv.Status, To: status}
		}

		switch status {
		case entity.InvoiceStatusPaid:
			inv.Status = entity.InvoiceStatusPaid
			inv.BalanceDue = decimal.Zero
		case entity.InvoiceStatusPending:
			paid, err := paymentRepo.SumByInvoice(inv.ID, "")
			if err != nil {
				return err
			}
			inv.Status = entity.InvoiceStatusPending
			inv.BalanceDue = inv.Total.Sub(paid)
		case entity.InvoiceStatusCanceled:
			// Restaurar el stock antes de borrar las líneas: la restauración
			// las lee de la propia factura.
			if err := restoreInvoiceStockTx(movRepo, productRepo, invoiceRepo, inv.ID, userID, "anulación de factura"); err != nil {
				return err
			}
			if err := invoiceRepo.DeleteItems(inv.ID); err != nil {
				return err
			}
			inv.Status = entity.InvoiceStatusCanceled
			inv.Subtotal = decimal.Zero
			inv.TaxAmount = decimal.Zero
			inv.Total = decimal.Zero
			inv.BalanceDue = decimal.Zero
		default:
			return fmt.Errorf("%w: estado %q no asignable", domain.ErrInvalidInput, status)
		}
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("invoice_id", id).Str("status", inv.Status).Msg("estado de factura actualizado")
	return uc.toResponse(inv, nil, inv.Total.Sub(inv.BalanceDue)), nil
}

// Delete elimina una factura no pagada junto con sus pagos y líneas.
// Si la factura aún retiene stock (pending/partial) lo devuelve primero.
func (uc *InvoiceUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	return uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if inv.Status == entity.InvoiceStatusPaid {
			return fmt.Errorf("%w: una factura pagada no se elimina", domain.ErrConflict)
		}
		if inv.Status != entity.InvoiceStatusCanceled {
			if err := restoreInvoiceStockTx(movRepo, productRepo, invoiceRepo, inv.ID, userID, "eliminación de factura"); err != nil {
				return err
			}
		}
		if err := paymentRepo.DeleteByInvoice(inv.ID); err != nil {
			return err
		}
		if err := invoiceRepo.DeleteItems(inv.ID); err != nil {
			return err
		}
		return invoiceRepo.Delete(inv.ID)
	})
}

// GeneratePDF renderiza la factura como PDF con sus líneas resueltas.
func (uc *InvoiceUseCase) GeneratePDF(ctx context.Context, id string) ([]byte, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	customer, err := uc.customerRepo.GetByID(inv.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := uc.invoiceRepo.GetItems(id)
	if err != nil {
		return nil, err
	}

	lines := make([]InvoiceLine, 0, len(items))
	for _, item := range items {
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, InvoiceLine{
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitGross:   item.Price,
			LineTotal:   item.Price.Mul(decimal.NewFromInt(item.Quantity)).Round(2),
		})
	}
	return uc.pdfGen.Generate(inv, customer, lines)
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, items []*entity.InvoiceItem, paid decimal.Decimal) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		UserID:      inv.UserID,
		InvoiceDate: formatDate(inv.InvoiceDate),
		Subtotal:    inv.Subtotal,
		TaxAmount:   inv.TaxAmount,
		TaxRate:     inv.TaxRate,
		Total:       inv.Total,
		BalanceDue:  inv.BalanceDue,
		Status:      inv.Status,
		TotalPaid:   paid,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp
}
