package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/application/inventory"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/finance"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

const dateLayout = "2006-01-02"

func newID() string { return uuid.NewString() }

// inventoryApplySale registra la salida de stock de una línea de venta.
func inventoryApplySale(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	invoiceID, userID string,
	item dto.DocumentItemRequest,
) (*entity.InventoryMovement, error) {
	return inventory.Apply(movRepo, productRepo, inventory.ApplyInput{
		ProductID: item.ProductID,
		Type:      entity.MovementTypeSale,
		Quantity:  item.Quantity,
		Ref:       entity.InvoiceRef(invoiceID),
		UserID:    userID,
	})
}

// parseDate interpreta una fecha YYYY-MM-DD. Vacía devuelve def.
func parseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha inválida %q (se espera YYYY-MM-DD)", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// validateDocumentItems valida las líneas de un documento de venta y resuelve
// sus productos. Precio en cero toma el precio de catálogo; precio negativo
// es inválido. Devuelve las líneas normalizadas y los productos por ID.
func validateDocumentItems(productRepo repository.ProductRepository, items []dto.DocumentItemRequest) ([]dto.DocumentItemRequest, map[string]*entity.Product, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: el documento necesita al menos una línea", domain.ErrInvalidInput)
	}
	products := make(map[string]*entity.Product, len(items))
	normalized := make([]dto.DocumentItemRequest, len(items))
	for i, item := range items {
		if item.ProductID == "" {
			return nil, nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if item.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: línea %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		if item.Price.IsNegative() {
			return nil, nil, fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if item.Price.IsZero() {
			item.Price = product.Price
		}
		products[product.ID] = product
		normalized[i] = item
	}
	return normalized, products, nil
}

func toFinanceLines(items []dto.DocumentItemRequest) []finance.Line {
	lines := make([]finance.Line, len(items))
	for i, item := range items {
		lines[i] = finance.Line{UnitGross: item.Price, Quantity: item.Quantity}
	}
	return lines
}

// invoiceDraft datos ya validados para materializar una factura dentro de una tx.
type invoiceDraft struct {
	CustomerID string
	UserID     string
	Date       time.Time
	TaxRate    decimal.Decimal
	Items      []dto.DocumentItemRequest
	Products   map[string]*entity.Product
}

// createInvoiceTx materializa una factura: cabecera, líneas y las salidas de
// stock de cada producto físico, todo con los repos de la transacción en curso.
// Lo comparten la creación directa y la conversión de cotización.
func createInvoiceTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	d invoiceDraft,
) (*entity.Invoice, []*entity.InvoiceItem, error) {
	totals := finance.ComputeTotals(toFinanceLines(d.Items), d.TaxRate)

	now := time.Now()
	inv := &entity.Invoice{
		ID:          uuid.NewString(),
		CustomerID:  d.CustomerID,
		UserID:      d.UserID,
		InvoiceDate: d.Date,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		TaxRate:     d.TaxRate,
		Total:       totals.Total,
		BalanceDue:  totals.Total,
		Status:      entity.InvoiceStatusPending,
		CreatedAt:   now,
	}
	if err := invoiceRepo.Create(inv); err != nil {
		return nil, nil, err
	}

	items := make([]*entity.InvoiceItem, 0, len(d.Items))
	for _, reqItem := range d.Items {
		item := &entity.InvoiceItem{
			ID:        uuid.NewString(),
			InvoiceID: inv.ID,
			ProductID: reqItem.ProductID,
			Quantity:  reqItem.Quantity,
			Price:     reqItem.Price,
		}
		if err := invoiceRepo.CreateItem(item); err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}

	// Salidas de stock: solo productos físicos; los servicios no mueven inventario.
	for _, reqItem := range d.Items {
		if d.Products[reqItem.ProductID].IsService() {
			continue
		}
		if _, err := inventory.Apply(movRepo, productRepo, inventory.ApplyInput{
			ProductID: reqItem.ProductID,
			Type:      entity.MovementTypeSale,
			Quantity:  reqItem.Quantity,
			Ref:       entity.InvoiceRef(inv.ID),
			UserID:    d.UserID,
		}); err != nil {
			return nil, nil, err
		}
	}

	return inv, items, nil
}

// restoreInvoiceStockTx devuelve al inventario las unidades de los productos
// físicos de la factura (movimientos de tipo return referenciando la factura).
func restoreInvoiceStockTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	invoiceID, userID, notes string,
) error {
	items, err := invoiceRepo.GetItems(invoiceID)
	if err != nil {
		return err
	}
	for _, item := range items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return err
		}
		if product.IsService() {
			continue
		}
		if _, err := inventory.Apply(movRepo, productRepo, inventory.ApplyInput{
			ProductID: item.ProductID,
			Type:      entity.MovementTypeReturn,
			Quantity:  item.Quantity,
			Ref:       entity.InvoiceRef(invoiceID),
			Notes:     notes,
			UserID:    userID,
		}); err != nil {
			return err
		}
	}
	return nil
}
