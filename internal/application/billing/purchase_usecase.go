package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/application/inventory"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/finance"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// PurchaseUseCase administra compras a proveedores. Crear una compra no toca
// stock: recibirla es el único punto donde entra mercancía y se actualiza el
// costo de los productos.
type PurchaseUseCase struct {
	txRunner     BillingTxRunner
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	taxRate      decimal.Decimal
	log          *logger.Logger
}

// NewPurchaseUseCase construye el caso de uso de compras.
func NewPurchaseUseCase(
	txRunner BillingTxRunner,
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		taxRate:      taxRate,
		log:          log,
	}
}

// validatePurchaseItems valida las líneas de compra. El costo debe ser
// positivo; no hay costo de catálogo que sirva de fallback.
func (uc *PurchaseUseCase) validatePurchaseItems(items []dto.PurchaseItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: la compra necesita al menos una línea", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: línea %d con cantidad no positiva", domain.ErrInvalidInput, i+1)
		}
		if !item.CostPrice.IsPositive() {
			return fmt.Errorf("%w: línea %d con costo no positivo", domain.ErrInvalidInput, i+1)
		}
		if _, err := uc.productRepo.GetByID(item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func purchaseFinanceLines(items []dto.PurchaseItemRequest) []finance.Line {
	lines := make([]finance.Line, len(items))
	for i, item := range items {
		lines[i] = finance.Line{UnitGross: item.CostPrice, Quantity: item.Quantity}
	}
	return lines
}

// Create crea una compra en pending con correlativo PUR-NNNNNN.
func (uc *PurchaseUseCase) Create(ctx context.Context, userID string, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.SupplierID == "" {
		return nil, fmt.Errorf("%w: supplier_id es requerido", domain.ErrInvalidInput)
	}
	if _, err := uc.supplierRepo.GetByID(req.SupplierID); err != nil {
		return nil, err
	}
	if err := uc.validatePurchaseItems(req.Items); err != nil {
		return nil, err
	}
	purchaseDate, err := parseDate(req.PurchaseDate, time.Now())
	if err != nil {
		return nil, err
	}

	totals := finance.ComputeTotals(purchaseFinanceLines(req.Items), uc.taxRate)

	var purchase *entity.Purchase
	var created []*entity.PurchaseItem
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		seq, err := seqRepo.Next(repository.SequencePurchase)
		if err != nil {
			return err
		}
		now := time.Now()
		purchase = &entity.Purchase{
			ID:             newID(),
			SupplierID:     req.SupplierID,
			UserID:         userID,
			PurchaseNumber: fmt.Sprintf("PUR-%06d", seq),
			PurchaseDate:   purchaseDate,
			Subtotal:       totals.Subtotal,
			TaxAmount:      totals.TaxAmount,
			TaxRate:        uc.taxRate,
			Total:          totals.Total,
			Status:         entity.PurchaseStatusPending,
			Notes:          req.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}
		for _, reqItem := range req.Items {
			item := &entity.PurchaseItem{
				ID:         newID(),
				PurchaseID: purchase.ID,
				ProductID:  reqItem.ProductID,
				Quantity:   reqItem.Quantity,
				CostPrice:  reqItem.CostPrice,
				TotalCost:  reqItem.CostPrice.Mul(decimal.NewFromInt(reqItem.Quantity)).Round(2),
			}
			if err := purchaseRepo.CreateItem(item); err != nil {
				return err
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("purchase_id", purchase.ID).Str("number", purchase.PurchaseNumber).Msg("compra creada")
	return toPurchaseResponse(purchase, created), nil
}

// Receive marca la compra como recibida: por cada producto físico registra la
// entrada de stock y actualiza su costo al costo de la línea, todo en una
// transacción. Es el único punto donde una compra muta stock o costo.
func (uc *PurchaseUseCase) Receive(ctx context.Context, userID, id string) (*dto.PurchaseResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var purchase *entity.Purchase
	var items []*entity.PurchaseItem
	err := uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		purchase, err = purchaseRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if purchase.Status != entity.PurchaseStatusPending {
			return &domain.TransitionError{Entity: "purchase", From: purchase.Status, To: entity.PurchaseStatusReceived}
		}
		items, err = purchaseRepo.GetItems(purchase.ID)
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
				Type:      entity.MovementTypePurchase,
				Quantity:  item.Quantity,
				Ref:       entity.PurchaseRef(purchase.ID),
				UserID:    userID,
			}); err != nil {
				return err
			}
			if err := productRepo.UpdateCostPrice(item.ProductID, item.CostPrice); err != nil {
				return err
			}
		}

		purchase.Status = entity.PurchaseStatusReceived
		purchase.UpdatedAt = time.Now()
		return purchaseRepo.Update(purchase)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("purchase_id", id).Msg("compra recibida")
	return toPurchaseResponse(purchase, items), nil
}

// Cancel anula una compra pendiente. Una compra recibida ya entró al
// inventario y no se anula; una corrección es un ajuste manual.
func (uc *PurchaseUseCase) Cancel(ctx context.Context, userID, id string) (*dto.PurchaseResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	var purchase *entity.Purchase
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		purchase, err = purchaseRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if purchase.Status != entity.PurchaseStatusPending {
			return &domain.TransitionError{Entity: "purchase", From: purchase.Status, To: entity.PurchaseStatusCanceled}
		}
		purchase.Status = entity.PurchaseStatusCanceled
		purchase.UpdatedAt = time.Now()
		return purchaseRepo.Update(purchase)
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase, nil), nil
}

// Update modifica una compra pendiente. Items en nil conserva las líneas;
// una lista nueva las reemplaza y recalcula totales.
func (uc *PurchaseUseCase) Update(ctx context.Context, userID, id string, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.Items != nil {
		if err := uc.validatePurchaseItems(req.Items); err != nil {
			return nil, err
		}
	}

	var purchase *entity.Purchase
	var current []*entity.PurchaseItem
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		purchase, err = purchaseRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if purchase.Status != entity.PurchaseStatusPending {
			return fmt.Errorf("%w: solo se editan compras pendientes (estado actual %s)", domain.ErrConflict, purchase.Status)
		}

		if req.SupplierID != "" {
			purchase.SupplierID = req.SupplierID
		}
		if req.PurchaseDate != "" {
			date, err := parseDate(req.PurchaseDate, purchase.PurchaseDate)
			if err != nil {
				return err
			}
			purchase.PurchaseDate = date
		}
		if req.Notes != nil {
			purchase.Notes = *req.Notes
		}

		if req.Items != nil {
			if err := purchaseRepo.DeleteItems(purchase.ID); err != nil {
				return err
			}
			current = current[:0]
			for _, reqItem := range req.Items {
				item := &entity.PurchaseItem{
					ID:         newID(),
					PurchaseID: purchase.ID,
					ProductID:  reqItem.ProductID,
					Quantity:   reqItem.Quantity,
					CostPrice:  reqItem.CostPrice,
					TotalCost:  reqItem.CostPrice.Mul(decimal.NewFromInt(reqItem.Quantity)).Round(2),
				}
				if err := purchaseRepo.CreateItem(item); err != nil {
					return err
				}
				current = append(current, item)
			}
			totals := finance.ComputeTotals(purchaseFinanceLines(req.Items), purchase.TaxRate)
			purchase.Subtotal = totals.Subtotal
			purchase.TaxAmount = totals.TaxAmount
			purchase.Total = totals.Total
		} else {
			current, err = purchaseRepo.GetItems(purchase.ID)
			if err != nil {
				return err
			}
		}

		purchase.UpdatedAt = time.Now()
		return purchaseRepo.Update(purchase)
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase, current), nil
}

// Delete elimina una compra no recibida junto con sus líneas.
func (uc *PurchaseUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	return uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.QuoteRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		purchase, err := purchaseRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if purchase.Status == entity.PurchaseStatusReceived {
			return fmt.Errorf("%w: una compra recibida no se elimina", domain.ErrConflict)
		}
		if err := purchaseRepo.DeleteItems(purchase.ID); err != nil {
			return err
		}
		return purchaseRepo.Delete(purchase.ID)
	})
}

// Get obtiene una compra con sus líneas.
func (uc *PurchaseUseCase) Get(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	items, err := uc.purchaseRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase, items), nil
}

// List lista compras con filtros.
func (uc *PurchaseUseCase) List(ctx context.Context, filter repository.PurchaseFilter) ([]*dto.PurchaseResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	purchases, err := uc.purchaseRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p, nil))
	}
	return out, nil
}

// Stats agregados de compras del rango [from, to].
func (uc *PurchaseUseCase) Stats(ctx context.Context, from, to time.Time) (*dto.PurchaseStatsResponse, error) {
	stats, err := uc.purchaseRepo.Stats(from, to)
	if err != nil {
		return nil, err
	}
	return &dto.PurchaseStatsResponse{
		TotalPurchases:    stats.TotalPurchases,
		TotalAmount:       stats.TotalAmount,
		PendingPurchases:  stats.PendingPurchases,
		ReceivedPurchases: stats.ReceivedPurchases,
	}, nil
}

func toPurchaseResponse(p *entity.Purchase, items []*entity.PurchaseItem) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:             p.ID,
		SupplierID:     p.SupplierID,
		UserID:         p.UserID,
		PurchaseNumber: p.PurchaseNumber,
		PurchaseDate:   formatDate(p.PurchaseDate),
		Subtotal:       p.Subtotal,
		TaxAmount:      p.TaxAmount,
		TaxRate:        p.TaxRate,
		Total:          p.Total,
		Status:         p.Status,
		Notes:          p.Notes,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.PurchaseItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CostPrice: item.CostPrice,
			TotalCost: item.TotalCost,
		})
	}
	return resp
}
