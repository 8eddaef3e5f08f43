package inventory

import (
	"context"
	"fmt"

	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// UseCase consultas de inventario y ajustes manuales de stock.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	log         *logger.Logger
}

// NewUseCase crea el caso de uso de inventario.
func NewUseCase(txRunner TxRunner, productRepo repository.ProductRepository, movRepo repository.InventoryMovementRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, productRepo: productRepo, movRepo: movRepo, log: log}
}

// RegisterAdjustment registra un ajuste manual de stock (delta con signo)
// atribuido al usuario autenticado.
func (uc *UseCase) RegisterAdjustment(ctx context.Context, userID string, req dto.AdjustmentRequest) (*entity.InventoryMovement, error) {
	if req.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id es requerido", domain.ErrInvalidInput)
	}

	var movement *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		movement, err = Apply(movRepo, productRepo, ApplyInput{
			ProductID: req.ProductID,
			Type:      entity.MovementTypeAdjustment,
			Quantity:  req.Quantity,
			Ref:       entity.ManualRef(),
			Notes:     req.Notes,
			UserID:    userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", movement.ProductID).
		Int64("quantity", movement.Quantity).
		Int64("stock_after", movement.StockAfter).
		Str("user_id", userID).
		Msg("ajuste de stock registrado")
	return movement, nil
}

// ListMovements lista el historial de movimientos con filtros.
func (uc *UseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return uc.movRepo.List(filter)
}

// MovementsByProduct historial de un producto concreto (el más reciente primero).
func (uc *UseCase) MovementsByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if _, err := uc.productRepo.GetByID(productID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return uc.movRepo.List(repository.MovementFilter{
		ProductID: productID,
		Limit:     limit,
		Offset:    offset,
	})
}

// Summary resumen del inventario físico: conteos y alertas de stock bajo.
// Solo considera productos físicos; los servicios no tienen stock.
func (uc *UseCase) Summary(ctx context.Context) (*dto.InventorySummaryResponse, error) {
	products, err := uc.productRepo.List(repository.ProductFilter{
		Type:  entity.ProductTypeProduct,
		Limit: 10000,
	})
	if err != nil {
		return nil, err
	}

	summary := &dto.InventorySummaryResponse{LowStock: []dto.StockAlert{}}
	for _, p := range products {
		summary.TotalProducts++
		summary.TotalUnits += p.Stock
		if p.Stock <= entity.LowStockThreshold {
			summary.LowStock = append(summary.LowStock, dto.StockAlert{
				ProductID: p.ID,
				Name:      p.Name,
				SKU:       p.SKU,
				Stock:     p.Stock,
			})
		}
	}
	return summary, nil
}
