package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

// ApplyInput describe un movimiento de stock a registrar.
// Quantity es en valor absoluto para purchase/sale/return (el libro aplica el
// signo según el tipo) y con signo para adjustment.
type ApplyInput struct {
	ProductID string
	Type      string
	Quantity  int64
	Ref       entity.MovementRef
	Notes     string
	UserID    string
}

// Apply registra un movimiento de stock: bloquea la fila del producto,
// verifica que el resultado no sea negativo, actualiza el stock y escribe
// el movimiento con snapshot antes/después. Debe llamarse con repositorios
// ligados a una transacción; el lock vive hasta el commit.
//
// Los servicios no acumulan stock: intentar moverles stock es ErrInvalidInput.
func Apply(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository, in ApplyInput) (*entity.InventoryMovement, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: movimiento sin usuario", domain.ErrUnauthenticated)
	}
	delta, err := signedDelta(in.Type, in.Quantity)
	if err != nil {
		return nil, err
	}

	product, err := productRepo.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.IsService() {
		return nil, fmt.Errorf("%w: los servicios no manejan stock", domain.ErrInvalidInput)
	}

	stockBefore := product.Stock
	stockAfter := stockBefore + delta
	if stockAfter < 0 {
		return nil, &domain.StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   stockBefore,
			Requested:   -delta,
		}
	}

	if err := productRepo.UpdateStock(product.ID, stockAfter); err != nil {
		return nil, err
	}

	movement := &entity.InventoryMovement{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		Type:          in.Type,
		Quantity:      delta,
		StockBefore:   stockBefore,
		StockAfter:    stockAfter,
		ReferenceType: in.Ref.Type,
		ReferenceID:   in.Ref.ID,
		Notes:         in.Notes,
		UserID:        in.UserID,
		CreatedAt:     time.Now(),
	}
	if err := movRepo.Create(movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// signedDelta normaliza la cantidad al delta con signo que se persiste.
func signedDelta(movType string, qty int64) (int64, error) {
	switch movType {
	case entity.MovementTypePurchase, entity.MovementTypeReturn:
		if qty <= 0 {
			return 0, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
		}
		return qty, nil
	case entity.MovementTypeSale:
		if qty <= 0 {
			return 0, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
		}
		return -qty, nil
	case entity.MovementTypeAdjustment:
		if qty == 0 {
			return 0, fmt.Errorf("%w: un ajuste de cero no mueve stock", domain.ErrInvalidInput)
		}
		return qty, nil
	default:
		return 0, fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, movType)
	}
}
