package repository

import (
	"time"

	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// MovementFilter filtros de listado de movimientos.
type MovementFilter struct {
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// InventoryMovementRepository puerto del historial de movimientos.
// Append-only: no expone update ni delete.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	List(filter MovementFilter) ([]*entity.InventoryMovement, error)
}
