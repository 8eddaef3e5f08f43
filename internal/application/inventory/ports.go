// Package inventory implementa el libro de inventario: el único camino de
// escritura de stock. Todo cambio de stock queda registrado como un
// movimiento inmutable con snapshot antes/después.
package inventory

import (
	"context"

	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, entregando repositorios
// ligados a esa transacción. Si fn devuelve error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
