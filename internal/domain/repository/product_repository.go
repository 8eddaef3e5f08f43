package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	Type     string // product | service | "" (todos)
	Search   string // busca en nombre y descripción
	LowStock bool   // stock <= umbral de stock bajo
	Limit    int
	Offset   int
}

// ProductRepository puerto de persistencia de productos.
// Stock y CostPrice solo se modifican por sus métodos dedicados, llamados
// desde el libro de inventario dentro de una transacción.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando su fila (SELECT FOR UPDATE).
	// Todo mutador de stock debe pasar por aquí para serializar check y write.
	GetForUpdate(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	List(filter ProductFilter) ([]*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(id string, stock int64) error
	UpdateCostPrice(id string, cost decimal.Decimal) error
	Delete(id string) error
}
