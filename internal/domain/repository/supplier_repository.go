package repository

import "github.com/tu-usuario/facturacion-erp/internal/domain/entity"

// SupplierRepository puerto de persistencia de proveedores.
type SupplierRepository interface {
	Create(supplier *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(search string, limit, offset int) ([]*entity.Supplier, error)
	Update(supplier *entity.Supplier) error
	Delete(id string) error
}
