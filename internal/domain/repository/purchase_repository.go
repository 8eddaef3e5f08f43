package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// PurchaseFilter filtros de listado de compras.
type PurchaseFilter struct {
	Status     string
	SupplierID string
	Search     string // por número de compra
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// PurchaseStats agregados de compras para reporting.
type PurchaseStats struct {
	TotalPurchases    int64
	TotalAmount       decimal.Decimal
	PendingPurchases  int64
	ReceivedPurchases int64
}

// PurchaseRepository puerto de persistencia de compras y sus líneas.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	CreateItem(item *entity.PurchaseItem) error
	GetByID(id string) (*entity.Purchase, error)
	GetForUpdate(id string) (*entity.Purchase, error)
	GetItems(purchaseID string) ([]*entity.PurchaseItem, error)
	Update(purchase *entity.Purchase) error
	List(filter PurchaseFilter) ([]*entity.Purchase, error)
	DeleteItems(purchaseID string) error
	Delete(id string) error
	Stats(from, to time.Time) (*PurchaseStats, error)
}
