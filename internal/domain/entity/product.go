package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto.
const (
	ProductTypeProduct = "product" // físico: acumula stock y movimientos
	ProductTypeService = "service" // servicio: nunca acumula stock
)

// LowStockThreshold stock a partir del cual un producto físico genera
// alerta de stock bajo (stock <= umbral).
const LowStockThreshold = 10

// Product representa un producto o servicio del catálogo.
// Stock solo se modifica a través del libro de inventario (movimientos);
// una corrección manual también es un movimiento de tipo "adjustment".
type Product struct {
	ID          string
	Name        string
	Type        string // product | service
	SKU         string
	Description string
	Price       decimal.Decimal // precio de venta unitario, CON IVA incluido
	CostPrice   decimal.Decimal // costo unitario (cero = sin costo registrado), CON IVA incluido
	Stock       int64           // invariante: >= 0 para type=product
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsProduct indica si es un producto físico (acumula stock).
func (p *Product) IsProduct() bool { return p.Type == ProductTypeProduct }

// IsService indica si es un servicio (no acumula stock ni movimientos).
func (p *Product) IsService() bool { return p.Type == ProductTypeService }
