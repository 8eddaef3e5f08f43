package dto

import "github.com/shopspring/decimal"

// CreateProductRequest alta de producto o servicio.
// InitialStock solo aplica a type=product y genera un movimiento de ajuste.
type CreateProductRequest struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"` // product | service
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	InitialStock int64           `json:"initial_stock"`
}

// UpdateProductRequest actualización de catálogo. No toca stock ni costo:
// esos cambian solo vía movimientos de inventario y recepción de compras.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int64           `json:"stock"`
}

// CustomerRequest alta/actualización de cliente.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SupplierRequest alta/actualización de proveedor.
type SupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	TaxID         string `json:"tax_id"`
}

// SupplierResponse proveedor en respuestas.
type SupplierResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TaxID         string `json:"tax_id,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}
