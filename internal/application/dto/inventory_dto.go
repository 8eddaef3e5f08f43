package dto

// AdjustmentRequest ajuste manual de stock. Quantity lleva signo:
// positivo agrega, negativo descuenta.
type AdjustmentRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Notes     string `json:"notes"`
}

// MovementResponse movimiento del historial de inventario.
type MovementResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Type          string `json:"type"`
	Quantity      int64  `json:"quantity"`
	StockBefore   int64  `json:"stock_before"`
	StockAfter    int64  `json:"stock_after"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
	UserID        string `json:"user_id"`
	CreatedAt     string `json:"created_at"`
}

// StockAlert producto con stock en o bajo el umbral.
type StockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Stock     int64  `json:"stock"`
}

// InventorySummaryResponse resumen del inventario físico.
type InventorySummaryResponse struct {
	TotalProducts int64        `json:"total_products"`
	TotalUnits    int64        `json:"total_units"`
	LowStock      []StockAlert `json:"low_stock"`
}
