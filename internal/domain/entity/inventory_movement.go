package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypePurchase   = "purchase"   // entrada por recepción de compra
	MovementTypeSale       = "sale"       // salida por venta (se guarda con cantidad negativa)
	MovementTypeAdjustment = "adjustment" // ajuste manual (delta con signo)
	MovementTypeReturn     = "return"     // devolución/restauración de stock
)

// Tipos de referencia de un movimiento: a qué documento apunta.
const (
	ReferenceInvoice  = "invoice"
	ReferencePurchase = "purchase"
	ReferenceManual   = "manual"
)

// MovementRef referencia tipada del movimiento a su documento origen.
// Para ReferenceManual el ID va vacío.
type MovementRef struct {
	Type string
	ID   string
}

// InvoiceRef referencia a una factura.
func InvoiceRef(invoiceID string) MovementRef {
	return MovementRef{Type: ReferenceInvoice, ID: invoiceID}
}

// PurchaseRef referencia a una compra.
func PurchaseRef(purchaseID string) MovementRef {
	return MovementRef{Type: ReferencePurchase, ID: purchaseID}
}

// ManualRef movimiento sin documento asociado (ajuste manual).
func ManualRef() MovementRef {
	return MovementRef{Type: ReferenceManual}
}

// InventoryMovement registro inmutable de un cambio de stock con snapshot antes/después.
// Append-only: nunca se actualiza ni se borra; una corrección es un nuevo movimiento.
// Invariante: StockAfter == StockBefore + Quantity.
type InventoryMovement struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      int64 // con signo: positivo entrada, negativo salida
	StockBefore   int64
	StockAfter    int64
	ReferenceType string
	ReferenceID   string // vacío para movimientos manuales
	Notes         string
	UserID        string
	CreatedAt     time.Time
}
