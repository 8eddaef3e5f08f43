package dto

import (
	"github.com/shopspring/decimal"
)

// DocumentItemRequest línea de un documento (factura/cotización). Price con IVA incluido.
type DocumentItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreateInvoiceRequest petición para crear una factura.
type CreateInvoiceRequest struct {
	CustomerID  string                `json:"customer_id"`
	InvoiceDate string                `json:"invoice_date"` // YYYY-MM-DD
	Items       []DocumentItemRequest `json:"items"`
}

// UpdateInvoiceRequest reemplazo completo de una factura pendiente.
type UpdateInvoiceRequest struct {
	CustomerID  string                `json:"customer_id"`
	InvoiceDate string                `json:"invoice_date"`
	Items       []DocumentItemRequest `json:"items"`
}

// UpdateInvoiceStatusRequest cambio explícito de estado.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"` // paid | pending | canceled
}

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// InvoiceResponse factura con desglose monetario.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	CustomerID  string                `json:"customer_id"`
	UserID      string                `json:"user_id"`
	InvoiceDate string                `json:"invoice_date"`
	Subtotal    decimal.Decimal       `json:"subtotal"`
	TaxAmount   decimal.Decimal       `json:"tax_amount"`
	TaxRate     decimal.Decimal       `json:"tax_rate"`
	Total       decimal.Decimal       `json:"total"`
	BalanceDue  decimal.Decimal       `json:"balance_due"`
	Status      string                `json:"status"`
	Items       []InvoiceItemResponse `json:"items,omitempty"`
	TotalPaid   decimal.Decimal       `json:"total_paid"`
}

// CreatePaymentRequest abono a una factura.
type CreatePaymentRequest struct {
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"payment_method"` // cash | card | transfer | check
	PaymentDate string          `json:"payment_date"`
	Notes       string          `json:"notes"`
}

// UpdatePaymentRequest actualización de un pago existente.
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Method      string           `json:"payment_method"`
	PaymentDate string           `json:"payment_date"`
	Notes       *string          `json:"notes"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"payment_method"`
	PaymentDate string          `json:"payment_date"`
	Notes       string          `json:"notes,omitempty"`
}

// CreateQuoteRequest petición para crear una cotización.
type CreateQuoteRequest struct {
	CustomerID string                `json:"customer_id"`
	QuoteDate  string                `json:"quote_date"`
	ValidUntil string                `json:"valid_until"`
	Notes      string                `json:"notes"`
	Items      []DocumentItemRequest `json:"items"`
}

// UpdateQuoteRequest actualización de una cotización en draft/sent.
// Items en nil conserva las líneas actuales.
type UpdateQuoteRequest struct {
	CustomerID string                `json:"customer_id"`
	QuoteDate  string                `json:"quote_date"`
	ValidUntil string                `json:"valid_until"`
	Notes      *string               `json:"notes"`
	Items      []DocumentItemRequest `json:"items"`
}

// QuoteItemResponse línea de cotización en respuestas.
type QuoteItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// QuoteResponse cotización con totales.
type QuoteResponse struct {
	ID                 string              `json:"id"`
	CustomerID         string              `json:"customer_id"`
	UserID             string              `json:"user_id"`
	QuoteNumber        string              `json:"quote_number"`
	QuoteDate          string              `json:"quote_date"`
	ValidUntil         string              `json:"valid_until"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	TaxAmount          decimal.Decimal     `json:"tax_amount"`
	TaxRate            decimal.Decimal     `json:"tax_rate"`
	Total              decimal.Decimal     `json:"total"`
	Status             string              `json:"status"`
	Notes              string              `json:"notes,omitempty"`
	ConvertedInvoiceID string              `json:"converted_invoice_id,omitempty"`
	Items              []QuoteItemResponse `json:"items,omitempty"`
}

// QuoteStatsResponse agregados de cotizaciones.
type QuoteStatsResponse struct {
	TotalQuotes     int64           `json:"total_quotes"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DraftQuotes     int64           `json:"draft_quotes"`
	SentQuotes      int64           `json:"sent_quotes"`
	ApprovedQuotes  int64           `json:"approved_quotes"`
	ConvertedQuotes int64           `json:"converted_quotes"`
	ExpiredQuotes   int64           `json:"expired_quotes"`
	ConversionRate  decimal.Decimal `json:"conversion_rate"` // porcentaje, 2 decimales
}

// PurchaseItemRequest línea de compra. CostPrice con IVA incluido.
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// CreatePurchaseRequest petición para crear una compra.
type CreatePurchaseRequest struct {
	SupplierID   string                `json:"supplier_id"`
	PurchaseDate string                `json:"purchase_date"`
	Notes        string                `json:"notes"`
	Items        []PurchaseItemRequest `json:"items"`
}

// UpdatePurchaseRequest actualización de una compra pendiente.
// Items en nil conserva las líneas actuales.
type UpdatePurchaseRequest struct {
	SupplierID   string                `json:"supplier_id"`
	PurchaseDate string                `json:"purchase_date"`
	Notes        *string               `json:"notes"`
	Items        []PurchaseItemRequest `json:"items"`
}

// PurchaseItemResponse línea de compra en respuestas.
type PurchaseItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// PurchaseResponse compra con totales.
type PurchaseResponse struct {
	ID             string                 `json:"id"`
	SupplierID     string                 `json:"supplier_id"`
	UserID         string                 `json:"user_id"`
	PurchaseNumber string                 `json:"purchase_number"`
	PurchaseDate   string                 `json:"purchase_date"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	TaxAmount      decimal.Decimal        `json:"tax_amount"`
	TaxRate        decimal.Decimal        `json:"tax_rate"`
	Total          decimal.Decimal        `json:"total"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []PurchaseItemResponse `json:"items,omitempty"`
}

// PurchaseStatsResponse agregados de compras.
type PurchaseStatsResponse struct {
	TotalPurchases    int64           `json:"total_purchases"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PendingPurchases  int64           `json:"pending_purchases"`
	ReceivedPurchases int64           `json:"received_purchases"`
}
