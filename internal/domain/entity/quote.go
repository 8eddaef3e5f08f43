package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización: draft -> sent -> approved -> converted,
// con rechazo desde sent/approved y expiración por fecha desde draft/sent.
const (
	QuoteStatusDraft     = "draft"
	QuoteStatusSent      = "sent"
	QuoteStatusApproved  = "approved"
	QuoteStatusRejected  = "rejected"
	QuoteStatusConverted = "converted"
	QuoteStatusExpired   = "expired"
)

// Quote cotización. No afecta stock: el stock se compromete solo al convertirla en factura.
type Quote struct {
	ID                 string
	CustomerID         string
	UserID             string
	QuoteNumber        string // correlativo QUO-000001, único
	QuoteDate          time.Time
	ValidUntil         time.Time
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	TaxRate            decimal.Decimal
	Total              decimal.Decimal
	Status             string
	Notes              string
	ConvertedInvoiceID string // vacío si no ha sido convertida
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsExpired indica si la cotización está vencida y aún en un estado expirable.
func (q *Quote) IsExpired(today time.Time) bool {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusSent {
		return false
	}
	return q.ValidUntil.Before(truncateDate(today))
}

// CanBeConverted indica si puede convertirse a factura: aprobada y sin conversión previa.
func (q *Quote) CanBeConverted() bool {
	return q.Status == QuoteStatusApproved && q.ConvertedInvoiceID == ""
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// QuoteItem línea de una cotización. Price es el precio unitario CON IVA.
type QuoteItem struct {
	ID        string
	QuoteID   string
	ProductID string
	Quantity  int64
	Price     decimal.Decimal
}
