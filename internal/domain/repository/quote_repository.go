package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

// QuoteFilter filtros de listado de cotizaciones.
type QuoteFilter struct {
	Status         string
	CustomerID     string
	Search         string // por número de cotización
	From           *time.Time
	To             *time.Time
	IncludeExpired bool
	Limit          int
	Offset         int
}

// QuoteStats agregados de cotizaciones para reporting.
type QuoteStats struct {
	TotalQuotes     int64
	TotalAmount     decimal.Decimal
	DraftQuotes     int64
	SentQuotes      int64
	ApprovedQuotes  int64
	ConvertedQuotes int64
	ExpiredQuotes   int64
}

// QuoteRepository puerto de persistencia de cotizaciones y sus líneas.
type QuoteRepository interface {
	Create(quote *entity.Quote) error
	CreateItem(item *entity.QuoteItem) error
	GetByID(id string) (*entity.Quote, error)
	GetForUpdate(id string) (*entity.Quote, error)
	GetItems(quoteID string) ([]*entity.QuoteItem, error)
	Update(quote *entity.Quote) error
	List(filter QuoteFilter) ([]*entity.Quote, error)
	DeleteItems(quoteID string) error
	Delete(id string) error
	// MarkExpired transiciona en bloque a expired toda cotización con
	// valid_until < before y estado draft|sent. Devuelve cuántas afectó.
	MarkExpired(before time.Time) (int64, error)
	Stats(from, to time.Time) (*QuoteStats, error)
}
