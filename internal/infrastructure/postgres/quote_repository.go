package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

const quoteColumns = `id, customer_id, user_id, quote_number, quote_date, valid_until, subtotal, tax_amount, tax_rate, total, status, notes, converted_invoice_id, created_at, updated_at`

// QuoteRepo implementación de QuoteRepository sobre PostgreSQL (usable con pool o tx).
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador de cotizaciones. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var q entity.Quote
	var convertedID *string
	err := row.Scan(&q.ID, &q.CustomerID, &q.UserID, &q.QuoteNumber, &q.QuoteDate, &q.ValidUntil,
		&q.Subtotal, &q.TaxAmount, &q.TaxRate, &q.Total, &q.Status, &q.Notes,
		&convertedID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	if convertedID != nil {
		q.ConvertedInvoiceID = *convertedID
	}
	return &q, nil
}

// Create persiste la cabecera de una cotización.
func (r *QuoteRepo) Create(q *entity.Quote) error {
	query := `
		INSERT INTO quotes (id, customer_id, user_id, quote_number, quote_date, valid_until, subtotal, tax_amount, tax_rate, total, status, notes, converted_invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		q.ID, q.CustomerID, q.UserID, q.QuoteNumber, q.QuoteDate, q.ValidUntil,
		q.Subtotal, q.TaxAmount, q.TaxRate, q.Total, q.Status, q.Notes,
		q.ConvertedInvoiceID, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de cotización.
func (r *QuoteRepo) CreateItem(item *entity.QuoteItem) error {
	query := `
		INSERT INTO quote_items (id, quote_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.QuoteID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("insert quote item: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(id string) (*entity.Quote, error) {
	return scanQuote(r.q.QueryRow(context.Background(),
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
}

// GetForUpdate obtiene una cotización bloqueando su fila hasta el commit.
func (r *QuoteRepo) GetForUpdate(id string) (*entity.Quote, error) {
	return scanQuote(r.q.QueryRow(context.Background(),
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1 FOR UPDATE`, id))
}

// GetItems obtiene las líneas de una cotización.
func (r *QuoteRepo) GetItems(quoteID string) ([]*entity.QuoteItem, error) {
	query := `SELECT id, quote_id, product_id, quantity, price FROM quote_items WHERE quote_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()
	var items []*entity.QuoteItem
	for rows.Next() {
		var item entity.QuoteItem
		if err := rows.Scan(&item.ID, &item.QuoteID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update actualiza cabecera, totales y estado de una cotización.
func (r *QuoteRepo) Update(q *entity.Quote) error {
	query := `
		UPDATE quotes SET customer_id = $2, quote_date = $3, valid_until = $4, subtotal = $5,
			tax_amount = $6, tax_rate = $7, total = $8, status = $9, notes = $10,
			converted_invoice_id = NULLIF($11, ''), updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		q.ID, q.CustomerID, q.QuoteDate, q.ValidUntil, q.Subtotal, q.TaxAmount,
		q.TaxRate, q.Total, q.Status, q.Notes, q.ConvertedInvoiceID, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista cotizaciones con filtros, la más reciente primero.
func (r *QuoteRepo) List(filter repository.QuoteFilter) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE 1=1`
	args := []any{}
	n := 0
	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, filter.Status)
	}
	if filter.CustomerID != "" {
		n++
		query += fmt.Sprintf(" AND customer_id = $%d", n)
		args = append(args, filter.CustomerID)
	}
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND quote_number ILIKE $%d", n)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.From != nil {
		n++
		query += fmt.Sprintf(" AND quote_date >= $%d", n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		query += fmt.Sprintf(" AND quote_date <= $%d", n)
		args = append(args, *filter.To)
	}
	if !filter.IncludeExpired {
		query += " AND status <> 'expired'"
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quote
	for rows.Next() {
		var q entity.Quote
		var convertedID *string
		if err := rows.Scan(&q.ID, &q.CustomerID, &q.UserID, &q.QuoteNumber, &q.QuoteDate, &q.ValidUntil,
			&q.Subtotal, &q.TaxAmount, &q.TaxRate, &q.Total, &q.Status, &q.Notes,
			&convertedID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if convertedID != nil {
			q.ConvertedInvoiceID = *convertedID
		}
		list = append(list, &q)
	}
	return list, rows.Err()
}

// DeleteItems elimina las líneas de una cotización.
func (r *QuoteRepo) DeleteItems(quoteID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM quote_items WHERE quote_id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("delete quote items: %w", err)
	}
	return nil
}

// Delete elimina una cotización por ID.
func (r *QuoteRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

// MarkExpired expira en bloque cotizaciones vencidas aún en draft/sent.
func (r *QuoteRepo) MarkExpired(before time.Time) (int64, error) {
	cutoff := time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE quotes SET status = 'expired', updated_at = now()
		 WHERE valid_until < $1 AND status IN ('draft', 'sent')`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark quotes expired: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// Stats agregados de cotizaciones del rango [from, to].
func (r *QuoteRepo) Stats(from, to time.Time) (*repository.QuoteStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'converted'),
			COUNT(*) FILTER (WHERE status = 'expired')
		FROM quotes WHERE quote_date >= $1 AND quote_date <= $2`
	var s repository.QuoteStats
	err := r.q.QueryRow(context.Background(), query, from, to).Scan(
		&s.TotalQuotes, &s.TotalAmount, &s.DraftQuotes, &s.SentQuotes,
		&s.ApprovedQuotes, &s.ConvertedQuotes, &s.ExpiredQuotes,
	)
	if err != nil {
		return nil, fmt.Errorf("quote stats: %w", err)
	}
	return &s, nil
}
