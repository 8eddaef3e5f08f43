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

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, supplier_id, user_id, purchase_number, purchase_date, subtotal, tax_amount, tax_rate, total, status, notes, created_at, updated_at`

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.UserID, &p.PurchaseNumber, &p.PurchaseDate,
		&p.Subtotal, &p.TaxAmount, &p.TaxRate, &p.Total, &p.Status, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return &p, nil
}

// Create persiste la cabecera de una compra.
func (r *PurchaseRepo) Create(p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, supplier_id, user_id, purchase_number, purchase_date, subtotal, tax_amount, tax_rate, total, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.SupplierID, p.UserID, p.PurchaseNumber, p.PurchaseDate,
		p.Subtotal, p.TaxAmount, p.TaxRate, p.Total, p.Status, p.Notes,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de compra.
func (r *PurchaseRepo) CreateItem(item *entity.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, purchase_id, product_id, quantity, cost_price, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.PurchaseID, item.ProductID, item.Quantity, item.CostPrice, item.TotalCost)
	if err != nil {
		return fmt.Errorf("insert purchase item: %w", err)
	}
	return nil
}

// GetByID obtiene una compra por ID.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	return scanPurchase(r.q.QueryRow(context.Background(),
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
}

// GetForUpdate obtiene una compra bloqueando su fila hasta el commit.
func (r *PurchaseRepo) GetForUpdate(id string) (*entity.Purchase, error) {
	return scanPurchase(r.q.QueryRow(context.Background(),
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id))
}

// GetItems obtiene las líneas de una compra.
func (r *PurchaseRepo) GetItems(purchaseID string) ([]*entity.PurchaseItem, error) {
	query := `SELECT id, purchase_id, product_id, quantity, cost_price, total_cost FROM purchase_items WHERE purchase_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	var items []*entity.PurchaseItem
	for rows.Next() {
		var item entity.PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Quantity, &item.CostPrice, &item.TotalCost); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update actualiza cabecera, totales y estado de una compra.
func (r *PurchaseRepo) Update(p *entity.Purchase) error {
	query := `
		UPDATE purchases SET supplier_id = $2, purchase_date = $3, subtotal = $4, tax_amount = $5,
			tax_rate = $6, total = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		p.ID, p.SupplierID, p.PurchaseDate, p.Subtotal, p.TaxAmount,
		p.TaxRate, p.Total, p.Status, p.Notes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista compras con filtros, la más reciente primero.
func (r *PurchaseRepo) List(filter repository.PurchaseFilter) ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
	args := []any{}
	n := 0
	if filter.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, filter.Status)
	}
	if filter.SupplierID != "" {
		n++
		query += fmt.Sprintf(" AND supplier_id = $%d", n)
		args = append(args, filter.SupplierID)
	}
	if filter.Search != "" {
		n++
		query += fmt.Sprintf(" AND purchase_number ILIKE $%d", n)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.From != nil {
		n++
		query += fmt.Sprintf(" AND purchase_date >= $%d", n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		query += fmt.Sprintf(" AND purchase_date <= $%d", n)
		args = append(args, *filter.To)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.UserID, &p.PurchaseNumber, &p.PurchaseDate,
			&p.Subtotal, &p.TaxAmount, &p.TaxRate, &p.Total, &p.Status, &p.Notes,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// DeleteItems elimina las líneas de una compra.
func (r *PurchaseRepo) DeleteItems(purchaseID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("delete purchase items: %w", err)
	}
	return nil
}

// Delete elimina una compra por ID.
func (r *PurchaseRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return nil
}

// Stats agregados de compras del rango [from, to].
func (r *PurchaseRepo) Stats(from, to time.Time) (*repository.PurchaseStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'received')
		FROM purchases WHERE purchase_date >= $1 AND purchase_date <= $2`
	var s repository.PurchaseStats
	err := r.q.QueryRow(context.Background(), query, from, to).Scan(
		&s.TotalPurchases, &s.TotalAmount, &s.PendingPurchases, &s.ReceivedPurchases,
	)
	if err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	return &s, nil
}
