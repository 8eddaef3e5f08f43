package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo generador de correlativos sobre la tabla sequences.
// Next se apoya en el UPDATE del upsert para serializar lectores
// concurrentes del mismo nombre dentro de sus transacciones.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el generador. Pasar la tx del documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next devuelve el siguiente valor de la secuencia, creándola en 1 si no existe.
func (r *SequenceRepo) Next(name string) (int64, error) {
	var value int64
	err := r.q.QueryRow(context.Background(),
		`INSERT INTO sequences (name, value) VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`, name,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}
