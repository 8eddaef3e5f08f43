package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE de PostgreSQL que el dominio distingue.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation indica si el error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgUniqueViolation
}

// isForeignKeyViolation indica si el error es una violación de clave foránea,
// típicamente al borrar un registro que otros documentos aún referencian.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgForeignKeyViolation
}
