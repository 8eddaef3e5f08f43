package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// User usuario del sistema. Toda operación mutadora del núcleo exige
// un UserID autenticado para atribución (movimientos, documentos).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       string // active | inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
