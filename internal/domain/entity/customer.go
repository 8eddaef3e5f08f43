package entity

import "time"

// Customer cliente al que se facturan ventas y cotizaciones.
type Customer struct {
	ID        string
	Name      string
	TaxID     string // NIT
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
