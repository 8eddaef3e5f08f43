package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthenticated    = errors.New("usuario no autenticado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverpayment        = errors.New("el pago excede el saldo de la factura")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrExpired            = errors.New("documento vencido")
)

// StockError detalla un fallo de stock: qué producto y cuánto hay disponible.
// errors.Is(err, ErrInsufficientStock) == true.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int64
	Requested   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %d, solicitado %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError detalla una transición de estado rechazada.
// errors.Is(err, ErrInvalidTransition) == true.
type TransitionError struct {
	Entity string // "invoice", "quote", "purchase"
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición no permitida en %s: %s -> %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// OverpaymentError detalla un pago rechazado por exceder el total de la factura.
// errors.Is(err, ErrOverpayment) == true.
type OverpaymentError struct {
	InvoiceID string
	Remaining decimal.Decimal // saldo pendiente contra el que se validó
	Amount    decimal.Decimal // monto del pago rechazado
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("el pago de %s excede el saldo pendiente %s de la factura %s",
		e.Amount.StringFixed(2), e.Remaining.StringFixed(2), e.InvoiceID)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }
