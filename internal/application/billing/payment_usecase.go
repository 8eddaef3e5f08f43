package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// PaymentUseCase registra pagos contra facturas y mantiene el estado derivado.
// Regla de reconciliación, aplicada tras cada alta/edición/borrado de pago:
//
//	suma == 0      -> pending
//	0 < suma < tot -> partial
//	suma == total  -> paid
//
// La suma nunca puede superar el total de la factura.
type PaymentUseCase struct {
	txRunner    BillingTxRunner
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	log         *logger.Logger
}

// NewPaymentUseCase construye el caso de uso de pagos.
func NewPaymentUseCase(txRunner BillingTxRunner, paymentRepo repository.PaymentRepository, invoiceRepo repository.InvoiceRepository, log *logger.Logger) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, paymentRepo: paymentRepo, invoiceRepo: invoiceRepo, log: log}
}

// Create aplica un pago a una factura y recalcula su estado.
// La factura se bloquea (FOR UPDATE) para serializar pagos concurrentes:
// dos pagos simultáneos nunca pueden sumar más que el total.
func (uc *PaymentUseCase) Create(ctx context.Context, userID string, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.InvoiceID == "" {
		return nil, fmt.Errorf("%w: invoice_id es requerido", domain.ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser positivo", domain.ErrInvalidInput)
	}
	if !entity.ValidPaymentMethod(req.Method) {
		return nil, fmt.Errorf("%w: método de pago %q desconocido", domain.ErrInvalidInput, req.Method)
	}
	paymentDate, err := parseDate(req.PaymentDate, time.Now())
	if err != nil {
		return nil, err
	}
	amount := req.Amount.Round(2)

	var payment *entity.Payment
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status == entity.InvoiceStatusCanceled {
			return fmt.Errorf("%w: la factura está anulada", domain.ErrConflict)
		}

		paidSoFar, err := paymentRepo.SumByInvoice(inv.ID, "")
		if err != nil {
			return err
		}
		remaining := inv.Total.Sub(paidSoFar)
		if amount.GreaterThan(remaining) {
			return &domain.OverpaymentError{InvoiceID: inv.ID, Remaining: remaining, Amount: amount}
		}

		payment = &entity.Payment{
			ID:          newID(),
			InvoiceID:   inv.ID,
			Amount:      amount,
			Method:      req.Method,
			PaymentDate: paymentDate,
			Notes:       req.Notes,
			CreatedAt:   time.Now(),
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}
		return reconcileInvoiceTx(invoiceRepo, inv, paidSoFar.Add(amount))
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("payment_id", payment.ID).
		Str("invoice_id", payment.InvoiceID).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("pago registrado")
	return toPaymentResponse(payment), nil
}

// Update modifica un pago y reconcilia la factura. El monto nuevo se valida
// contra la suma de los demás pagos de la misma factura.
func (uc *PaymentUseCase) Update(ctx context.Context, userID, id string, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.Method != "" && !entity.ValidPaymentMethod(req.Method) {
		return nil, fmt.Errorf("%w: método de pago %q desconocido", domain.ErrInvalidInput, req.Method)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser positivo", domain.ErrInvalidInput)
	}

	var payment *entity.Payment
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		payment, err = paymentRepo.GetByID(id)
		if err != nil {
			return err
		}
		inv, err := invoiceRepo.GetForUpdate(payment.InvoiceID)
		if err != nil {
			return err
		}

		if req.Amount != nil {
			othersSum, err := paymentRepo.SumByInvoice(inv.ID, payment.ID)
			if err != nil {
				return err
			}
			amount := req.Amount.Round(2)
			remaining := inv.Total.Sub(othersSum)
			if amount.GreaterThan(remaining) {
				return &domain.OverpaymentError{InvoiceID: inv.ID, Remaining: remaining, Amount: amount}
			}
			payment.Amount = amount
		}
		if req.Method != "" {
			payment.Method = req.Method
		}
		if req.PaymentDate != "" {
			date, err := parseDate(req.PaymentDate, payment.PaymentDate)
			if err != nil {
				return err
			}
			payment.PaymentDate = date
		}
		if req.Notes != nil {
			payment.Notes = *req.Notes
		}
		if err := paymentRepo.Update(payment); err != nil {
			return err
		}

		newSum, err := paymentRepo.SumByInvoice(inv.ID, "")
		if err != nil {
			return err
		}
		return reconcileInvoiceTx(invoiceRepo, inv, newSum)
	})
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// Delete elimina un pago y reconcilia la factura: el estado puede retroceder
// de paid a partial o de partial a pending.
func (uc *PaymentUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	return uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		payment, err := paymentRepo.GetByID(id)
		if err != nil {
			return err
		}
		inv, err := invoiceRepo.GetForUpdate(payment.InvoiceID)
		if err != nil {
			return err
		}
		if err := paymentRepo.Delete(payment.ID); err != nil {
			return err
		}
		newSum, err := paymentRepo.SumByInvoice(inv.ID, "")
		if err != nil {
			return err
		}
		return reconcileInvoiceTx(invoiceRepo, inv, newSum)
	})
}

// Get obtiene un pago por ID.
func (uc *PaymentUseCase) Get(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	payment, err := uc.paymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// ListByInvoice lista los pagos de una factura.
func (uc *PaymentUseCase) ListByInvoice(ctx context.Context, invoiceID string) ([]*dto.PaymentResponse, error) {
	if _, err := uc.invoiceRepo.GetByID(invoiceID); err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// List lista pagos de todas las facturas.
func (uc *PaymentUseCase) List(ctx context.Context, limit, offset int) ([]*dto.PaymentResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	payments, err := uc.paymentRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// reconcileInvoiceTx recalcula estado y saldo de la factura a partir de la
// suma de pagos. No toca facturas anuladas.
func reconcileInvoiceTx(invoiceRepo repository.InvoiceRepository, inv *entity.Invoice, totalPaid decimal.Decimal) error {
	if inv.Status == entity.InvoiceStatusCanceled {
		return nil
	}
	inv.BalanceDue = inv.Total.Sub(totalPaid)
	switch {
	case totalPaid.IsZero():
		inv.Status = entity.InvoiceStatusPending
	case totalPaid.GreaterThanOrEqual(inv.Total):
		inv.Status = entity.InvoiceStatusPaid
	default:
		inv.Status = entity.InvoiceStatusPartial
	}
	return invoiceRepo.Update(inv)
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaymentDate: formatDate(p.PaymentDate),
		Notes:       p.Notes,
	}
}
