package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/finance"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// QuoteUseCase administra el ciclo de vida de cotizaciones:
// draft -> sent -> approved -> converted, con rechazo y expiración por fecha.
// Una cotización nunca toca stock; el stock se compromete al convertirla.
type QuoteUseCase struct {
	txRunner     BillingTxRunner
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	taxRate      decimal.Decimal
	log          *logger.Logger
}

// NewQuoteUseCase construye el caso de uso de cotizaciones.
func NewQuoteUseCase(
	txRunner BillingTxRunner,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *QuoteUseCase {
	return &QuoteUseCase{
		txRunner:     txRunner,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		taxRate:      taxRate,
		log:          log,
	}
}

// Create crea una cotización en draft con correlativo QUO-NNNNNN.
func (uc *QuoteUseCase) Create(ctx context.Context, userID string, req dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id es requerido", domain.ErrInvalidInput)
	}
	if _, err := uc.customerRepo.GetByID(req.CustomerID); err != nil {
		return nil, err
	}
	items, _, err := validateDocumentItems(uc.productRepo, req.Items)
	if err != nil {
		return nil, err
	}
	quoteDate, err := parseDate(req.QuoteDate, time.Now())
	if err != nil {
		return nil, err
	}
	validUntil, err := parseDate(req.ValidUntil, quoteDate.AddDate(0, 0, 30))
	if err != nil {
		return nil, err
	}
	if validUntil.Before(quoteDate) {
		return nil, fmt.Errorf("%w: valid_until anterior a la fecha de la cotización", domain.ErrInvalidInput)
	}

	totals := finance.ComputeTotals(toFinanceLines(items), uc.taxRate)

	var quote *entity.Quote
	var created []*entity.QuoteItem
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		seq, err := seqRepo.Next(repository.SequenceQuote)
		if err != nil {
			return err
		}
		now := time.Now()
		quote = &entity.Quote{
			ID:          newID(),
			CustomerID:  req.CustomerID,
			UserID:      userID,
			QuoteNumber: fmt.Sprintf("QUO-%06d", seq),
			QuoteDate:   quoteDate,
			ValidUntil:  validUntil,
			Subtotal:    totals.Subtotal,
			TaxAmount:   totals.TaxAmount,
			TaxRate:     uc.taxRate,
			Total:       totals.Total,
			Status:      entity.QuoteStatusDraft,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := quoteRepo.Create(quote); err != nil {
			return err
		}
		for _, reqItem := range items {
			item := &entity.QuoteItem{
				ID:        newID(),
				QuoteID:   quote.ID,
				ProductID: reqItem.ProductID,
				Quantity:  reqItem.Quantity,
				Price:     reqItem.Price,
			}
			if err := quoteRepo.CreateItem(item); err != nil {
				return err
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("quote_id", quote.ID).Str("number", quote.QuoteNumber).Msg("cotización creada")
	return toQuoteResponse(quote, created), nil
}

// Update modifica una cotización editable (draft o sent). Items en nil
// conserva las líneas; una lista nueva las reemplaza y recalcula totales.
func (uc *QuoteUseCase) Update(ctx context.Context, userID, id string, req dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var items []dto.DocumentItemRequest
	if req.Items != nil {
		var err error
		items, _, err = validateDocumentItems(uc.productRepo, req.Items)
		if err != nil {
			return nil, err
		}
	}

	var quote *entity.Quote
	var current []*entity.QuoteItem
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		quote, err = quoteRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if quote.Status != entity.QuoteStatusDraft && quote.Status != entity.QuoteStatusSent {
			return fmt.Errorf("%w: solo se editan cotizaciones en draft o sent (estado actual %s)", domain.ErrConflict, quote.Status)
		}

		if req.CustomerID != "" {
			quote.CustomerID = req.CustomerID
		}
		if req.QuoteDate != "" {
			date, err := parseDate(req.QuoteDate, quote.QuoteDate)
			if err != nil {
				return err
			}
			quote.QuoteDate = date
		}
		if req.ValidUntil != "" {
			date, err := parseDate(req.ValidUntil, quote.ValidUntil)
			if err != nil {
				return err
			}
			quote.ValidUntil = date
		}
		if req.Notes != nil {
			quote.Notes = *req.Notes
		}

		if items != nil {
			if err := quoteRepo.DeleteItems(quote.ID); err != nil {
				return err
			}
			current = current[:0]
			for _, reqItem := range items {
				item := &entity.QuoteItem{
					ID:        newID(),
					QuoteID:   quote.ID,
					ProductID: reqItem.ProductID,
					Quantity:  reqItem.Quantity,
					Price:     reqItem.Price,
				}
				if err := quoteRepo.CreateItem(item); err != nil {
					return err
				}
				current = append(current, item)
			}
			totals := finance.ComputeTotals(toFinanceLines(items), quote.TaxRate)
			quote.Subtotal = totals.Subtotal
			quote.TaxAmount = totals.TaxAmount
			quote.Total = totals.Total
		} else {
			current, err = quoteRepo.GetItems(quote.ID)
			if err != nil {
				return err
			}
		}

		quote.UpdatedAt = time.Now()
		return quoteRepo.Update(quote)
	})
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, current), nil
}

// Send marca la cotización como enviada (draft -> sent).
func (uc *QuoteUseCase) Send(ctx context.Context, userID, id string) (*dto.QuoteResponse, error) {
	return uc.transition(ctx, userID, id, entity.QuoteStatusSent, map[string]bool{
		entity.QuoteStatusDraft: true,
	})
}

// Approve marca la cotización como aprobada (sent -> approved).
func (uc *QuoteUseCase) Approve(ctx context.Context, userID, id string) (*dto.QuoteResponse, error) {
	return uc.transition(ctx, userID, id, entity.QuoteStatusApproved, map[string]bool{
		entity.QuoteStatusSent: true,
	})
}

// Reject marca la cotización como rechazada (sent/approved -> rejected).
func (uc *QuoteUseCase) Reject(ctx context.Context, userID, id string) (*dto.QuoteResponse, error) {
	return uc.transition(ctx, userID, id, entity.QuoteStatusRejected, map[string]bool{
		entity.QuoteStatusSent:     true,
		entity.QuoteStatusApproved: true,
	})
}

// transition aplica una transición de estado simple. Si la cotización está
// vencida se persiste expired y la operación falla con ErrExpired.
func (uc *QuoteUseCase) transition(ctx context.Context, userID, id, to string, allowedFrom map[string]bool) (*dto.QuoteResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	var quote *entity.Quote
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		quote, err = quoteRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if quote.IsExpired(time.Now()) {
			quote.Status = entity.QuoteStatusExpired
			quote.UpdatedAt = time.Now()
			if err := quoteRepo.Update(quote); err != nil {
				return err
			}
			return fmt.Errorf("%w: la cotización %s venció el %s",
				domain.ErrExpired, quote.QuoteNumber, formatDate(quote.ValidUntil))
		}
		if !allowedFrom[quote.Status] {
			return &domain.TransitionError{Entity: "quote", From: quote.Status, To: to}
		}
		quote.Status = to
		quote.UpdatedAt = time.Now()
		return quoteRepo.Update(quote)
	})
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, nil), nil
}

// Convert convierte una cotización aprobada en factura, a los precios
// cotizados y con su misma tasa de impuesto. En una sola transacción: crea
// la factura, descuenta stock y marca la cotización como converted. Si falta
// stock nada cambia y la cotización sigue aprobada.
func (uc *QuoteUseCase) Convert(ctx context.Context, userID, id string) (*dto.InvoiceResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var inv *entity.Invoice
	var invItems []*entity.InvoiceItem
	err := uc.txRunner.RunBilling(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		quote, err := quoteRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if quote.IsExpired(time.Now()) {
			quote.Status = entity.QuoteStatusExpired
			quote.UpdatedAt = time.Now()
			if err := quoteRepo.Update(quote); err != nil {
				return err
			}
			return fmt.Errorf("%w: la cotización %s venció el %s",
				domain.ErrExpired, quote.QuoteNumber, formatDate(quote.ValidUntil))
		}
		if !quote.CanBeConverted() {
			return &domain.TransitionError{Entity: "quote", From: quote.Status, To: entity.QuoteStatusConverted}
		}

		quoteItems, err := quoteRepo.GetItems(quote.ID)
		if err != nil {
			return err
		}
		items := make([]dto.DocumentItemRequest, 0, len(quoteItems))
		products := make(map[string]*entity.Product, len(quoteItems))
		for _, qi := range quoteItems {
			product, err := productRepo.GetByID(qi.ProductID)
			if err != nil {
				return err
			}
			products[product.ID] = product
			items = append(items, dto.DocumentItemRequest{
				ProductID: qi.ProductID,
				Quantity:  qi.Quantity,
				Price:     qi.Price,
			})
		}

		inv, invItems, err = createInvoiceTx(movRepo, productRepo, invoiceRepo, invoiceDraft{
			CustomerID: quote.CustomerID,
			UserID:     userID,
			Date:       time.Now(),
			TaxRate:    quote.TaxRate,
			Items:      items,
			Products:   products,
		})
		if err != nil {
			return err
		}

		quote.Status = entity.QuoteStatusConverted
		quote.ConvertedInvoiceID = inv.ID
		quote.UpdatedAt = time.Now()
		return quoteRepo.Update(quote)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("quote_id", id).Str("invoice_id", inv.ID).Msg("cotización convertida a factura")

	resp := &dto.InvoiceResponse{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		UserID:      inv.UserID,
		InvoiceDate: formatDate(inv.InvoiceDate),
		Subtotal:    inv.Subtotal,
		TaxAmount:   inv.TaxAmount,
		TaxRate:     inv.TaxRate,
		Total:       inv.Total,
		BalanceDue:  inv.BalanceDue,
		Status:      inv.Status,
		TotalPaid:   decimal.Zero,
	}
	for _, item := range invItems {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp, nil
}

// MarkExpired expira en bloque toda cotización vencida aún en draft/sent.
// Pensado para ejecutarse periódicamente o antes de listar.
func (uc *QuoteUseCase) MarkExpired(ctx context.Context) (int64, error) {
	count, err := uc.quoteRepo.MarkExpired(time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		uc.log.Info().Int64("count", count).Msg("cotizaciones expiradas")
	}
	return count, nil
}

// Get obtiene una cotización con sus líneas.
func (uc *QuoteUseCase) Get(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	quote, err := uc.quoteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	items, err := uc.quoteRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, items), nil
}

// List lista cotizaciones con filtros.
func (uc *QuoteUseCase) List(ctx context.Context, filter repository.QuoteFilter) ([]*dto.QuoteResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	quotes, err := uc.quoteRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q, nil))
	}
	return out, nil
}

// Delete elimina una cotización no convertida junto con sus líneas.
func (uc *QuoteUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	return uc.txRunner.RunBilling(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		_ repository.InvoiceRepository,
		_ repository.PaymentRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		quote, err := quoteRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if quote.Status == entity.QuoteStatusConverted {
			return fmt.Errorf("%w: una cotización convertida no se elimina", domain.ErrConflict)
		}
		if err := quoteRepo.DeleteItems(quote.ID); err != nil {
			return err
		}
		return quoteRepo.Delete(quote.ID)
	})
}

// Stats agregados de cotizaciones del rango [from, to].
func (uc *QuoteUseCase) Stats(ctx context.Context, from, to time.Time) (*dto.QuoteStatsResponse, error) {
	stats, err := uc.quoteRepo.Stats(from, to)
	if err != nil {
		return nil, err
	}
	resp := &dto.QuoteStatsResponse{
		TotalQuotes:     stats.TotalQuotes,
		TotalAmount:     stats.TotalAmount,
		DraftQuotes:     stats.DraftQuotes,
		SentQuotes:      stats.SentQuotes,
		ApprovedQuotes:  stats.ApprovedQuotes,
		ConvertedQuotes: stats.ConvertedQuotes,
		ExpiredQuotes:   stats.ExpiredQuotes,
		ConversionRate:  decimal.Zero,
	}
	if stats.TotalQuotes > 0 {
		resp.ConversionRate = decimal.NewFromInt(stats.ConvertedQuotes).
			Div(decimal.NewFromInt(stats.TotalQuotes)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return resp, nil
}

func toQuoteResponse(q *entity.Quote, items []*entity.QuoteItem) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		ID:                 q.ID,
		CustomerID:         q.CustomerID,
		UserID:             q.UserID,
		QuoteNumber:        q.QuoteNumber,
		QuoteDate:          formatDate(q.QuoteDate),
		ValidUntil:         formatDate(q.ValidUntil),
		Subtotal:           q.Subtotal,
		TaxAmount:          q.TaxAmount,
		TaxRate:            q.TaxRate,
		Total:              q.Total,
		Status:             q.Status,
		Notes:              q.Notes,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.QuoteItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp
}
