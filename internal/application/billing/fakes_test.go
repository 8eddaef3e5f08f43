package billing

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// Fakes en memoria para los casos de uso. El fake de TxRunner ejecuta fn
// directamente: la atomicidad real la cubren los tests de integración del
// runner de postgres; aquí se verifica la lógica de negocio.

type memStore struct {
	products  map[string]*entity.Product
	movements []*entity.InventoryMovement
	invoices  map[string]*entity.Invoice
	invItems  map[string][]*entity.InvoiceItem
	payments  map[string]*entity.Payment
	quotes    map[string]*entity.Quote
	quoItems  map[string][]*entity.QuoteItem
	purchases map[string]*entity.Purchase
	purItems  map[string][]*entity.PurchaseItem
	customers map[string]*entity.Customer
	suppliers map[string]*entity.Supplier
	sequences map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[string]*entity.Product{},
		invoices:  map[string]*entity.Invoice{},
		invItems:  map[string][]*entity.InvoiceItem{},
		payments:  map[string]*entity.Payment{},
		quotes:    map[string]*entity.Quote{},
		quoItems:  map[string][]*entity.QuoteItem{},
		purchases: map[string]*entity.Purchase{},
		purItems:  map[string][]*entity.PurchaseItem{},
		customers: map[string]*entity.Customer{},
		suppliers: map[string]*entity.Supplier{},
		sequences: map[string]int64{},
	}
}

func (s *memStore) addProduct(p *entity.Product)   { cp := *p; s.products[p.ID] = &cp }
func (s *memStore) addCustomer(c *entity.Customer) { cp := *c; s.customers[c.ID] = &cp }
func (s *memStore) addSupplier(p *entity.Supplier) { cp := *p; s.suppliers[p.ID] = &cp }

// --- productos ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error { r.s.addProduct(p); return nil }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.GetByID(id) }

func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) List(filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateStock(id string, stock int64) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r *memProductRepo) UpdateCostPrice(id string, cost decimal.Decimal) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CostPrice = cost
	return nil
}

func (r *memProductRepo) Delete(id string) error { delete(r.s.products, id); return nil }

// --- movimientos ---

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.InventoryMovement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMovementRepo) List(filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// --- facturas ---

type memInvoiceRepo struct{ s *memStore }

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	cp := *item
	r.s.invItems[item.InvoiceID] = append(r.s.invItems[item.InvoiceID], &cp)
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) GetForUpdate(id string) (*entity.Invoice, error) { return r.GetByID(id) }

func (r *memInvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	items := r.s.invItems[invoiceID]
	out := make([]*entity.InvoiceItem, 0, len(items))
	for _, item := range items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memInvoiceRepo) Update(inv *entity.Invoice) error {
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && inv.CustomerID != filter.CustomerID {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memInvoiceRepo) DeleteItems(invoiceID string) error {
	delete(r.s.invItems, invoiceID)
	return nil
}

func (r *memInvoiceRepo) Delete(id string) error { delete(r.s.invoices, id); return nil }

// --- pagos ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(p *entity.Payment) error {
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(id string) (*entity.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) Update(p *entity.Payment) error {
	if _, ok := r.s.payments[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) Delete(id string) error { delete(r.s.payments, id); return nil }

func (r *memPaymentRepo) DeleteByInvoice(invoiceID string) error {
	for id, p := range r.s.payments {
		if p.InvoiceID == invoiceID {
			delete(r.s.payments, id)
		}
	}
	return nil
}

func (r *memPaymentRepo) ListByInvoice(invoiceID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.s.payments {
		if p.InvoiceID == invoiceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPaymentRepo) List(limit, offset int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.s.payments {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPaymentRepo) SumByInvoice(invoiceID, excludeID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.InvoiceID != invoiceID || p.ID == excludeID {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

// --- cotizaciones ---

type memQuoteRepo struct{ s *memStore }

func (r *memQuoteRepo) Create(q *entity.Quote) error {
	cp := *q
	r.s.quotes[q.ID] = &cp
	return nil
}

func (r *memQuoteRepo) CreateItem(item *entity.QuoteItem) error {
	cp := *item
	r.s.quoItems[item.QuoteID] = append(r.s.quoItems[item.QuoteID], &cp)
	return nil
}

func (r *memQuoteRepo) GetByID(id string) (*entity.Quote, error) {
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *memQuoteRepo) GetForUpdate(id string) (*entity.Quote, error) { return r.GetByID(id) }

func (r *memQuoteRepo) GetItems(quoteID string) ([]*entity.QuoteItem, error) {
	items := r.s.quoItems[quoteID]
	out := make([]*entity.QuoteItem, 0, len(items))
	for _, item := range items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memQuoteRepo) Update(q *entity.Quote) error {
	if _, ok := r.s.quotes[q.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *q
	r.s.quotes[q.ID] = &cp
	return nil
}

func (r *memQuoteRepo) List(filter repository.QuoteFilter) ([]*entity.Quote, error) {
	var out []*entity.Quote
	for _, q := range r.s.quotes {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memQuoteRepo) DeleteItems(quoteID string) error { delete(r.s.quoItems, quoteID); return nil }
func (r *memQuoteRepo) Delete(id string) error           { delete(r.s.quotes, id); return nil }

func (r *memQuoteRepo) MarkExpired(before time.Time) (int64, error) {
	cutoff := time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
	var count int64
	for _, q := range r.s.quotes {
		if (q.Status == entity.QuoteStatusDraft || q.Status == entity.QuoteStatusSent) && q.ValidUntil.Before(cutoff) {
			q.Status = entity.QuoteStatusExpired
			count++
		}
	}
	return count, nil
}

func (r *memQuoteRepo) Stats(from, to time.Time) (*repository.QuoteStats, error) {
	stats := &repository.QuoteStats{TotalAmount: decimal.Zero}
	for _, q := range r.s.quotes {
		stats.TotalQuotes++
		stats.TotalAmount = stats.TotalAmount.Add(q.Total)
		switch q.Status {
		case entity.QuoteStatusDraft:
			stats.DraftQuotes++
		case entity.QuoteStatusSent:
			stats.SentQuotes++
		case entity.QuoteStatusApproved:
			stats.ApprovedQuotes++
		case entity.QuoteStatusConverted:
			stats.ConvertedQuotes++
		case entity.QuoteStatusExpired:
			stats.ExpiredQuotes++
		}
	}
	return stats, nil
}

// --- compras ---

type memPurchaseRepo struct{ s *memStore }

func (r *memPurchaseRepo) Create(p *entity.Purchase) error {
	cp := *p
	r.s.purchases[p.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) CreateItem(item *entity.PurchaseItem) error {
	cp := *item
	r.s.purItems[item.PurchaseID] = append(r.s.purItems[item.PurchaseID], &cp)
	return nil
}

func (r *memPurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPurchaseRepo) GetForUpdate(id string) (*entity.Purchase, error) { return r.GetByID(id) }

func (r *memPurchaseRepo) GetItems(purchaseID string) ([]*entity.PurchaseItem, error) {
	items := r.s.purItems[purchaseID]
	out := make([]*entity.PurchaseItem, 0, len(items))
	for _, item := range items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPurchaseRepo) Update(p *entity.Purchase) error {
	if _, ok := r.s.purchases[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.purchases[p.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) List(filter repository.PurchaseFilter) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, p := range r.s.purchases {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPurchaseRepo) DeleteItems(purchaseID string) error {
	delete(r.s.purItems, purchaseID)
	return nil
}

func (r *memPurchaseRepo) Delete(id string) error { delete(r.s.purchases, id); return nil }

func (r *memPurchaseRepo) Stats(from, to time.Time) (*repository.PurchaseStats, error) {
	stats := &repository.PurchaseStats{TotalAmount: decimal.Zero}
	for _, p := range r.s.purchases {
		stats.TotalPurchases++
		stats.TotalAmount = stats.TotalAmount.Add(p.Total)
		switch p.Status {
		case entity.PurchaseStatusPending:
			stats.PendingPurchases++
		case entity.PurchaseStatusReceived:
			stats.ReceivedPurchases++
		}
	}
	return stats, nil
}

// --- clientes y proveedores ---

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) Create(c *entity.Customer) error { r.s.addCustomer(c); return nil }

func (r *memCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) List(search string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.s.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCustomerRepo) Update(c *entity.Customer) error { r.s.addCustomer(c); return nil }
func (r *memCustomerRepo) Delete(id string) error          { delete(r.s.customers, id); return nil }

type memSupplierRepo struct{ s *memStore }

func (r *memSupplierRepo) Create(p *entity.Supplier) error { r.s.addSupplier(p); return nil }

func (r *memSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	p, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memSupplierRepo) List(search string, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, p := range r.s.suppliers {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSupplierRepo) Update(p *entity.Supplier) error { r.s.addSupplier(p); return nil }
func (r *memSupplierRepo) Delete(id string) error          { delete(r.s.suppliers, id); return nil }

// --- secuencias ---

type memSequenceRepo struct{ s *memStore }

func (r *memSequenceRepo) Next(name string) (int64, error) {
	r.s.sequences[name]++
	return r.s.sequences[name], nil
}

// --- tx runner, notifier y pdf ---

type memTxRunner struct{ s *memStore }

func (t *memTxRunner) RunBilling(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	quoteRepo repository.QuoteRepository,
	purchaseRepo repository.PurchaseRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return fn(
		&memMovementRepo{t.s},
		&memProductRepo{t.s},
		&memInvoiceRepo{t.s},
		&memPaymentRepo{t.s},
		&memQuoteRepo{t.s},
		&memPurchaseRepo{t.s},
		&memSequenceRepo{t.s},
	)
}

type spyNotifier struct {
	invoices []string
}

func (n *spyNotifier) InvoiceCreated(inv *entity.Invoice, _ *entity.Customer) {
	n.invoices = append(n.invoices, inv.ID)
}

type stubPDFGenerator struct{}

func (g *stubPDFGenerator) Generate(_ *entity.Invoice, _ *entity.Customer, _ []InvoiceLine) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// testEnv armado común de los tests de billing.
type testEnv struct {
	store    *memStore
	tx       *memTxRunner
	notifier *spyNotifier
	taxRate  decimal.Decimal
}

func newTestEnv() *testEnv {
	s := newMemStore()
	return &testEnv{
		store:    s,
		tx:       &memTxRunner{s},
		notifier: &spyNotifier{},
		taxRate:  decimal.RequireFromString("0.12"),
	}
}

func (e *testEnv) invoiceUC() *InvoiceUseCase {
	return NewInvoiceUseCase(
		e.tx,
		&memCustomerRepo{e.store},
		&memProductRepo{e.store},
		&memInvoiceRepo{e.store},
		&memPaymentRepo{e.store},
		e.notifier,
		&stubPDFGenerator{},
		e.taxRate,
		testLogger(),
	)
}

func (e *testEnv) paymentUC() *PaymentUseCase {
	return NewPaymentUseCase(e.tx, &memPaymentRepo{e.store}, &memInvoiceRepo{e.store}, testLogger())
}

func (e *testEnv) quoteUC() *QuoteUseCase {
	return NewQuoteUseCase(
		e.tx,
		&memQuoteRepo{e.store},
		&memCustomerRepo{e.store},
		&memProductRepo{e.store},
		&memInvoiceRepo{e.store},
		e.taxRate,
		testLogger(),
	)
}

func (e *testEnv) purchaseUC() *PurchaseUseCase {
	return NewPurchaseUseCase(
		e.tx,
		&memPurchaseRepo{e.store},
		&memSupplierRepo{e.store},
		&memProductRepo{e.store},
		e.taxRate,
		testLogger(),
	)
}
