package inventory

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

// --- fakes en memoria ---

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) List(filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStock(id string, stock int64) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r *fakeProductRepo) UpdateCostPrice(id string, cost decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CostPrice = cost
	return nil
}

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.products, id)
	return nil
}

type fakeMovementRepo struct {
	movements []*entity.InventoryMovement
}

func (r *fakeMovementRepo) Create(m *entity.InventoryMovement) error {
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMovementRepo) List(filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.movements {
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

type fakeTxRunner struct {
	mov  *fakeMovementRepo
	prod *fakeProductRepo
}

func (t *fakeTxRunner) Run(ctx context.Context, fn func(repository.InventoryMovementRepository, repository.ProductRepository) error) error {
	return fn(t.mov, t.prod)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func productoFisico(id string, stock int64) *entity.Product {
	return &entity.Product{ID: id, Name: "Producto " + id, Type: entity.ProductTypeProduct, Stock: stock}
}

// --- tests del libro ---

func TestApply_VentaDescuentaStockYGuardaCantidadNegativa(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 10))
	mov := &fakeMovementRepo{}

	m, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypeSale,
		Quantity:  3,
		Ref:       entity.InvoiceRef("f1"),
		UserID:    "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-3), m.Quantity)
	assert.Equal(t, int64(10), m.StockBefore)
	assert.Equal(t, int64(7), m.StockAfter)
	assert.Equal(t, entity.ReferenceInvoice, m.ReferenceType)
	assert.Equal(t, "f1", m.ReferenceID)

	got, _ := prod.GetByID("p1")
	assert.Equal(t, int64(7), got.Stock)
}

func TestApply_VentaHastaCeroEsValida(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 5))
	mov := &fakeMovementRepo{}

	m, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypeSale,
		Quantity:  5,
		Ref:       entity.InvoiceRef("f1"),
		UserID:    "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.StockAfter)
}

func TestApply_StockInsuficienteNoMutaNada(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 2))
	mov := &fakeMovementRepo{}

	_, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypeSale,
		Quantity:  3,
		Ref:       entity.InvoiceRef("f1"),
		UserID:    "u1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(2), stockErr.Available)
	assert.Equal(t, int64(3), stockErr.Requested)

	got, _ := prod.GetByID("p1")
	assert.Equal(t, int64(2), got.Stock, "el stock no debe cambiar")
	assert.Empty(t, mov.movements, "no debe quedar movimiento registrado")
}

func TestApply_CompraYDevolucionSumanStock(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 1))
	mov := &fakeMovementRepo{}

	m, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypePurchase,
		Quantity:  4,
		Ref:       entity.PurchaseRef("c1"),
		UserID:    "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.Quantity)
	assert.Equal(t, int64(5), m.StockAfter)

	m2, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypeReturn,
		Quantity:  2,
		Ref:       entity.InvoiceRef("f1"),
		UserID:    "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), m2.Quantity)
	assert.Equal(t, int64(5), m2.StockBefore)
	assert.Equal(t, int64(7), m2.StockAfter)
}

func TestApply_AjusteNegativoBajoCeroRechazado(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 3))
	mov := &fakeMovementRepo{}

	_, err := Apply(mov, prod, ApplyInput{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  -5,
		Ref:       entity.ManualRef(),
		UserID:    "u1",
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestApply_ServicioNoManejaStock(t *testing.T) {
	svc := &entity.Product{ID: "s1", Name: "Instalación", Type: entity.ProductTypeService}
	prod := newFakeProductRepo(svc)
	mov := &fakeMovementRepo{}

	_, err := Apply(mov, prod, ApplyInput{
		ProductID: "s1",
		Type:      entity.MovementTypeSale,
		Quantity:  1,
		Ref:       entity.InvoiceRef("f1"),
		UserID:    "u1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApply_ValidacionesDeEntrada(t *testing.T) {
	prod := newFakeProductRepo(productoFisico("p1", 3))
	mov := &fakeMovementRepo{}

	_, err := Apply(mov, prod, ApplyInput{ProductID: "p1", Type: entity.MovementTypeSale, Quantity: 1, Ref: entity.InvoiceRef("f1")})
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated), "sin usuario")

	_, err = Apply(mov, prod, ApplyInput{ProductID: "p1", Type: "otro", Quantity: 1, Ref: entity.ManualRef(), UserID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "tipo desconocido")

	_, err = Apply(mov, prod, ApplyInput{ProductID: "p1", Type: entity.MovementTypeSale, Quantity: 0, Ref: entity.InvoiceRef("f1"), UserID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero")

	_, err = Apply(mov, prod, ApplyInput{ProductID: "p1", Type: entity.MovementTypeAdjustment, Quantity: 0, Ref: entity.ManualRef(), UserID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ajuste cero")

	_, err = Apply(mov, prod, ApplyInput{ProductID: "nope", Type: entity.MovementTypeSale, Quantity: 1, Ref: entity.InvoiceRef("f1"), UserID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "producto inexistente")
}

func TestRegisterAdjustment_RegistraMovimientoManual(t *testing.T) {
	prodRepo := newFakeProductRepo(productoFisico("p1", 8))
	movRepo := &fakeMovementRepo{}
	tx := &fakeTxRunner{mov: movRepo, prod: prodRepo}
	uc := NewUseCase(tx, prodRepo, movRepo, testLogger())

	m, err := uc.RegisterAdjustment(context.Background(), "u1", dto.AdjustmentRequest{
		ProductID: "p1",
		Quantity:  -3,
		Notes:     "merma por daño",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypeAdjustment, m.Type)
	assert.Equal(t, int64(-3), m.Quantity)
	assert.Equal(t, entity.ReferenceManual, m.ReferenceType)
	assert.Empty(t, m.ReferenceID)
	assert.Equal(t, "u1", m.UserID)

	got, _ := prodRepo.GetByID("p1")
	assert.Equal(t, int64(5), got.Stock)
}

func TestSummary_CuentaSoloProductosFisicos(t *testing.T) {
	prodRepo := newFakeProductRepo(
		productoFisico("p1", 2),
		productoFisico("p2", 20),
		&entity.Product{ID: "s1", Name: "Servicio", Type: entity.ProductTypeService},
	)
	uc := NewUseCase(nil, prodRepo, &fakeMovementRepo{}, testLogger())

	summary, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalProducts)
	assert.Equal(t, int64(22), summary.TotalUnits)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "p1", summary.LowStock[0].ProductID)
}

func TestSummary_UmbralDeStockBajoEsDiez(t *testing.T) {
	prodRepo := newFakeProductRepo(
		productoFisico("p1", entity.LowStockThreshold),   // en el límite: alerta
		productoFisico("p2", entity.LowStockThreshold+1), // justo encima: sin alerta
		productoFisico("p3", 0),
	)
	uc := NewUseCase(nil, prodRepo, &fakeMovementRepo{}, testLogger())

	summary, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, entity.LowStockThreshold)
	require.Len(t, summary.LowStock, 2)
	assert.Equal(t, "p1", summary.LowStock[0].ProductID)
	assert.Equal(t, "p3", summary.LowStock[1].ProductID)
}
