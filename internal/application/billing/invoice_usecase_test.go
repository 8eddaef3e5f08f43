package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

func seedVentas(e *testEnv) {
	e.store.addCustomer(&entity.Customer{ID: "c1", Name: "Cliente Uno"})
	e.store.addProduct(&entity.Product{
		ID: "p1", Name: "Monitor", Type: entity.ProductTypeProduct,
		Price: d("896.00"), Stock: 10,
	})
	e.store.addProduct(&entity.Product{
		ID: "p2", Name: "Cable HDMI", Type: entity.ProductTypeProduct,
		Price: d("28.56"), Stock: 50,
	})
	e.store.addProduct(&entity.Product{
		ID: "s1", Name: "Instalación", Type: entity.ProductTypeService,
		Price: d("112.00"),
	})
}

func TestInvoiceCreate_DescuentaStockYDesglosaIVA(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()

	resp, err := uc.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items: []dto.DocumentItemRequest{
			{ProductID: "p1", Quantity: 1, Price: d("896.00")},
			{ProductID: "p2", Quantity: 2, Price: d("28.56")},
		},
	})
	require.NoError(t, err)

	// 896 + 2*28.56 = 953.12 bruto -> 851.00 neto + 102.12 IVA (12%)
	assert.True(t, resp.Subtotal.Equal(d("851.00")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.TaxAmount.Equal(d("102.12")), "iva %s", resp.TaxAmount)
	assert.True(t, resp.Total.Equal(d("953.12")), "total %s", resp.Total)
	assert.True(t, resp.BalanceDue.Equal(resp.Total))
	assert.Equal(t, entity.InvoiceStatusPending, resp.Status)
	require.Len(t, resp.Items, 2)

	// Stock descontado y movimientos de venta con referencia a la factura
	assert.Equal(t, int64(9), e.store.products["p1"].Stock)
	assert.Equal(t, int64(48), e.store.products["p2"].Stock)
	require.Len(t, e.store.movements, 2)
	for _, m := range e.store.movements {
		assert.Equal(t, entity.MovementTypeSale, m.Type)
		assert.Equal(t, entity.ReferenceInvoice, m.ReferenceType)
		assert.Equal(t, resp.ID, m.ReferenceID)
		assert.Negative(t, m.Quantity)
	}

	// Notificación emitida fuera de la transacción
	assert.Equal(t, []string{resp.ID}, e.notifier.invoices)
}

func TestInvoiceCreate_ServicioNoGeneraMovimiento(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()

	resp, err := uc.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items: []dto.DocumentItemRequest{
			{ProductID: "s1", Quantity: 3, Price: d("112.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(d("336.00")))
	assert.Empty(t, e.store.movements, "los servicios no mueven inventario")
}

func TestInvoiceCreate_StockInsuficienteFalla(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()

	_, err := uc.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items: []dto.DocumentItemRequest{
			{ProductID: "p1", Quantity: 11, Price: d("896.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, int64(10), e.store.products["p1"].Stock, "el stock no debe cambiar")
}

func TestInvoiceCreate_PrecioCeroTomaElDeCatalogo(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()

	resp, err := uc.Create(context.Background(), "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(d("896.00")))
	assert.True(t, resp.Items[0].Price.Equal(d("896.00")))
}

func TestInvoiceCreate_Validaciones(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, "", dto.CreateInvoiceRequest{CustomerID: "c1"})
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))

	_, err = uc.Create(ctx, "u1", dto.CreateInvoiceRequest{CustomerID: "c1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "sin líneas")

	_, err = uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "nadie",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "cliente inexistente")

	_, err = uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 0}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero")
}

func TestInvoiceUpdateStatus_AnularRestauraStock(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 4, Price: d("896.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(6), e.store.products["p1"].Stock)

	canceled, err := uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCanceled, canceled.Status)
	assert.Equal(t, int64(10), e.store.products["p1"].Stock, "el stock vuelve")

	// La anulación elimina las líneas y deja todos los montos en cero
	assert.True(t, canceled.Subtotal.IsZero(), "subtotal %s", canceled.Subtotal)
	assert.True(t, canceled.TaxAmount.IsZero(), "iva %s", canceled.TaxAmount)
	assert.True(t, canceled.Total.IsZero(), "total %s", canceled.Total)
	assert.True(t, canceled.BalanceDue.IsZero(), "saldo %s", canceled.BalanceDue)
	after, err := uc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Items, "las líneas se eliminan al anular")

	// El último movimiento es una devolución referenciando la factura
	last := e.store.movements[len(e.store.movements)-1]
	assert.Equal(t, entity.MovementTypeReturn, last.Type)
	assert.Equal(t, resp.ID, last.ReferenceID)
	assert.Equal(t, int64(4), last.Quantity)

	// Una factura anulada no admite más transiciones
	_, err = uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestInvoiceUpdateStatus_AnularFacturaPagada(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 2, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	// Anular también es válido desde paid
	canceled, err := uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCanceled, canceled.Status)
	assert.Equal(t, int64(10), e.store.products["p1"].Stock, "el stock vuelve")
	assert.True(t, canceled.Total.IsZero())
	assert.True(t, canceled.BalanceDue.IsZero())
}

func TestInvoiceUpdateStatus_PendienteRevierteLiquidacionManual(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	invoiceUC := e.invoiceUC()
	paymentUC := e.paymentUC()
	ctx := context.Background()

	resp, err := invoiceUC.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = paymentUC.Create(ctx, "u1", dto.CreatePaymentRequest{
		InvoiceID: resp.ID, Amount: d("300.00"), Method: entity.PaymentMethodCash,
	})
	require.NoError(t, err)
	_, err = invoiceUC.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	// Volver a pending recalcula el saldo desde los pagos reales
	reverted, err := invoiceUC.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPending)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, reverted.Status)
	assert.True(t, reverted.BalanceDue.Equal(d("596.00")), "saldo %s", reverted.BalanceDue)
}

func TestInvoiceUpdateStatus_PagoManualNoFabricaPagos(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	paid, err := uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)
	assert.True(t, paid.BalanceDue.IsZero())
	assert.Empty(t, e.store.payments, "la liquidación manual no crea pagos")
	assert.Equal(t, int64(9), e.store.products["p1"].Stock, "pagar no toca stock")
}

func TestInvoiceUpdate_ReemplazaLineasYReacomodaStock(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 3, Price: d("896.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), e.store.products["p1"].Stock)

	updated, err := uc.Update(ctx, "u1", resp.ID, dto.UpdateInvoiceRequest{
		Items: []dto.DocumentItemRequest{{ProductID: "p2", Quantity: 5, Price: d("28.56")}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), e.store.products["p1"].Stock, "las unidades anteriores vuelven")
	assert.Equal(t, int64(45), e.store.products["p2"].Stock, "las nuevas se descuentan")
	assert.True(t, updated.Total.Equal(d("142.80")), "total %s", updated.Total)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "p2", updated.Items[0].ProductID)
}

func TestInvoiceUpdate_SoloPendientes(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	_, err = uc.Update(ctx, "u1", resp.ID, dto.UpdateInvoiceRequest{
		Items: []dto.DocumentItemRequest{{ProductID: "p2", Quantity: 1, Price: d("28.56")}},
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestInvoiceDelete_RestauraStockYLimpiaPagos(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	invoiceUC := e.invoiceUC()
	paymentUC := e.paymentUC()
	ctx := context.Background()

	resp, err := invoiceUC.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 2, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = paymentUC.Create(ctx, "u1", dto.CreatePaymentRequest{
		InvoiceID: resp.ID, Amount: d("500.00"), Method: entity.PaymentMethodCash,
	})
	require.NoError(t, err)

	require.NoError(t, invoiceUC.Delete(ctx, "u1", resp.ID))

	assert.Equal(t, int64(10), e.store.products["p1"].Stock)
	assert.Empty(t, e.store.payments)
	_, err = invoiceUC.Get(ctx, resp.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestInvoiceDelete_PagadaNoSeElimina(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, "u1", resp.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	err = uc.Delete(ctx, "u1", resp.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestInvoiceGeneratePDF(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.invoiceUC()
	ctx := context.Background()

	resp, err := uc.Create(ctx, "u1", dto.CreateInvoiceRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	pdf, err := uc.GeneratePDF(ctx, resp.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
