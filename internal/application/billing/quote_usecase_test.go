package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

func TestQuoteCreate_CorrelativoYTotales(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q1, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "QUO-000001", q1.QuoteNumber)
	assert.Equal(t, entity.QuoteStatusDraft, q1.Status)
	assert.True(t, q1.Subtotal.Equal(d("800.00")))
	assert.True(t, q1.TaxAmount.Equal(d("96.00")))
	assert.True(t, q1.Total.Equal(d("896.00")))

	q2, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p2", Quantity: 1, Price: d("28.56")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "QUO-000002", q2.QuoteNumber)

	// Cotizar no compromete stock
	assert.Equal(t, int64(10), e.store.products["p1"].Stock)
	assert.Empty(t, e.store.movements)
}

func TestQuoteLifecycle_ConversionAFactura(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items: []dto.DocumentItemRequest{
			{ProductID: "p1", Quantity: 2, Price: d("896.00")},
		},
	})
	require.NoError(t, err)

	_, err = uc.Send(ctx, "u1", q.ID)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, "u1", q.ID)
	require.NoError(t, err)

	inv, err := uc.Convert(ctx, "u1", q.ID)
	require.NoError(t, err)

	// La factura hereda precios y tasa de la cotización
	assert.True(t, inv.Total.Equal(d("1792.00")), "total %s", inv.Total)
	assert.True(t, inv.TaxRate.Equal(e.taxRate))
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Price.Equal(d("896.00")))

	// El stock se compromete recién en la conversión
	assert.Equal(t, int64(8), e.store.products["p1"].Stock)

	quote := e.store.quotes[q.ID]
	assert.Equal(t, entity.QuoteStatusConverted, quote.Status)
	assert.Equal(t, inv.ID, quote.ConvertedInvoiceID)

	// Una cotización convertida no se vuelve a convertir
	_, err = uc.Convert(ctx, "u1", q.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestQuoteConvert_SinAprobarFalla(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	_, err = uc.Convert(ctx, "u1", q.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestQuoteConvert_SinStockDejaLaCotizacionAprobada(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 25, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = uc.Send(ctx, "u1", q.ID)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, "u1", q.ID)
	require.NoError(t, err)

	_, err = uc.Convert(ctx, "u1", q.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, int64(10), e.store.products["p1"].Stock, "el stock no cambia")
	assert.Equal(t, entity.QuoteStatusApproved, e.store.quotes[q.ID].Status, "la cotización sigue aprobada")
	assert.Empty(t, e.store.quotes[q.ID].ConvertedInvoiceID)
}

func TestQuoteReject_DesdeSentYApproved(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	// Desde draft no se rechaza
	_, err = uc.Reject(ctx, "u1", q.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = uc.Send(ctx, "u1", q.ID)
	require.NoError(t, err)
	rejected, err := uc.Reject(ctx, "u1", q.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusRejected, rejected.Status)
}

func TestQuoteVencida_TransicionPersisteExpired(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	ayer := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	hace10 := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		QuoteDate:  hace10,
		ValidUntil: ayer,
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	_, err = uc.Send(ctx, "u1", q.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpired))
	assert.Equal(t, entity.QuoteStatusExpired, e.store.quotes[q.ID].Status)
}

func TestQuoteMarkExpired_EnBloque(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	ayer := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	hace10 := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	manana := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	vencida, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1", QuoteDate: hace10, ValidUntil: ayer,
		Items: []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	vigente, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1", ValidUntil: manana,
		Items: []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	count, err := uc.MarkExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, entity.QuoteStatusExpired, e.store.quotes[vencida.ID].Status)
	assert.Equal(t, entity.QuoteStatusDraft, e.store.quotes[vigente.ID].Status)
}

func TestQuoteUpdate_ReemplazaLineasYRecalcula(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, "u1", q.ID, dto.UpdateQuoteRequest{
		Items: []dto.DocumentItemRequest{{ProductID: "p2", Quantity: 2, Price: d("28.56")}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(d("57.12")), "total %s", updated.Total)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "p2", updated.Items[0].ProductID)
	assert.Equal(t, "QUO-000001", updated.QuoteNumber, "el correlativo no cambia")
}

func TestQuoteDelete_ConvertidaNoSeElimina(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
		CustomerID: "c1",
		Items:      []dto.DocumentItemRequest{{ProductID: "p1", Quantity: 1, Price: d("896.00")}},
	})
	require.NoError(t, err)
	_, err = uc.Send(ctx, "u1", q.ID)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, "u1", q.ID)
	require.NoError(t, err)
	_, err = uc.Convert(ctx, "u1", q.ID)
	require.NoError(t, err)

	err = uc.Delete(ctx, "u1", q.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestQuoteStats_TasaDeConversion(t *testing.T) {
	e := newTestEnv()
	seedVentas(e)
	uc := e.quoteUC()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		q, err := uc.Create(ctx, "u1", dto.CreateQuoteRequest{
			CustomerID: "c1",
			Items:      []dto.DocumentItemRequest{{ProductID: "p2", Quantity: 1, Price: d("28.56")}},
		})
		require.NoError(t, err)
		if i == 0 {
			_, err = uc.Send(ctx, "u1", q.ID)
			require.NoError(t, err)
			_, err = uc.Approve(ctx, "u1", q.ID)
			require.NoError(t, err)
			_, err = uc.Convert(ctx, "u1", q.ID)
			require.NoError(t, err)
		}
	}

	stats, err := uc.Stats(ctx, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalQuotes)
	assert.Equal(t, int64(1), stats.ConvertedQuotes)
	assert.Equal(t, int64(3), stats.DraftQuotes)
	assert.True(t, stats.ConversionRate.Equal(d("25")), "tasa %s", stats.ConversionRate)
}
