// Package finance contiene los cálculos monetarios puros del sistema:
// descomposición de precios con IVA incluido y totales de documentos.
// Sin dependencias de persistencia; todo en decimal para evitar errores binarios.
package finance

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// Split descompone un monto bruto (precio CON IVA incluido) en neto e impuesto.
//
//	neto     = bruto / (1 + tasa)
//	impuesto = bruto - neto
//
// No redondea: el redondeo se aplica solo al agregar líneas (ver ComputeTotals),
// para no acumular error de redondeo línea a línea.
// Con tasa cero: neto = bruto, impuesto = 0.
func Split(gross, rate decimal.Decimal) (net, tax decimal.Decimal) {
	if rate.IsZero() {
		return gross, decimal.Zero
	}
	net = gross.Div(one.Add(rate))
	tax = gross.Sub(net)
	return net, tax
}
