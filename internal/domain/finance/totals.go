package finance

import "github.com/shopspring/decimal"

// Line línea de un documento para cálculo de totales.
// UnitGross es el precio (o costo) unitario CON IVA incluido.
type Line struct {
	UnitGross decimal.Decimal
	Quantity  int64
}

// Totals resultado del cálculo: Total = Subtotal + TaxAmount, ambos a 2 decimales.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals calcula subtotal/impuesto/total de un conjunto de líneas.
// Descompone cada línea con Split y suma; el redondeo a 2 decimales se aplica
// sobre los agregados, no por línea. Un conjunto vacío produce totales en cero.
func ComputeTotals(lines []Line, rate decimal.Decimal) Totals {
	var subtotal, tax decimal.Decimal
	for _, l := range lines {
		qty := decimal.NewFromInt(l.Quantity)
		lineNet, lineTax := Split(l.UnitGross, rate)
		subtotal = subtotal.Add(lineNet.Mul(qty))
		tax = tax.Add(lineTax.Mul(qty))
	}
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
