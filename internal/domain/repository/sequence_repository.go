package repository

// Nombres de secuencias correlativas.
const (
	SequenceQuote    = "quote_number"
	SequencePurchase = "purchase_number"
)

// SequenceRepository generador de correlativos para numeración humana
// (QUO-000001, PUR-000001). Next debe ejecutarse dentro de la misma
// transacción que el insert del documento; el constraint único sobre la
// columna de número es el respaldo ante cualquier carrera residual.
type SequenceRepository interface {
	Next(name string) (int64, error)
}
