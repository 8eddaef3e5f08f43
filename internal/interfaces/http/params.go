package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const queryDateLayout = "2006-01-02"

// parseDateQuery lee un query param de fecha YYYY-MM-DD. Devuelve nil si está ausente.
func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// statsRange lee el rango from/to para endpoints de stats.
// Sin parámetros cubre todo el historial hasta hoy.
func statsRange(c *fiber.Ctx) (from, to time.Time, ok bool) {
	fromPtr, ok := parseDateQuery(c, "from")
	if !ok {
		return from, to, false
	}
	toPtr, ok := parseDateQuery(c, "to")
	if !ok {
		return from, to, false
	}
	if fromPtr != nil {
		from = *fromPtr
	}
	if toPtr != nil {
		to = *toPtr
	} else {
		to = time.Now()
	}
	return from, to, true
}
