package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-erp/internal/application/billing"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

// QuoteHandler maneja el ciclo de vida de cotizaciones (protegido).
type QuoteHandler struct {
	uc *billing.QuoteUseCase
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *billing.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización (no afecta stock)
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuoteRequest  true  "Cotización con líneas"
// @Success      201   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene una cotización con sus líneas.
// GET /api/quotes/:id
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List lista cotizaciones con filtros.
// GET /api/quotes?status=&customer_id=&search=&from=&to=&include_expired=&limit=&offset=
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	from, okFrom := parseDateQuery(c, "from")
	to, okTo := parseDateQuery(c, "to")
	if !okFrom || !okTo {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato YYYY-MM-DD"})
	}
	filter := repository.QuoteFilter{
		Status:         c.Query("status"),
		CustomerID:     c.Query("customer_id"),
		Search:         c.Query("search"),
		From:           from,
		To:             to,
		IncludeExpired: c.QueryBool("include_expired"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	}
	out, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update actualiza una cotización en draft o sent.
// PUT /api/quotes/:id
func (h *QuoteHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Send marca la cotización como enviada.
// POST /api/quotes/:id/send
func (h *QuoteHandler) Send(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Send)
}

// Approve aprueba una cotización enviada.
// POST /api/quotes/:id/approve
func (h *QuoteHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Approve)
}

// Reject rechaza una cotización enviada o aprobada.
// POST /api/quotes/:id/reject
func (h *QuoteHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Reject)
}

func (h *QuoteHandler) transition(
	c *fiber.Ctx,
	fn func(ctx context.Context, userID, id string) (*dto.QuoteResponse, error),
) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := fn(c.Context(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Convert convierte una cotización aprobada en factura (descuenta stock).
// POST /api/quotes/:id/convert
func (h *QuoteHandler) Convert(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.Convert(c.Context(), GetUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkExpired expira en bloque las cotizaciones vencidas.
// POST /api/quotes/expire
func (h *QuoteHandler) MarkExpired(c *fiber.Ctx) error {
	count, err := h.uc.MarkExpired(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"expired": count})
}

// Delete elimina una cotización no convertida.
// DELETE /api/quotes/:id
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.Delete(c.Context(), GetUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats agregados de cotizaciones.
// GET /api/quotes/stats?from=&to=
func (h *QuoteHandler) Stats(c *fiber.Ctx) error {
	from, to, ok := statsRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato YYYY-MM-DD"})
	}
	out, err := h.uc.Stats(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
