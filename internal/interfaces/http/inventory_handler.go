package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
	"github.com/jhoicas/Taller-api/internal/domain"
)

// InventoryHandler ajustes manuales, historial de movimientos y stock bajo (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterAdjustmentUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterAdjustmentUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste manual de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterAdjustmentRequest  true  "part_id, type (IN|OUT|ADJUST), quantity, unit_cost (IN)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterAdjustmentRequest
	if err := decodeStrict(c, &in); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.uc.RegisterAdjustmentFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByPart godoc
// @Summary      Historial de movimientos de una pieza (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la pieza"
// @Param        from    query  string  false  "desde (2006-01-02 o RFC3339)"
// @Param        to      query  string  false  "hasta, inclusive"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/parts/{id}/movements [get]
func (h *InventoryHandler) ListByPart(c *fiber.Ctx) error {
	from, err := queryTime(c, "from", false)
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.NewValidation("limit", "paginación inválida"))
	}
	list, err := h.uc.ListByPart(c.UserContext(), c.Params("id"), from, to, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// ListByOrder godoc
// @Summary      Movimientos generados por una orden de servicio
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/orders/{id}/movements [get]
func (h *InventoryHandler) ListByOrder(c *fiber.Ctx) error {
	list, err := h.uc.ListByOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetLowStock godoc
// @Summary      Piezas por debajo del mínimo con cantidad sugerida de reposición
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.NewValidation("limit", "paginación inválida"))
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"parts": list,
	})
}

// queryTime lee una fecha opcional. Con endOfDay, una fecha sin hora cubre el día completo.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(serviceorder.DateLayout, s)
	if err != nil {
		return nil, domain.NewValidation(key, "formato de fecha inválido")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
