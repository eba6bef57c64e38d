package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
)

// ServiceOrderHandler maneja las órdenes de servicio (protegido).
type ServiceOrderHandler struct {
	coord *serviceorder.Coordinator
}

// NewServiceOrderHandler construye el handler.
func NewServiceOrderHandler(coord *serviceorder.Coordinator) *ServiceOrderHandler {
	return &ServiceOrderHandler{coord: coord}
}

// Create godoc
// @Summary      Crear orden de servicio
// @Tags         service-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateServiceOrderRequest  true  "cliente, vehículo, líneas de servicio y piezas"
// @Success      201   {object}  dto.ServiceOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/service-orders [post]
func (h *ServiceOrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateServiceOrderRequest
	if err := decodeStrict(c, &in); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.coord.CreateFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar orden de servicio
// @Description  Los campos ausentes no cambian; service_lines/part_lines reemplazan el conjunto completo.
// @Tags         service-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la orden"
// @Param        body  body  dto.UpdateServiceOrderRequest   true  "cambios"
// @Success      200   {object}  dto.ServiceOrderResponse
// @Router       /api/service-orders/{id} [patch]
func (h *ServiceOrderHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateServiceOrderRequest
	if err := decodeStrict(c, &in); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.coord.UpdateFromRequest(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden con líneas y nombres resueltos
// @Tags         service-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ServiceOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service-orders/{id} [get]
func (h *ServiceOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.coord.GetResponse(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar orden: devuelve todo el stock y elimina la orden
// @Tags         service-orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service-orders/{id} [delete]
func (h *ServiceOrderHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	if err := h.coord.CancelByID(c.UserContext(), c.Params("id"), userID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
