package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/application/rates"
)

// InterestRateHandler maneja las peticiones HTTP para InterestRate.
type InterestRateHandler struct {
	uc *rates.RateLifecycleUseCase
}

// NewInterestRateHandler construye el handler.
func NewInterestRateHandler(uc *rates.RateLifecycleUseCase) *InterestRateHandler {
	return &InterestRateHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar tasa de interés
// @Description  Cierra la tasa abierta anterior del producto el día previo al inicio de la nueva.
// @Tags         interest-rates
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InterestRateRequest  true  "Datos de la tasa"
// @Success      201   {object}  dto.InterestRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/interest-rates [post]
func (h *InterestRateHandler) Create(c *fiber.Ctx) error {
	var req dto.InterestRateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	in, err := req.ToInput()
	if err != nil {
		return writeError(c, err)
	}
	rate, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToInterestRateResponse(rate))
}

// Update godoc
// @Summary      Actualizar tasa de interés
// @Tags         interest-rates
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la tasa"
// @Param        body  body  dto.InterestRateRequest  true  "Datos de la tasa"
// @Success      200   {object}  dto.InterestRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/interest-rates/{id} [put]
func (h *InterestRateHandler) Update(c *fiber.Ctx) error {
	var req dto.InterestRateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	in, err := req.ToInput()
	if err != nil {
		return writeError(c, err)
	}
	rate, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToInterestRateResponse(rate))
}

// GetByID godoc
// @Summary      Obtener tasa de interés por ID
// @Tags         interest-rates
// @Produce      json
// @Param        id   path  string  true  "ID de la tasa"
// @Success      200  {object}  dto.InterestRateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/interest-rates/{id} [get]
func (h *InterestRateHandler) GetByID(c *fiber.Ctx) error {
	rate, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToInterestRateResponse(rate))
}

// ListByProduct godoc
// @Summary      Listar tasas de un producto
// @Tags         interest-rates
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ListResponse[dto.InterestRateResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id}/interest-rates [get]
func (h *InterestRateHandler) ListByProduct(c *fiber.Ctx) error {
	list, err := h.uc.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToInterestRateList(list))
}

// Current godoc
// @Summary      Tasa vigente de un producto
// @Tags         interest-rates
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        date  query  string  false  "Fecha AAAA-MM-DD (hoy por defecto)"
// @Success      200   {object}  dto.CurrentRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id}/current-rate [get]
func (h *InterestRateHandler) Current(c *fiber.Ctx) error {
	on, err := dto.ParseQueryDate(c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	cur, err := h.uc.CurrentFor(c.UserContext(), c.Params("id"), on)
	if err != nil {
		return writeError(c, err)
	}
	if cur.Ambiguous() {
		requestLogger(c).Warn().Strs("candidate_ids", cur.CandidateIDs).Msg("tasa vigente ambigua devuelta al cliente")
	}
	return c.JSON(dto.ToCurrentRateResponse(cur))
}
