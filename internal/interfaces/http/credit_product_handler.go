package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
)

// CreditProductHandler maneja las peticiones HTTP para CreditProduct.
type CreditProductHandler struct {
	uc      *usecase.CreditProductUseCase
	sheetUC *usecase.RateSheetUseCase
}

// NewCreditProductHandler construye el handler.
func NewCreditProductHandler(uc *usecase.CreditProductUseCase, sheetUC *usecase.RateSheetUseCase) *CreditProductHandler {
	return &CreditProductHandler{uc: uc, sheetUC: sheetUC}
}

// Create godoc
// @Summary      Crear producto de crédito
// @Tags         credit-products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCreditProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.CreditProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit-products [post]
func (h *CreditProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCreditProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto de crédito
// @Tags         credit-products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateCreditProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.CreditProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id} [put]
func (h *CreditProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCreditProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto de crédito por ID
// @Tags         credit-products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.CreditProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id} [get]
func (h *CreditProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByCode godoc
// @Summary      Obtener producto de crédito por código
// @Tags         credit-products
// @Produce      json
// @Param        code  path  string  true  "Código del producto"
// @Success      200   {object}  dto.CreditProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit-products/code/{code} [get]
func (h *CreditProductHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListActive godoc
// @Summary      Listar productos de crédito activos
// @Tags         credit-products
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.CreditProductResponse]
// @Router       /api/credit-products/active [get]
func (h *CreditProductHandler) ListActive(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RateSheet godoc
// @Summary      Descargar hoja de tasas en PDF
// @Tags         credit-products
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id}/rate-sheet [get]
func (h *CreditProductHandler) RateSheet(c *fiber.Ctx) error {
	pdf, filename, err := h.sheetUC.Generate(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+strconv.Quote(filename))
	return c.Send(pdf)
}
