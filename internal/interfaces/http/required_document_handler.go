package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
)

// RequiredDocumentHandler maneja las peticiones HTTP para RequiredDocument.
type RequiredDocumentHandler struct {
	uc *usecase.RequiredDocumentUseCase
}

// NewRequiredDocumentHandler construye el handler.
func NewRequiredDocumentHandler(uc *usecase.RequiredDocumentUseCase) *RequiredDocumentHandler {
	return &RequiredDocumentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar documento requerido
// @Tags         required-documents
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequiredDocumentRequest  true  "Datos del documento"
// @Success      201   {object}  dto.RequiredDocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/required-documents [post]
func (h *RequiredDocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequiredDocumentRequest
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
// @Summary      Actualizar documento requerido
// @Tags         required-documents
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.UpdateRequiredDocumentRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.RequiredDocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/required-documents/{id} [put]
func (h *RequiredDocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRequiredDocumentRequest
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
// @Summary      Obtener documento requerido por ID
// @Tags         required-documents
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.RequiredDocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/required-documents/{id} [get]
func (h *RequiredDocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Listar documentos requeridos activos de un producto
// @Tags         required-documents
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ListResponse[dto.RequiredDocumentResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit-products/{id}/required-documents [get]
func (h *RequiredDocumentHandler) ListByProduct(c *fiber.Ctx) error {
	out, err := h.uc.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
