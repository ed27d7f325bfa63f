package dto

import (
	"time"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// CreateRequiredDocumentRequest entrada para registrar un documento requerido.
type CreateRequiredDocumentRequest struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Extension   string `json:"extension"`
	Status      string `json:"status"`
}

// UpdateRequiredDocumentRequest actualización parcial; los campos nil no cambian.
type UpdateRequiredDocumentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Extension   *string `json:"extension"`
	Status      *string `json:"status"`
	Version     *int64  `json:"version"`
}

// RequiredDocumentResponse salida de un documento requerido.
type RequiredDocumentResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Extension   string    `json:"extension"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToRequiredDocumentResponse mapea la entidad a su representación HTTP.
func ToRequiredDocumentResponse(d *entity.RequiredDocument) RequiredDocumentResponse {
	return RequiredDocumentResponse{
		ID:          d.ID,
		ProductID:   d.ProductID,
		Name:        d.Name,
		Description: d.Description,
		Extension:   d.Extension,
		Status:      string(d.Status),
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
