package repository

import (
	"context"

	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// RequiredDocumentRepository define el puerto de persistencia para RequiredDocument.
type RequiredDocumentRepository interface {
	Create(ctx context.Context, doc *entity.RequiredDocument) error
	Update(ctx context.Context, doc *entity.RequiredDocument) error
	GetByID(ctx context.Context, id string) (*entity.RequiredDocument, error)
	// ListByProduct devuelve los documentos del producto ordenados por nombre; status vacío = todos.
	ListByProduct(ctx context.Context, productID string, status entity.Status) ([]*entity.RequiredDocument, error)
}
