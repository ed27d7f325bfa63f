package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var allowedExtensions = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

// RequiredDocumentUseCase documentos que cada producto exige al solicitante.
type RequiredDocumentUseCase struct {
	docs     repository.RequiredDocumentRepository
	products repository.CreditProductRepository
	now      func() time.Time
}

// NewRequiredDocumentUseCase construye el caso de uso.
func NewRequiredDocumentUseCase(docs repository.RequiredDocumentRepository, products repository.CreditProductRepository) *RequiredDocumentUseCase {
	return &RequiredDocumentUseCase{docs: docs, products: products, now: time.Now}
}

// Create registra un documento para un producto existente.
func (uc *RequiredDocumentUseCase) Create(ctx context.Context, in dto.CreateRequiredDocumentRequest) (*dto.RequiredDocumentResponse, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.NewValidationError(domain.EntityRequiredDocument, "product_id", domain.CodeRequired,
			"el ID del producto de crédito es requerido")
	}
	exists, err := uc.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewValidationError(domain.EntityRequiredDocument, "product_id", domain.CodeUnknownProduct,
			"el producto de crédito no existe")
	}
	status := entity.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		if status, err = entity.ParseStatus(domain.EntityRequiredDocument, in.Status); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	doc := &entity.RequiredDocument{
		ID:          uuid.New().String(),
		ProductID:   productID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Extension:   normalizeExtension(in.Extension),
		Status:      status,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueName(ctx, doc); err != nil {
		return nil, err
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, duplicateName(err, doc.Name)
	}
	resp := dto.ToRequiredDocumentResponse(doc)
	return &resp, nil
}

// Update aplica los campos informados. El producto del documento no cambia.
func (uc *RequiredDocumentUseCase) Update(ctx context.Context, id string, in dto.UpdateRequiredDocumentRequest) (*dto.RequiredDocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NewNotFoundError(domain.EntityRequiredDocument, id)
	}
	if in.Version != nil && *in.Version != doc.Version {
		return nil, domain.NewConflictError(domain.EntityRequiredDocument, id, "la versión no coincide")
	}
	if in.Name != nil {
		doc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		doc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Extension != nil {
		doc.Extension = normalizeExtension(*in.Extension)
	}
	if in.Status != nil {
		if doc.Status, err = entity.ParseStatus(domain.EntityRequiredDocument, *in.Status); err != nil {
			return nil, err
		}
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueName(ctx, doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = uc.now()
	if err := uc.docs.Update(ctx, doc); err != nil {
		return nil, duplicateName(err, doc.Name)
	}
	resp := dto.ToRequiredDocumentResponse(doc)
	return &resp, nil
}

// GetByID obtiene un documento por ID.
func (uc *RequiredDocumentUseCase) GetByID(ctx context.Context, id string) (*dto.RequiredDocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NewNotFoundError(domain.EntityRequiredDocument, id)
	}
	resp := dto.ToRequiredDocumentResponse(doc)
	return &resp, nil
}

// ListByProduct lista los documentos ACTIVE del producto ordenados por nombre.
func (uc *RequiredDocumentUseCase) ListByProduct(ctx context.Context, productID string) (dto.ListResponse[dto.RequiredDocumentResponse], error) {
	var empty dto.ListResponse[dto.RequiredDocumentResponse]
	list, err := uc.activeDocuments(ctx, productID)
	if err != nil {
		return empty, err
	}
	items := make([]dto.RequiredDocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, dto.ToRequiredDocumentResponse(d))
	}
	return dto.NewListResponse(items), nil
}

func (uc *RequiredDocumentUseCase) activeDocuments(ctx context.Context, productID string) ([]*entity.RequiredDocument, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError(domain.EntityCreditProduct, productID)
	}
	return uc.docs.ListByProduct(ctx, productID, entity.StatusActive)
}

func (uc *RequiredDocumentUseCase) ensureUniqueName(ctx context.Context, doc *entity.RequiredDocument) error {
	siblings, err := uc.docs.ListByProduct(ctx, doc.ProductID, "")
	if err != nil {
		return err
	}
	for _, s := range siblings {
		if s.ID != doc.ID && s.NameKey() == doc.NameKey() {
			return duplicateName(domain.ErrDuplicate, doc.Name)
		}
	}
	return nil
}

func duplicateName(err error, name string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.NewValidationError(domain.EntityRequiredDocument, "name", domain.CodeDuplicate,
			"el producto ya tiene un documento llamado "+name)
	}
	return err
}

// normalizeExtension acepta "PDF", "pdf" o ".pdf".
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func validateDocument(d *entity.RequiredDocument) error {
	invalid := func(field, code, msg string) error {
		return domain.NewValidationError(domain.EntityRequiredDocument, field, code, msg)
	}
	switch n := utf8.RuneCountInString(d.Name); {
	case n == 0:
		return invalid("name", domain.CodeRequired, "el nombre del documento es requerido")
	case n < 3 || n > 100:
		return invalid("name", domain.CodeInvalidValue, "el nombre debe tener entre 3 y 100 caracteres")
	}
	if utf8.RuneCountInString(d.Description) > 255 {
		return invalid("description", domain.CodeInvalidValue, "la descripción no puede exceder 255 caracteres")
	}
	if d.Extension == "" {
		return invalid("extension", domain.CodeRequired, "la extensión es requerida")
	}
	if !allowedExtensions[d.Extension] {
		return invalid("extension", domain.CodeInvalidValue, "extensión no permitida: "+d.Extension)
	}
	return nil
}
