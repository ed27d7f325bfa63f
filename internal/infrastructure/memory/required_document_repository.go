package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ repository.RequiredDocumentRepository = (*RequiredDocumentRepo)(nil)

// RequiredDocumentRepo documentos requeridos en memoria.
type RequiredDocumentRepo struct {
	s *Store
}

// NewRequiredDocumentRepository construye el repositorio.
func NewRequiredDocumentRepository(s *Store) *RequiredDocumentRepo {
	return &RequiredDocumentRepo{s: s}
}

func cloneDocument(d *entity.RequiredDocument) *entity.RequiredDocument {
	c := *d
	return &c
}

// Create persiste el documento; el nombre es único por producto.
func (r *RequiredDocumentRepo) Create(_ context.Context, doc *entity.RequiredDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(doc) {
		return domain.ErrDuplicate
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	r.s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

// Update aplica bloqueo optimista sobre Version.
func (r *RequiredDocumentRepo) Update(_ context.Context, doc *entity.RequiredDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return domain.NewConflictError(domain.EntityRequiredDocument, doc.ID, "el documento fue modificado por otra operación")
	}
	if r.nameTaken(doc) {
		return domain.ErrDuplicate
	}
	doc.Version++
	r.s.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *RequiredDocumentRepo) nameTaken(doc *entity.RequiredDocument) bool {
	for _, d := range r.s.docs {
		if d.ID != doc.ID && d.ProductID == doc.ProductID && d.NameKey() == doc.NameKey() {
			return true
		}
	}
	return false
}

// GetByID devuelve (nil, nil) si no existe.
func (r *RequiredDocumentRepo) GetByID(_ context.Context, id string) (*entity.RequiredDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	return cloneDocument(d), nil
}

// ListByProduct documentos del producto ordenados por nombre; status vacío = todos.
func (r *RequiredDocumentRepo) ListByProduct(_ context.Context, productID string, status entity.Status) ([]*entity.RequiredDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.RequiredDocument
	for _, d := range r.s.docs {
		if d.ProductID == productID && (status == "" || d.Status == status) {
			list = append(list, cloneDocument(d))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].NameKey() < list[j].NameKey() })
	return list, nil
}
