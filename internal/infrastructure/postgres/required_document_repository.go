package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
)

var _ repository.RequiredDocumentRepository = (*RequiredDocumentRepo)(nil)

// RequiredDocumentRepo implementación de RequiredDocumentRepository sobre PostgreSQL.
// La unicidad del nombre por producto se apoya en la columna name_key.
type RequiredDocumentRepo struct {
	q Querier
}

// NewRequiredDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequiredDocumentRepository(q Querier) *RequiredDocumentRepo {
	return &RequiredDocumentRepo{q: q}
}

const documentColumns = `id, product_id, name, description, extension, status, version, created_at, updated_at`

// Create persiste un documento. Nombre repetido en el producto devuelve domain.ErrDuplicate.
func (r *RequiredDocumentRepo) Create(ctx context.Context, doc *entity.RequiredDocument) error {
	if doc.Version == 0 {
		doc.Version = 1
	}
	query := `
		INSERT INTO required_documents (` + documentColumns + `, name_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.ProductID, doc.Name, doc.Description, doc.Extension, string(doc.Status), doc.Version,
		doc.CreatedAt, doc.UpdatedAt, doc.NameKey(),
	)
	return r.writeError("insert", err)
}

// Update actualiza el documento si la versión coincide.
func (r *RequiredDocumentRepo) Update(ctx context.Context, doc *entity.RequiredDocument) error {
	query := `
		UPDATE required_documents SET product_id = $3, name = $4, name_key = $5, description = $6,
			extension = $7, status = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, doc.Version, doc.ProductID, doc.Name, doc.NameKey(), doc.Description, doc.Extension,
		string(doc.Status), doc.UpdatedAt,
	)
	if err := r.writeError("update", err); err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewConflictError(domain.EntityRequiredDocument, doc.ID, "el documento fue modificado por otra operación")
	}
	doc.Version++
	return nil
}

func (r *RequiredDocumentRepo) writeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return unknownProduct(domain.EntityRequiredDocument)
	}
	return fmt.Errorf("%s required document: %w", op, err)
}

// GetByID obtiene un documento por ID. Devuelve (nil, nil) si no existe.
func (r *RequiredDocumentRepo) GetByID(ctx context.Context, id string) (*entity.RequiredDocument, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM required_documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get required document: %w", err)
	}
	return doc, nil
}

// ListByProduct lista los documentos del producto por nombre; status vacío = todos.
func (r *RequiredDocumentRepo) ListByProduct(ctx context.Context, productID string, status entity.Status) ([]*entity.RequiredDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM required_documents
		WHERE product_id = $1 AND ($2::text = '' OR status = $2::text) ORDER BY name_key, id`
	rows, err := r.q.Query(ctx, query, productID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list required documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.RequiredDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan required document: %w", err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

func scanDocument(row pgx.Row) (*entity.RequiredDocument, error) {
	var (
		doc entity.RequiredDocument
		st  string
	)
	if err := row.Scan(&doc.ID, &doc.ProductID, &doc.Name, &doc.Description, &doc.Extension, &st,
		&doc.Version, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Status = entity.Status(st)
	return &doc, nil
}
