package entity

import "time"

// RequiredDocument documento que el solicitante debe adjuntar para un producto.
type RequiredDocument struct {
	ID          string
	ProductID   string
	Name        string // único por producto
	Description string
	Extension   string // .pdf, .jpg, .jpeg, .png
	Status      Status
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NameKey clave de unicidad del nombre dentro del producto: NFC, sin distinción de mayúsculas
// y con espacios colapsados.
func (d *RequiredDocument) NameKey() string { return fold(d.Name) }
