package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
	"github.com/jhoicas/parametros-credito/internal/domain"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/memory"
)

func newDocumentFixture(t *testing.T) (*usecase.RequiredDocumentUseCase, string) {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewCreditProductRepository(store)
	product, err := usecase.NewCreditProductUseCase(products).Create(context.Background(), validProductRequest())
	require.NoError(t, err)
	return usecase.NewRequiredDocumentUseCase(memory.NewRequiredDocumentRepository(store), products), product.ID
}

func TestRequiredDocumentCreate(t *testing.T) {
	uc, productID := newDocumentFixture(t)
	resp, err := uc.Create(context.Background(), dto.CreateRequiredDocumentRequest{
		ProductID: productID, Name: "Cédula de identidad", Extension: "PDF",
	})
	require.NoError(t, err)
	assert.Equal(t, ".pdf", resp.Extension)
	assert.Equal(t, "ACTIVE", resp.Status)
}

func TestRequiredDocumentCreate_Validaciones(t *testing.T) {
	uc, productID := newDocumentFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: "no-existe", Name: "Rol de pagos", Extension: ".pdf"})
	assertValidation(t, err, "product_id", domain.CodeUnknownProduct)

	_, err = uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "RP", Extension: ".pdf"})
	assertValidation(t, err, "name", domain.CodeInvalidValue)

	_, err = uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "Rol de pagos", Extension: ".docx"})
	assertValidation(t, err, "extension", domain.CodeInvalidValue)

	_, err = uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "Rol de pagos"})
	assertValidation(t, err, "extension", domain.CodeRequired)
}

func TestRequiredDocumentCreate_NombreDuplicadoSinDistinguirMayusculasNiForma(t *testing.T) {
	uc, productID := newDocumentFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "Cédula", Extension: ".pdf"})
	require.NoError(t, err)

	// E + U+0301: forma descompuesta de la É.
	_, err = uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "CE\u0301DULA", Extension: ".png"})
	assertValidation(t, err, "name", domain.CodeDuplicate)
}

func TestRequiredDocumentListByProduct_SoloActivosPorNombre(t *testing.T) {
	uc, productID := newDocumentFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Rol de pagos", "Cédula", "Licencia de conducir"} {
		_, err := uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: name, Extension: ".pdf"})
		require.NoError(t, err)
	}
	old, err := uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "Planilla de luz", Extension: ".jpg"})
	require.NoError(t, err)
	inactive := "INACTIVE"
	_, err = uc.Update(ctx, old.ID, dto.UpdateRequiredDocumentRequest{Status: &inactive})
	require.NoError(t, err)

	list, err := uc.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 3, list.Total)
	assert.Equal(t, "Cédula", list.Items[0].Name)
	assert.Equal(t, "Licencia de conducir", list.Items[1].Name)
	assert.Equal(t, "Rol de pagos", list.Items[2].Name)

	_, err = uc.ListByProduct(ctx, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequiredDocumentUpdate(t *testing.T) {
	uc, productID := newDocumentFixture(t)
	ctx := context.Background()
	doc, err := uc.Create(ctx, dto.CreateRequiredDocumentRequest{ProductID: productID, Name: "Cédula", Extension: ".pdf"})
	require.NoError(t, err)

	ext := "jpeg"
	updated, err := uc.Update(ctx, doc.ID, dto.UpdateRequiredDocumentRequest{Extension: &ext, Version: &doc.Version})
	require.NoError(t, err)
	assert.Equal(t, ".jpeg", updated.Extension)
	assert.Equal(t, int64(2), updated.Version)

	_, err = uc.Update(ctx, doc.ID, dto.UpdateRequiredDocumentRequest{Extension: &ext, Version: &doc.Version})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.GetByID(ctx, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
