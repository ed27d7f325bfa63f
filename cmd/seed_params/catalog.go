package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/parametros-credito/internal/application/dto"
	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/memory"
)

// catalogo formato XML del catálogo heredado de productos.
type catalogo struct {
	Productos []producto `xml:"producto"`
}

type producto struct {
	Codigo         string      `xml:"codigo,attr"`
	Nombre         string      `xml:"nombre,attr"`
	Descripcion    string      `xml:"descripcion,attr"`
	MontoMin       string      `xml:"montoMin,attr"`
	MontoMax       string      `xml:"montoMax,attr"`
	PlazoMin       int         `xml:"plazoMin,attr"`
	PlazoMax       int         `xml:"plazoMax,attr"`
	Financiamiento string      `xml:"financiamiento,attr"`
	Condicion      string      `xml:"condicion,attr"`
	Estado         string      `xml:"estado,attr"`
	Tasas          []tasa      `xml:"tasa"`
	Documentos     []documento `xml:"documento"`
}

type tasa struct {
	Valor          string `xml:"valor,attr"`
	Base           string `xml:"base,attr"`
	Metodo         string `xml:"metodo,attr"`
	Capitalizacion string `xml:"capitalizacion,attr"`
	Desde          string `xml:"desde,attr"`
	Hasta          string `xml:"hasta,attr"`
	Estado         string `xml:"estado,attr"`
}

type documento struct {
	Nombre      string `xml:"nombre,attr"`
	Descripcion string `xml:"descripcion,attr"`
	Extension   string `xml:"extension,attr"`
	Estado      string `xml:"estado,attr"`
}

// decodeCatalog lee el XML; el catálogo heredado viene en ISO-8859-1.
func decodeCatalog(r io.Reader) (*catalogo, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252", "CP1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decodificar XML: %w", err)
	}
	return &c, nil
}

// seedResult contenido validado listo para volcar a SQL.
type seedResult struct {
	Products  []*entity.CreditProduct
	Rates     map[string][]*entity.InterestRate // por ID de producto, StartDate ascendente
	Documents map[string][]*entity.RequiredDocument
}

// loadCatalog pasa el catálogo por los mismos casos de uso que la API sobre un almacenamiento
// en memoria: alias normalizados, rangos validados y tasas abiertas cerradas al registrar la siguiente.
func loadCatalog(ctx context.Context, c *catalogo, log zerolog.Logger) (*seedResult, error) {
	store := memory.NewStore()
	productRepo := memory.NewCreditProductRepository(store)
	rateRepo := memory.NewInterestRateRepository(store)
	docRepo := memory.NewRequiredDocumentRepository(store)

	productUC := usecase.NewCreditProductUseCase(productRepo)
	documentUC := usecase.NewRequiredDocumentUseCase(docRepo, productRepo)
	rateUC := rates.NewRateLifecycleUseCase(memory.NewTxRunner(store), rateRepo, productRepo, nil, log, nil)

	res := &seedResult{
		Rates:     make(map[string][]*entity.InterestRate),
		Documents: make(map[string][]*entity.RequiredDocument),
	}
	for _, p := range c.Productos {
		created, err := productUC.Create(ctx, dto.CreateCreditProductRequest{
			Code:             p.Codigo,
			Name:             p.Nombre,
			Description:      p.Descripcion,
			AmountMin:        parseDecimal(p.MontoMin),
			AmountMax:        parseDecimal(p.MontoMax),
			TermMinMonths:    p.PlazoMin,
			TermMaxMonths:    p.PlazoMax,
			MaxFinancingPct:  parseDecimal(p.Financiamiento),
			VehicleCondition: p.Condicion,
			Status:           p.Estado,
		})
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", p.Codigo, err)
		}

		// Orden cronológico: cada tasa abierta se cierra al registrar la siguiente.
		tasas := append([]tasa(nil), p.Tasas...)
		sort.SliceStable(tasas, func(i, j int) bool { return tasas[i].Desde < tasas[j].Desde })
		for _, t := range tasas {
			req := dto.InterestRateRequest{
				ProductID:               created.ID,
				CalculationBasis:        t.Base,
				CalculationMethod:       t.Metodo,
				CapitalizationFrequency: t.Capitalizacion,
				Value:                   parseDecimal(t.Valor),
				StartDate:               t.Desde,
				Status:                  t.Estado,
			}
			if strings.TrimSpace(t.Hasta) != "" {
				hasta := t.Hasta
				req.EndDate = &hasta
			}
			in, err := req.ToInput()
			if err != nil {
				return nil, fmt.Errorf("producto %s, tasa desde %s: %w", p.Codigo, t.Desde, err)
			}
			if _, err := rateUC.Create(ctx, in); err != nil {
				return nil, fmt.Errorf("producto %s, tasa desde %s: %w", p.Codigo, t.Desde, err)
			}
		}

		for _, d := range p.Documentos {
			if _, err := documentUC.Create(ctx, dto.CreateRequiredDocumentRequest{
				ProductID:   created.ID,
				Name:        d.Nombre,
				Description: d.Descripcion,
				Extension:   d.Extension,
				Status:      d.Estado,
			}); err != nil {
				return nil, fmt.Errorf("producto %s, documento %q: %w", p.Codigo, d.Nombre, err)
			}
		}
	}

	for _, status := range []entity.Status{entity.StatusActive, entity.StatusInactive} {
		list, err := productRepo.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		res.Products = append(res.Products, list...)
	}
	sort.Slice(res.Products, func(i, j int) bool { return res.Products[i].Code < res.Products[j].Code })
	for _, p := range res.Products {
		list, err := rateRepo.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
		res.Rates[p.ID] = list

		docs, err := docRepo.ListByProduct(ctx, p.ID, "")
		if err != nil {
			return nil, err
		}
		res.Documents[p.ID] = docs
	}
	return res, nil
}

// parseDecimal acepta coma decimal del catálogo heredado; texto inválido queda en cero
// y lo rechaza la validación de rangos.
func parseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// writeSQL vuelca el resultado como script idempotente: los productos se resuelven por código
// y las filas que chocan con datos existentes se omiten.
func writeSQL(w io.Writer, res *seedResult, source string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Catálogo inicial de productos de crédito vehicular\n-- Generado desde %s\n\n", source)

	b.WriteString("-- 1. Productos\n")
	for _, p := range res.Products {
		fmt.Fprintf(&b, "INSERT INTO credit_products (id, code, name, description, amount_min, amount_max, term_min_months, term_max_months, max_financing_pct, vehicle_condition, status)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s, %s, %d, %d, %s, '%s', '%s')\n",
			p.ID, escapeSQL(p.Code), escapeSQL(p.Name), escapeSQL(p.Description),
			p.AmountMin.String(), p.AmountMax.String(), p.TermMinMonths, p.TermMaxMonths,
			p.MaxFinancingPct.String(), p.VehicleCondition, p.Status)
		b.WriteString("ON CONFLICT (code) DO NOTHING;\n")
	}

	b.WriteString("\n-- 2. Tasas de interés\n")
	for _, p := range res.Products {
		for _, r := range res.Rates[p.ID] {
			end := "NULL"
			if r.EndDate != nil {
				end = fmt.Sprintf("DATE '%s'", r.EndDate.String())
			}
			b.WriteString("INSERT INTO interest_rates (id, product_id, calculation_basis, calculation_method, capitalization_frequency, value, start_date, end_date, status)\n")
			fmt.Fprintf(&b, "SELECT '%s', id, '%s', '%s', '%s', %s, DATE '%s', %s, '%s' FROM credit_products WHERE code = '%s'\n",
				r.ID, r.CalculationBasis, r.CalculationMethod, r.CapitalizationFrequency,
				r.Value.String(), r.StartDate.String(), end, r.Status, escapeSQL(p.Code))
			b.WriteString("ON CONFLICT DO NOTHING;\n")
		}
	}

	b.WriteString("\n-- 3. Documentos requeridos\n")
	for _, p := range res.Products {
		for _, d := range res.Documents[p.ID] {
			b.WriteString("INSERT INTO required_documents (id, product_id, name, name_key, description, extension, status)\n")
			fmt.Fprintf(&b, "SELECT '%s', id, '%s', '%s', '%s', '%s', '%s' FROM credit_products WHERE code = '%s'\n",
				d.ID, escapeSQL(d.Name), escapeSQL(d.NameKey()), escapeSQL(d.Description),
				d.Extension, d.Status, escapeSQL(p.Code))
			b.WriteString("ON CONFLICT DO NOTHING;\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
