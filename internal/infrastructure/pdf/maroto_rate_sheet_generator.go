// Package pdf genera la hoja de tasas de un producto de crédito vehicular.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre + Código      │  Fecha de corte             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONDICIONES: Montos / Plazos / Financiamiento / Vehículo    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Desde | Hasta | Tasa | Base | Método | Cap. | Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DOCUMENTOS REQUERIDOS                                       │
//	│  FOOTER: QR de verificación + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/parametros-credito/internal/application/usecase"
	"github.com/jhoicas/parametros-credito/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAccent  = &props.Color{Red: 0, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ usecase.RateSheetGenerator = (*MarotoRateSheetGenerator)(nil)

// MarotoRateSheetGenerator implementa usecase.RateSheetGenerator usando Maroto v2.
type MarotoRateSheetGenerator struct {
	author string
}

// NewMarotoRateSheetGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoRateSheetGenerator(author string) *MarotoRateSheetGenerator {
	return &MarotoRateSheetGenerator{author: author}
}

// GenerateRateSheet genera el PDF y devuelve sus bytes.
func (g *MarotoRateSheetGenerator) GenerateRateSheet(_ context.Context, sheet usecase.RateSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de tasas "+sheet.Product.Code, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(conditionsRow(sheet.Product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("TASAS DE INTERÉS"))
	m.AddRows(tableHeaderRow())
	if len(sheet.Rates) == 0 {
		m.AddRows(row.New(7).Add(col.New(12).Add(
			text.New("Sin tasas registradas.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}
	currentID := ""
	if sheet.Current != nil {
		currentID = sheet.Current.ID
	}
	m.AddRows(rateRows(sheet.Rates, currentID)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("DOCUMENTOS REQUERIDOS"))
	m.AddRows(documentRows(sheet.Documents)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sheet))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(sheet usecase.RateSheet) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(sheet.Product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Código: "+sheet.Product.Code, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("HOJA DE TASAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+formatDate(sheet.GeneratedOn.String()), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func conditionsRow(p *entity.CreditProduct) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CONDICIONES DEL PRODUCTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Monto: $%s a $%s   |   Plazo: %d a %d meses   |   Financiamiento máx.: %s%%   |   Vehículo: %s",
				formatMoney(p.AmountMin.StringFixed(0)),
				formatMoney(p.AmountMax.StringFixed(0)),
				p.TermMinMonths, p.TermMaxMonths,
				p.MaxFinancingPct.StringFixed(0),
				conditionLabel(p.VehicleCondition),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Desde", 2, align.Left),
		h("Hasta", 2, align.Left),
		h("Tasa", 2, align.Right),
		h("Base", 1, align.Center),
		h("Método", 2, align.Center),
		h("Capitaliz.", 2, align.Center),
		h("Estado", 1, align.Center),
	)
}

// rateRows: una fila por tasa; la vigente a la fecha de corte se resalta.
func rateRows(list []*entity.InterestRate, currentID string) []core.Row {
	result := make([]core.Row, 0, len(list))
	for _, r := range list {
		style := props.Text{Size: 8, Top: 1}
		if r.ID == currentID {
			style.Style = fontstyle.Bold
			style.Color = colorAccent
		}
		cell := func(s string, size int, a align.Type) core.Col {
			st := style
			st.Align = a
			st.Left, st.Right = 1, 1
			return col.New(size).Add(text.New(s, st))
		}
		end := "Indefinida"
		if r.EndDate != nil {
			end = formatDate(r.EndDate.String())
		}
		result = append(result, row.New(7).Add(
			cell(formatDate(r.StartDate.String()), 2, align.Left),
			cell(end, 2, align.Left),
			cell(r.Value.StringFixed(2)+"%", 2, align.Right),
			cell(string(r.CalculationBasis), 1, align.Center),
			cell(methodLabel(r.CalculationMethod), 2, align.Center),
			cell(frequencyLabel(r.CapitalizationFrequency), 2, align.Center),
			cell(statusLabel(r.Status), 1, align.Center),
		))
	}
	return result
}

func documentRows(docs []*entity.RequiredDocument) []core.Row {
	if len(docs) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("No se requieren documentos.", props.Text{Size: 8, Top: 1, Color: colorGray}),
		))}
	}
	rows := make([]core.Row, 0, len(docs))
	for _, d := range docs {
		label := fmt.Sprintf("• %s (%s)", d.Name, d.Extension)
		if d.Description != "" {
			label += ": " + d.Description
		}
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(label, props.Text{Size: 8, Top: 1, Left: 2}),
		)))
	}
	return rows
}

// footerRow: QR con código de producto, fecha de corte y tasa vigente.
func footerRow(sheet usecase.RateSheet) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(verificationCode(sheet), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(currentLabel(sheet), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 4, Left: 3, Color: colorPrimary,
			}),
			text.New("Las tasas se expresan como porcentaje anual. La tasa aplicable es la vigente "+
				"a la fecha de desembolso del crédito.", props.Text{Size: 7, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func verificationCode(sheet usecase.RateSheet) string {
	parts := []string{sheet.Product.Code, sheet.GeneratedOn.String()}
	if sheet.Current != nil {
		parts = append(parts, sheet.Current.Value.StringFixed(2))
	}
	return strings.Join(parts, "|")
}

func currentLabel(sheet usecase.RateSheet) string {
	if sheet.Current == nil {
		return "Sin tasa vigente a la fecha de corte"
	}
	return "Tasa vigente: " + sheet.Current.Value.StringFixed(2) + "%"
}

// formatDate convierte AAAA-MM-DD a DD/MM/AAAA.
func formatDate(iso string) string {
	p := strings.Split(iso, "-")
	if len(p) != 3 {
		return iso
	}
	return p[2] + "/" + p[1] + "/" + p[0]
}

func conditionLabel(c entity.VehicleCondition) string {
	switch c {
	case entity.VehicleNew:
		return "Nuevo"
	case entity.VehicleSemiNew:
		return "Seminuevo"
	case entity.VehicleUsed:
		return "Usado"
	}
	return string(c)
}

func methodLabel(m entity.CalculationMethod) string {
	if m == entity.MethodCompound {
		return "Compuesto"
	}
	return "Simple"
}

func frequencyLabel(f entity.CapitalizationFrequency) string {
	if f == entity.FrequencyAnnual {
		return "Anual"
	}
	return "Mensual"
}

func statusLabel(s entity.Status) string {
	if s == entity.StatusActive {
		return "Activa"
	}
	return "Inactiva"
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
