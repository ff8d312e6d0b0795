// Package pdf genera la hoja de costo en destino de un embarque.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del embarque + ID  │  Estado + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PARÁMETROS: método / monedas / tasa de cambio               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Cant | Costo | % | Asignado | Landed | Unit   │
//	│  COSTOS COMPARTIDOS: categoría | descripción | monto         │
//	│  DESGLOSE: ítem | categoría | monto asignado | manual        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: base / compartidos / landed / landed referencia    │
//	│  FOOTER: QR con ID y total                                   │
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// LandedCostSheet genera la hoja de costo en destino con Maroto v2.
type LandedCostSheet struct {
	Company string // encabezado del documento
}

// NewLandedCostSheet construye el generador.
func NewLandedCostSheet(company string) *LandedCostSheet {
	return &LandedCostSheet{Company: company}
}

// Render genera el PDF del embarque y devuelve sus bytes.
func (g *LandedCostSheet) Render(_ context.Context, s *entity.Shipment) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Landed cost - "+s.Name, true).
		WithAuthor(nonEmpty(g.Company, "Landed Cost API"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.Company, s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(parametersRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(s)...)

	if len(s.SharedCosts) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(sharedCostRows(s)...)
	}

	breakdowns, err := landedcost.ItemBreakdowns(s)
	if err != nil {
		return nil, fmt.Errorf("pdf: desglose por categoría: %w", err)
	}
	if rows := breakdownRows(s, breakdowns); len(rows) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(rows...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(s))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company string, s *entity.Shipment) core.Row {
	status := "BORRADOR"
	if s.IsFinalized {
		status = "FINALIZADO"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "Landed Cost"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(s.Name, props.Text{Size: 10, Top: 8, Style: fontstyle.Bold}),
			text.New("ID: "+s.ID, props.Text{Size: 7, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("HOJA DE COSTO EN DESTINO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(status, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+s.ShipmentDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func parametersRow(s *entity.Shipment) core.Row {
	calculated := "sin cálculo vigente"
	if s.CalculatedAt != nil {
		calculated = "calculado " + s.CalculatedAt.Format("02/01/2006 15:04")
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("PARÁMETROS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Método: %s   |   Moneda base: %s   |   Referencia: %s   |   Tasa: %s %s = 1 %s   |   %s",
				methodLabel(s.CalculationMethod), s.BaseCurrency, s.ReferenceCurrency,
				s.ExchangeRate.String(), s.BaseCurrency, s.ReferenceCurrency, calculated,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// itemsHeaderRow: cabecera de la tabla de ítems.
func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ítem", 3, align.Left),
		h("Cant.", 1, align.Center),
		h("Costo", 2, align.Right),
		h("%", 1, align.Right),
		h("Asignado", 2, align.Right),
		h("Landed", 2, align.Right),
		h("Unit.", 1, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func itemRows(s *entity.Shipment) []core.Row {
	cell := func(v string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(v, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	rows := make([]core.Row, 0, len(s.Items))
	for _, it := range s.Items {
		name := it.ItemName
		share := FormatAmount(it.PercentageShare.Mul(decimal.NewFromInt(100)), 2) + "%"
		if it.IsOverridden() {
			name += " (manual)"
			share = "—"
		}
		rows = append(rows, row.New(7).Add(
			cell(name, 3, align.Left),
			cell(it.Quantity.String(), 1, align.Center),
			cell(formatMoney(it.TotalItemCost), 2, align.Right),
			cell(share, 1, align.Right),
			cell(formatMoney(it.AllocatedSharedCost), 2, align.Right),
			cell(formatMoney(it.TotalLandedCost), 2, align.Right),
			cell(formatMoney(it.LandedCostPerUnit), 1, align.Right),
		))
	}
	return rows
}

func sharedCostRows(s *entity.Shipment) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("COSTOS COMPARTIDOS", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, c := range s.SharedCosts {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(c.ExpenseCategoryID, props.Text{Size: 8, Left: 1})),
			col.New(6).Add(text.New(nonEmpty(c.Description, "—"), props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(formatMoney(c.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// breakdownRows: lo asignado a cada ítem por categoría de gasto. Vacío si no hay nada asignado.
func breakdownRows(s *entity.Shipment, breakdowns [][]landedcost.CostShare) []core.Row {
	var rows []core.Row
	for i, shares := range breakdowns {
		for _, cs := range shares {
			if rows == nil {
				rows = append(rows, row.New(6).Add(col.New(12).Add(text.New("DESGLOSE POR CATEGORÍA", props.Text{
					Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
				}))))
			}
			kind := "reparto"
			if cs.Manual {
				kind = "manual"
			}
			rows = append(rows, row.New(5).Add(
				col.New(4).Add(text.New(s.Items[i].ItemName, props.Text{Size: 8, Left: 1})),
				col.New(3).Add(text.New(cs.ExpenseCategoryID, props.Text{Size: 8})),
				col.New(3).Add(text.New(formatMoney(cs.Amount), props.Text{Size: 8, Align: align.Right})),
				col.New(2).Add(text.New(kind, props.Text{Size: 8, Align: align.Right, Color: colorGray, Right: 1})),
			))
		}
	}
	return rows
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(s *entity.Shipment) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1})
	}

	reference := "—"
	if conv, err := s.Converter(); err == nil {
		if ref, err := conv.ToReference(s.TotalLandedCost); err == nil {
			reference = formatMoney(ref)
		}
	}
	return row.New(30).Add(
		col.New(4),
		col.New(4).Add(
			label("Costo base:"),
			label("Costos compartidos:"),
			label("COSTO EN DESTINO:"),
			label("En moneda de referencia:"),
		),
		col.New(4).Add(
			value(formatMoney(s.TotalBaseCost)),
			value(formatMoney(s.TotalSharedCost)),
			grand(formatMoney(s.TotalLandedCost)),
			value(reference),
		),
	)
}

func footerRow(s *entity.Shipment) core.Row {
	payload := strings.Join([]string{s.ID, s.TotalLandedCost.RoundToMinor().String()}, "|")
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(payload, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Los costos compartidos se reparten según el método indicado; el redondeo se concilia "+
				"en el ítem de mayor participación para que los totales cuadren al centavo.", props.Text{
				Size: 7, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func methodLabel(m entity.CalculationMethod) string {
	switch m {
	case entity.MethodProportional:
		return "Proporcional al valor"
	case entity.MethodEqual:
		return "Partes iguales"
	case entity.MethodWeightBased:
		return "Por peso"
	case entity.MethodQuantityBased:
		return "Por cantidad"
	}
	return string(m)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatMoney(m money.Money) string {
	return FormatAmount(m.Amount, money.MinorUnits(m.Currency)) + " " + m.Currency
}

// FormatAmount fija places decimales e inserta comas de miles.
// Ej: 1234567.891 con 2 → "1,234,567.89".
func FormatAmount(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + frac
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + frac
}
