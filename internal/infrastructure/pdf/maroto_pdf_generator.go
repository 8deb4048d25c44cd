// Package pdf implementa el reporte del historial de traslados en PDF.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + empresa    │  Fecha + generado por        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FILTROS: tipo / ubicación / código / rango de fechas        │
//	│  RESUMEN: pendientes / aprobados / rechazados / fallidos     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Código | Cant | Origen | Destino ...  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de registros (+ aviso si se truncó)           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/report"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorReject  = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.TransferHistoryPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa report.TransferHistoryPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateTransferHistoryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTransferHistoryPDF(_ context.Context, rep report.TransferHistoryReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Historial de traslados", true).
		WithAuthor(nonEmpty(rep.GeneratedBy.Name, rep.GeneratedBy.Email), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(filtersRow(rep.Filters))
	m.AddRows(summaryRow(rep.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(rep.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep report.TransferHistoryReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("HISTORIAL DE TRASLADOS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+rep.CompanyID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Por: "+nonEmpty(rep.GeneratedBy.Name, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func filtersRow(f dto.TransferHistoryQuery) core.Row {
	from, to := "-", "-"
	if f.From != nil {
		from = f.From.Format("02/01/2006")
	}
	if f.To != nil {
		to = f.To.Format("02/01/2006")
	}
	return row.New(10).Add(col.New(12).Add(
		text.New("FILTROS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(fmt.Sprintf("Tipo: %s   |   Ubicación: %s   |   Código: %s   |   Desde: %s   |   Hasta: %s",
			typeLabel(f.Type),
			nonEmpty(f.Location, "todas"),
			nonEmpty(f.ItemCode, "todos"),
			from, to,
		), props.Text{Size: 8, Top: 5, Color: colorGray}),
	))
}

func summaryRow(s dto.TransferSummaryResponse) core.Row {
	cell := func(label string, n int) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Align: align.Center, Top: 1}),
			text.New(strconv.Itoa(n), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 5}),
		)
	}
	return row.New(13).Add(
		cell("Pendientes", s.Pending),
		cell("Auto-aprobables", s.EligibleForAuto),
		cell("Aprobados", s.Approved),
		cell("Rechazados", s.Rejected),
		cell("Fallidos", s.Failed),
		cell("Umbral auto", s.AutoApproveBelow),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Código", 2, align.Left),
		h("Cant.", 1, align.Right),
		h("Origen (antes->después)", 2, align.Left),
		h("Destino (antes->después)", 2, align.Left),
		h("Responsable / motivo", 2, align.Left),
	)
}

func tableRows(items []dto.StockTransferResponse) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, t := range items {
		txt := props.Text{Size: 7.5, Top: 1, Left: 1}
		if t.Type != entity.TransferTypeApproved {
			txt.Color = colorReject
		}
		right := txt
		right.Align = align.Right
		right.Right = 1

		who := nonEmpty(t.TransferredBy.Name, t.TransferredBy.Email)
		if t.Reason != "" {
			who += " / " + t.Reason
		}
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(t.TransferredAt.Format("02/01/2006 15:04"), txt)),
			col.New(1).Add(text.New(typeLabel(t.Type), txt)),
			col.New(2).Add(text.New(t.ItemCode, txt)),
			col.New(1).Add(text.New(strconv.Itoa(t.Quantity), right)),
			col.New(2).Add(text.New(locationCell(t.FromLocation, t.SourceStockBefore, t.SourceStockAfter, t.Type), txt)),
			col.New(2).Add(text.New(locationCell(t.ToLocation, t.DestinationStockBefore, t.DestinationStockAfter, t.Type), txt)),
			col.New(2).Add(text.New(who, txt)),
		))
	}
	return rows
}

func footerRow(rep report.TransferHistoryReport) core.Row {
	msg := fmt.Sprintf("Total de registros: %d", len(rep.Items))
	if rep.Truncated {
		msg += fmt.Sprintf(" (limitado a %d; refine los filtros para ver el resto)", report.MaxReportRows)
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 7.5, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func typeLabel(t string) string {
	switch t {
	case entity.TransferTypeApproved:
		return "Aprobado"
	case entity.TransferTypeRejected:
		return "Rechazado"
	case entity.TransferTypeFailed:
		return "Fallido"
	case "":
		return "todos"
	default:
		return t
	}
}

// locationCell "Zomba 10->7"; los rechazos no movieron stock, solo se muestra la ubicación.
func locationCell(loc string, before, after int, kind string) string {
	if kind != entity.TransferTypeApproved {
		return loc
	}
	return fmt.Sprintf("%s %d->%d", loc, before, after)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
