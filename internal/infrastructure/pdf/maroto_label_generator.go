// Package pdf genera la vista previa PDF de las etiquetas de lote.
//
// Layout de la etiqueta (75 x 50 mm, igual que el rollo de la Godex):
//
//	┌───────────────────────────────────────┐
//	│ Article Code: ...         ┌────────┐  │
//	│ Description: ...          │   QR   │  │
//	│ Supplier Batch: ...       │        │  │
//	│ GRN NO: ...               └────────┘  │
//	│ identificador                         │
//	└───────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Dimensiones de la etiqueta en milímetros.
const (
	labelWidth  = 75
	labelHeight = 50
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

var _ labels.PDFGenerator = (*MarotoLabelGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLabelGenerator implementa labels.PDFGenerator usando Maroto v2.
type MarotoLabelGenerator struct{}

// NewMarotoLabelGenerator construye el generador.
func NewMarotoLabelGenerator() *MarotoLabelGenerator { return &MarotoLabelGenerator{} }

// GenerateLabelPDF genera una página con la etiqueta y devuelve sus bytes.
func (g *MarotoLabelGenerator) GenerateLabelPDF(_ context.Context, l entity.Label) ([]byte, error) {
	if l.Identifier == "" {
		return nil, fmt.Errorf("pdf: etiqueta sin identificador")
	}
	cfg := config.NewBuilder().
		WithDimensions(labelWidth, labelHeight).
		WithLeftMargin(3).WithRightMargin(3).
		WithTopMargin(3).WithBottomMargin(1).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Etiqueta "+l.Identifier, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(bodyRow(l))
	m.AddRows(identifierRow(l.Identifier))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// bodyRow: los cuatro campos (izq) y el QR (der).
func bodyRow(l entity.Label) core.Row {
	fields := []struct{ title, value string }{
		{"Article Code", l.ArticleCode},
		{"Description", l.Description},
		{"Supplier Batch", l.SupplierBatch},
		{"GRN NO", l.GRNRef},
	}
	left := col.New(7)
	for i, f := range fields {
		left.Add(text.New(f.title+": "+nonEmpty(f.value, "-"), props.Text{
			Size: 7, Top: float64(i)*8 + 1, Style: styleFor(i),
		}))
	}

	return row.New(36).Add(
		left,
		col.New(5).Add(code.NewQr(l.Identifier, props.Rect{
			Percent: 100,
			Center:  true,
		})),
	)
}

func identifierRow(id string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(id, props.Text{
			Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: colorGray, Top: 1,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func styleFor(i int) fontstyle.Type {
	if i == 0 {
		return fontstyle.Bold
	}
	return fontstyle.Normal
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
