package labels

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Renderer convierte una etiqueta al lenguaje de la impresora.
type Renderer interface {
	Render(l entity.Label) (entity.LabelJob, error)
}

// Printer envía un trabajo renderizado al dispositivo.
type Printer interface {
	Send(ctx context.Context, job entity.LabelJob) error
}

// PDFGenerator genera la vista previa PDF de una etiqueta.
type PDFGenerator interface {
	GenerateLabelPDF(ctx context.Context, l entity.Label) ([]byte, error)
}
