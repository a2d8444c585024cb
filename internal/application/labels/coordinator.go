// Package labels coordina la impresión de etiquetas de lote. Los fallos de impresión
// nunca se propagan: el ledger es la fuente de verdad y la etiqueta se puede reimprimir.
package labels

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Report resultado de una tanda de copias.
type Report struct {
	Requested int
	Printed   int
	Failed    int
}

// Coordinator renderiza una vez y envía N copias.
type Coordinator struct {
	renderer Renderer
	printer  Printer
	recorder ports.Recorder
	log      *logger.Logger
}

// NewCoordinator construye el coordinador. recorder y log pueden ser nil.
func NewCoordinator(r Renderer, p Printer, rec ports.Recorder, log *logger.Logger) *Coordinator {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{renderer: r, printer: p, recorder: rec, log: log}
}

// Issue imprime count copias de la etiqueta. count <= 0 no imprime nada.
// Cada fallo se registra con el payload literal para poder reenviarlo a mano.
func (c *Coordinator) Issue(ctx context.Context, label entity.Label, count int) Report {
	rep := Report{Requested: max(count, 0)}
	if rep.Requested == 0 {
		return rep
	}

	job, err := c.renderer.Render(label)
	if err != nil {
		c.log.Error().Err(err).
			Str("identifier", label.Identifier).
			Str("article_code", label.ArticleCode).
			Int("copies", rep.Requested).
			Msg("no se pudo renderizar la etiqueta")
		rep.Failed = rep.Requested
		for i := 0; i < rep.Requested; i++ {
			c.recorder.LabelPrinted(false)
		}
		return rep
	}

	// La impresión ocurre después de guardar: que el cliente cierre la petición no la cancela.
	ctx = context.WithoutCancel(ctx)
	for i := 1; i <= rep.Requested; i++ {
		if err := c.printer.Send(ctx, job); err != nil {
			rep.Failed++
			c.recorder.LabelPrinted(false)
			c.log.Error().Err(err).
				Str("identifier", label.Identifier).
				Int("copy", i).
				Int("copies", rep.Requested).
				Str("payload", job.Payload).
				Msg("fallo de impresión")
			continue
		}
		rep.Printed++
		c.recorder.LabelPrinted(true)
	}
	c.log.Debug().
		Str("identifier", label.Identifier).
		Int("printed", rep.Printed).
		Int("failed", rep.Failed).
		Msg("etiquetas emitidas")
	return rep
}
