package printer

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LogSender no imprime: registra el payload. Para desarrollo y estaciones sin impresora.
type LogSender struct {
	name string
	log  *logger.Logger
}

// NewLogSender construye el sender.
func NewLogSender(name string, log *logger.Logger) *LogSender {
	return &LogSender{name: name, log: log}
}

func (s *LogSender) Send(_ context.Context, job entity.LabelJob) error {
	s.log.Info().
		Str("printer", s.name).
		Str("identifier", job.Label.Identifier).
		Str("payload", job.Payload).
		Msg("etiqueta (sin impresora)")
	return nil
}
