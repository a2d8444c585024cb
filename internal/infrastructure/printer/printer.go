package printer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ErrPrinterUnavailable la impresora no acepta trabajos (breaker abierto o destino inalcanzable).
var ErrPrinterUnavailable = errors.New("impresora no disponible")

// Sender envía un trabajo ya renderizado al dispositivo.
type Sender interface {
	Send(ctx context.Context, job entity.LabelJob) error
}

// New construye el driver configurado, protegido por el circuit breaker.
func New(cfg config.PrinterConfig, log *logger.Logger) (Sender, error) {
	if log == nil {
		log = logger.Nop()
	}
	codec, err := NewCodec(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	var s Sender
	switch cfg.Driver {
	case config.PrinterDriverTCP:
		s = NewTCPSender(cfg.Addr, cfg.Timeout, codec)
	case config.PrinterDriverSpool:
		spool, err := NewSpoolSender(cfg.SpoolDir, codec)
		if err != nil {
			return nil, err
		}
		s = spool
	case config.PrinterDriverLog:
		s = NewLogSender(cfg.Name, log)
	default:
		return nil, fmt.Errorf("printer: driver desconocido %q", cfg.Driver)
	}
	return NewBreaker(cfg.Name, s, DefaultBreakerSettings(), log), nil
}
