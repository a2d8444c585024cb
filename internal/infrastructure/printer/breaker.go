package printer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// BreakerSettings umbrales del circuit breaker de la impresora.
type BreakerSettings struct {
	MaxRequests      uint32        // peticiones permitidas en half-open
	Interval         time.Duration // ventana para reiniciar contadores (0 = nunca)
	Timeout          time.Duration // tiempo en open antes de pasar a half-open
	FailureThreshold uint32        // fallos consecutivos para abrir
}

// DefaultBreakerSettings valores por defecto.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// Breaker envuelve un Sender con gobreaker: tras varios fallos seguidos deja de intentar
// hasta que pasa el Timeout, y las copias restantes fallan de inmediato.
type Breaker struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
	log  *logger.Logger
}

// NewBreaker construye el breaker sobre next.
func NewBreaker(name string, next Sender, s BreakerSettings, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.Nop()
	}
	b := &Breaker{next: next, log: log}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("printer", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker de impresora cambió de estado")
		},
	})
	return b
}

// Send ejecuta el envío a través del breaker.
func (b *Breaker) Send(ctx context.Context, job entity.LabelJob) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, job)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrPrinterUnavailable, fmt.Errorf("printer: %s: %w", b.cb.Name(), err))
	}
	return err
}

// State estado actual del breaker.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
