// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

var _ ports.Recorder = (*Metrics)(nil)

// Metrics agrupa los collectors del ledger sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReceiptsTotal     *prometheus.CounterVec
	DispatchTargets   *prometheus.CounterVec
	IdentifiersIssued prometheus.Counter
	LabelsTotal       *prometheus.CounterVec
	StoreErrors       *prometheus.CounterVec
	MutationDuration  *prometheus.HistogramVec
}

// New registra los collectors bajo el namespace dado.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	m.ReceiptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipts_total",
		Help:      "Recepciones aplicadas",
	}, []string{"result"})

	m.DispatchTargets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_targets_total",
		Help:      "Objetivos de despacho por resultado",
	}, []string{"status"})

	m.IdentifiersIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identifiers_issued_total",
		Help:      "Identificadores QR emitidos",
	})

	m.LabelsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "labels_total",
		Help:      "Copias de etiqueta enviadas a la impresora",
	}, []string{"status"})

	m.StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Fallos del system of record",
	}, []string{"kind"})

	// El almacén es un libro compartido: las mutaciones tardan segundos, no milisegundos.
	m.MutationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Duración del ciclo load -> mutación -> save",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.ReceiptsTotal, m.DispatchTargets, m.IdentifiersIssued,
		m.LabelsTotal, m.StoreErrors, m.MutationDuration,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware mide cada petición HTTP por ruta registrada (no por URL, para acotar la cardinalidad).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// ── ports.Recorder ───────────────────────────────────────────────────────────

func (m *Metrics) ReceiptApplied(merged bool) {
	result := "appended"
	if merged {
		result = "merged"
	}
	m.ReceiptsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) DispatchTarget(status string) {
	m.DispatchTargets.WithLabelValues(status).Inc()
}

func (m *Metrics) IdentifierIssued() { m.IdentifiersIssued.Inc() }

func (m *Metrics) LabelPrinted(ok bool) {
	status := "printed"
	if !ok {
		status = "failed"
	}
	m.LabelsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) StoreError(kind string) {
	m.StoreErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveMutation(operation string, d time.Duration) {
	m.MutationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
