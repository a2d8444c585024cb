package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LedgerUseCase entradas, salidas y consultas sobre el ledger de stock.
// Toda mutación pasa por el SnapshotRunner; las consultas leen el almacén directamente.
type LedgerUseCase struct {
	runner   SnapshotRunner
	store    repository.LedgerStore
	issuer   ledger.IdentifierIssuer
	labels   LabelIssuer
	pdf      labels.PDFGenerator
	recorder ports.Recorder
	log      *logger.Logger
	now      func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*LedgerUseCase)

// WithPDFGenerator habilita la vista previa PDF de etiquetas.
func WithPDFGenerator(g labels.PDFGenerator) Option {
	return func(uc *LedgerUseCase) { uc.pdf = g }
}

// WithRecorder registra métricas de las operaciones.
func WithRecorder(r ports.Recorder) Option {
	return func(uc *LedgerUseCase) { uc.recorder = r }
}

// WithLogger reemplaza el logger (por defecto descarta todo).
func WithLogger(l *logger.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = l }
}

// WithClock fija el reloj usado para las fechas de las líneas.
func WithClock(now func() time.Time) Option {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	runner SnapshotRunner,
	store repository.LedgerStore,
	issuer ledger.IdentifierIssuer,
	labelIssuer LabelIssuer,
	opts ...Option,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		runner:   runner,
		store:    store,
		issuer:   issuer,
		labels:   labelIssuer,
		recorder: ports.NopRecorder{},
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// ── Entradas ─────────────────────────────────────────────────────────────────

// ReceiptResult resultado de una entrada ya guardada.
type ReceiptResult struct {
	OperationID string
	Outcome     ledger.ReceiptOutcome
	Labels      labels.Report
}

// Receive consolida la entrada en el ledger y la guarda. Si se emitió un identificador,
// imprime las etiquetas después del guardado; un fallo de impresión no falla la entrada.
func (uc *LedgerUseCase) Receive(ctx context.Context, r entity.Receipt) (*ReceiptResult, error) {
	opID := uuid.New().String()
	log := uc.log.With().Str("operation_id", opID).Str("operation", "receipt").Logger()
	start := time.Now()

	var out ledger.ReceiptOutcome
	err := uc.runner.Run(ctx, func(t *entity.Table) error {
		var err error
		out, err = ledger.ApplyReceipt(ctx, t, r, uc.issuer, uc.now())
		return err
	})
	uc.recorder.ObserveMutation("receipt", time.Since(start))
	if err != nil {
		uc.recordStoreError(err)
		log.Error().Err(err).
			Str("article_code", r.ArticleCode).
			Str("grn", r.GRNRef).
			Str("quantity", r.Quantity).
			Msg("entrada rechazada")
		return nil, err
	}

	uc.recorder.ReceiptApplied(out.Merged)
	log.Info().
		Bool("merged", out.Merged).
		Int("index", out.Line.Row).
		Str("article_code", out.Line.ArticleCode).
		Str("available_quantity", out.Line.AvailableQuantity.String()).
		Str("identifier", out.Identifier).
		Msg("entrada aplicada")

	res := &ReceiptResult{OperationID: opID, Outcome: out}
	if out.Identifier != "" {
		uc.recorder.IdentifierIssued()
		if out.PrintCountInvalid {
			log.Warn().Str("print_quantity", r.LabelPrintCount).Int("copies", out.PrintCount).
				Msg("cantidad de etiquetas corregida")
		}
		res.Labels = uc.labels.Issue(ctx, entity.LabelFromLine(out.Line), out.PrintCount)
	}
	return res, nil
}

// ── Salidas ──────────────────────────────────────────────────────────────────

// DispatchResult resultado de un despacho ya guardado.
type DispatchResult struct {
	OperationID string
	Outcome     ledger.DispatchOutcome
}

// Dispatch descuenta o elimina las líneas referenciadas y guarda el snapshot.
// Las referencias omitidas se informan en el resultado; solo una lista vacía es error.
func (uc *LedgerUseCase) Dispatch(ctx context.Context, d entity.Dispatch) (*DispatchResult, error) {
	if len(d.Targets) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	opID := uuid.New().String()
	log := uc.log.With().Str("operation_id", opID).Str("operation", "dispatch").Logger()
	start := time.Now()

	var out ledger.DispatchOutcome
	err := uc.runner.Run(ctx, func(t *entity.Table) error {
		var err error
		out, err = ledger.ApplyDispatch(t, d, uc.now())
		return err
	})
	uc.recorder.ObserveMutation("dispatch", time.Since(start))
	if err != nil {
		uc.recordStoreError(err)
		log.Error().Err(err).Strs("rows", d.Targets).Msg("despacho rechazado")
		return nil, err
	}

	for _, res := range out.Results {
		uc.recorder.DispatchTarget(string(res.Status))
		switch res.Status {
		case ledger.TargetSkipped:
			log.Warn().Str("ref", res.Ref).Str("reason", res.Reason).
				Str("amount", d.Adjustments[res.Ref]).Msg("referencia omitida")
		default:
			log.Debug().Str("ref", res.Ref).Str("status", string(res.Status)).
				Str("article_code", res.Line.ArticleCode).Str("identifier", res.Line.Identifier).
				Str("remaining", res.Remaining.String()).Msg("referencia aplicada")
		}
	}
	log.Info().
		Int("removed", out.Count(ledger.TargetRemoved)).
		Int("adjusted", out.Count(ledger.TargetAdjusted)).
		Int("skipped", out.Count(ledger.TargetSkipped)).
		Msg("despacho aplicado")

	return &DispatchResult{OperationID: opID, Outcome: out}, nil
}

func (uc *LedgerUseCase) recordStoreError(err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		uc.recorder.StoreError("unavailable")
	case errors.Is(err, domain.ErrStoreCorrupt):
		uc.recorder.StoreError("corrupt")
	}
}
