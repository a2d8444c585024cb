package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SnapshotRunner ejecuta una mutación sobre el snapshot completo del ledger: carga, aplica fn y
// guarda, todo bajo una única sección crítica. Si fn devuelve error no se guarda nada.
type SnapshotRunner interface {
	Run(ctx context.Context, fn func(t *entity.Table) error) error
}

// LabelIssuer imprime N copias de la etiqueta de un lote.
type LabelIssuer interface {
	Issue(ctx context.Context, l entity.Label, count int) labels.Report
}
