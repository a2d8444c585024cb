package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerStore define el puerto hacia el system of record del ledger.
// Load devuelve el snapshot completo normalizado; Save reemplaza todo el contenido
// en una sola escritura. El almacén no ofrece atomicidad entre ambas llamadas: el
// llamador debe serializar load -> mutación -> save.
//
// Errores: domain.ErrStoreUnavailable si el medio no se puede abrir o escribir,
// domain.ErrStoreCorrupt si el contenido no es tabular.
type LedgerStore interface {
	Load(ctx context.Context) (*entity.Table, error)
	Save(ctx context.Context, table *entity.Table) error
}
