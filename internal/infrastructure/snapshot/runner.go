// Package snapshot serializa el ciclo load -> mutación -> save sobre el system of record.
package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Runner ejecuta callbacks con el snapshot completo de la tabla bajo un único mutex de proceso.
// Dos operaciones nunca intercalan su lectura y su escritura.
type Runner struct {
	mu    sync.Mutex
	store repository.LedgerStore
}

// NewRunner construye el runner sobre el almacén.
func NewRunner(store repository.LedgerStore) *Runner {
	return &Runner{store: store}
}

// Run carga la tabla, ejecuta fn y guarda el resultado. Si fn devuelve error no se guarda nada.
func (r *Runner) Run(ctx context.Context, fn func(t *entity.Table) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}
	if err := r.store.Save(ctx, t); err != nil {
		return fmt.Errorf("guardar snapshot: %w", err)
	}
	return nil
}
