package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// classify asocia un error de pgx al sentinel del almacén.
// Errores del servidor de las clases 42 (esquema) y 22 (datos) indican contenido
// no tabular; el resto (red, autenticación, timeouts) indica medio no disponible.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrStoreCorrupt) {
		return err
	}
	sentinel := domain.ErrStoreUnavailable
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "42") || strings.HasPrefix(pgErr.Code, "22")) {
		sentinel = domain.ErrStoreCorrupt
	}
	return errors.Join(sentinel, fmt.Errorf("postgres %s: %w", op, err))
}
