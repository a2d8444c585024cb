package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ repository.LedgerStore = (*LedgerStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS stock_ledger_columns (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS stock_lines (
	position           INTEGER PRIMARY KEY,
	article_code       TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	purchase_order     TEXT NOT NULL DEFAULT '',
	grn_ref            TEXT NOT NULL DEFAULT '',
	supplier_batch     TEXT NOT NULL DEFAULT '',
	pack_type          TEXT NOT NULL DEFAULT '',
	location           TEXT NOT NULL DEFAULT '',
	available_quantity NUMERIC NOT NULL DEFAULT 0,
	date_modified      TIMESTAMPTZ,
	date_counted       TIMESTAMPTZ,
	allocated_quantity NUMERIC NOT NULL DEFAULT 0,
	identifier         TEXT NOT NULL DEFAULT '',
	extra              JSONB NOT NULL DEFAULT '{}'::jsonb
);`

var lineColumns = []string{
	"position", "article_code", "description", "purchase_order", "grn_ref", "supplier_batch",
	"pack_type", "location", "available_quantity", "date_modified", "date_counted",
	"allocated_quantity", "identifier", "extra",
}

// LedgerStore guarda el snapshot del ledger en PostgreSQL (tablas stock_lines y
// stock_ledger_columns). Save reemplaza todo el contenido dentro de una transacción,
// así una lectura concurrente ve el snapshot anterior o el nuevo, nunca uno parcial.
type LedgerStore struct {
	pool *pgxpool.Pool
	tx   *TxRunner
	log  *logger.Logger
}

// NewLedgerStore construye el almacén sobre el pool.
func NewLedgerStore(pool *pgxpool.Pool, log *logger.Logger) *LedgerStore {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerStore{pool: pool, tx: NewTxRunner(pool), log: log.Named("postgres_store")}
}

// EnsureSchema crea las tablas si no existen.
func (s *LedgerStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return classify("crear esquema", err)
	}
	return nil
}

// Load lee el snapshot completo ordenado por posición.
func (s *LedgerStore) Load(ctx context.Context) (*entity.Table, error) {
	cols, err := s.loadColumns(ctx)
	if err != nil {
		return nil, err
	}
	t := &entity.Table{Columns: cols}
	if len(t.Columns) == 0 {
		t = entity.NewTable()
	}
	t.EnsureColumn(entity.ColIdentifier)

	rows, err := s.pool.Query(ctx, `SELECT `+strings.Join(lineColumns, ", ")+` FROM stock_lines ORDER BY position`)
	if err != nil {
		return nil, classify("leer líneas", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, errors.Join(domain.ErrStoreCorrupt, fmt.Errorf("postgres leer línea: %w", err))
		}
		l.Row = len(t.Lines)
		t.Lines = append(t.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("leer líneas", err)
	}
	return t, nil
}

func (s *LedgerStore) loadColumns(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM stock_ledger_columns ORDER BY position`)
	if err != nil {
		return nil, classify("leer columnas", err)
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify("leer columnas", err)
	}
	return cols, nil
}

// Save reemplaza columnas y líneas en una sola transacción.
func (s *LedgerStore) Save(ctx context.Context, t *entity.Table) error {
	err := s.tx.Run(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stock_lines`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM stock_ledger_columns`); err != nil {
			return err
		}

		colRows := make([][]any, len(t.Columns))
		for i, name := range t.Columns {
			colRows[i] = []any{i, name}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"stock_ledger_columns"},
			[]string{"position", "name"}, pgx.CopyFromRows(colRows)); err != nil {
			return err
		}

		_, err := tx.CopyFrom(ctx, pgx.Identifier{"stock_lines"}, lineColumns,
			pgx.CopyFromSlice(len(t.Lines), func(i int) ([]any, error) {
				return lineValues(i, t.Lines[i]), nil
			}))
		return err
	})
	if err != nil {
		return classify("guardar snapshot", err)
	}
	s.log.Debug().Int("lines", len(t.Lines)).Msg("snapshot guardado")
	return nil
}

// ── Mapeo de filas ──

func scanLine(row pgx.Row) (entity.StockLine, error) {
	var (
		l                    entity.StockLine
		position             int
		modified, counted    *time.Time
		available, allocated decimal.Decimal
		extra                map[string]string
	)
	err := row.Scan(
		&position, &l.ArticleCode, &l.Description, &l.PurchaseOrder, &l.GRNRef, &l.SupplierBatch,
		&l.PackType, &l.Location, &available, &modified, &counted,
		&allocated, &l.Identifier, &extra,
	)
	if err != nil {
		return entity.StockLine{}, err
	}
	l.AvailableQuantity = available
	l.AllocatedQuantity = allocated
	l.DateModified = derefTime(modified)
	l.DateCounted = derefTime(counted)
	if len(extra) > 0 {
		l.Extra = extra
	}
	return l, nil
}

func lineValues(position int, l entity.StockLine) []any {
	extra := l.Extra
	if extra == nil {
		extra = map[string]string{}
	}
	return []any{
		position, l.ArticleCode, l.Description, l.PurchaseOrder, l.GRNRef, l.SupplierBatch,
		l.PackType, l.Location, l.AvailableQuantity, nullableTime(l.DateModified), nullableTime(l.DateCounted),
		l.AllocatedQuantity, l.Identifier, extra,
	}
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Local()
}
