package xlsx_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/xlsx"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var legacyHeader = []interface{}{
	"Article Code", "PRODUCTS", "P/O", "GRN", "Supplier Batch", "PACK TYPE", "Location",
	"Available Quantity", "Date Modified", "Date Counted", "Allocated Quantity", "Notes",
}

// writeWorkbook crea un libro con las filas dadas en la hoja "Stock" y una hoja adicional "Resumen".
func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Stock"))
	for i, r := range rows {
		row := r
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Stock", cell, &row))
	}
	_, err := f.NewSheet("Resumen")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Resumen", "A1", "no tocar"))
	require.NoError(t, f.SaveAs(path))
}

func legacyWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MPH-Stock-Live.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		legacyHeader,
		{"A100", "Widget", "P1", "G1", "B1", "", "L1", 10, "2024-03-01 08:00:00", "2024-03-01 08:00:00", 0, "frágil"},
		{1001, "Bolt", "P2", "G2", "B2", "BOX", "L2", "1,250", "", "", "", ""},
		{},
		{"C300", "Nut", "P3", "G3", "", "", "L3", 3.5},
	})
	return path
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

// ──────────────────────────────────────────────────────────────────────────────
// Load
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_NormalizaLibroSinColumnaQR(t *testing.T) {
	store := xlsx.NewStore(legacyWorkbook(t), "", nil)

	table, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.ColIdentifier, table.Columns[len(table.Columns)-1], "QR ID se materializa al final")
	require.Len(t, table.Lines, 3, "las filas en blanco se omiten")

	first := table.Lines[0]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, "A100", first.ArticleCode)
	assert.True(t, decimal.NewFromInt(10).Equal(first.AvailableQuantity))
	assert.Equal(t, "2024-03-01 08:00:00", first.DateModified.Format(xlsx.DateLayout))
	assert.Equal(t, "frágil", first.Extra["Notes"])
	assert.Empty(t, first.Identifier)

	second := table.Lines[1]
	assert.Equal(t, "1001", second.ArticleCode, "códigos numéricos se leen como texto")
	assert.True(t, decimal.NewFromInt(1250).Equal(second.AvailableQuantity), "acepta separador de miles")
	assert.True(t, second.AllocatedQuantity.IsZero())
	assert.True(t, second.DateModified.IsZero())

	third := table.Lines[2]
	assert.Equal(t, 2, third.Row)
	assert.True(t, decimal.RequireFromString("3.5").Equal(third.AvailableQuantity))
	assert.Empty(t, third.Extra["Notes"], "celdas ausentes se normalizan a vacío")
}

func TestLoad_HojaConfigurada(t *testing.T) {
	path := legacyWorkbook(t)

	_, err := xlsx.NewStore(path, "Stock", nil).Load(context.Background())
	require.NoError(t, err)

	_, err = xlsx.NewStore(path, "NoExiste", nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

func TestLoad_LibroInexistente(t *testing.T) {
	store := xlsx.NewStore(filepath.Join(t.TempDir(), "nada.xlsx"), "", nil)

	table, err := store.Load(context.Background())
	assert.Nil(t, table, "nunca se degrada a una tabla vacía")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLoad_LibroBloqueadoPorOffice(t *testing.T) {
	path := legacyWorkbook(t)
	lock := filepath.Join(filepath.Dir(path), "~$"+filepath.Base(path))
	require.NoError(t, os.WriteFile(lock, []byte("owner"), 0o644))

	_, err := xlsx.NewStore(path, "", nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	require.NoError(t, os.Remove(lock))
	_, err = xlsx.NewStore(path, "", nil).Load(context.Background())
	assert.NoError(t, err)
}

func TestLoad_ContenidoNoTabular(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MPH-Stock-Live.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("esto no es un libro"), 0o644))

	_, err := xlsx.NewStore(path, "", nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

func TestLoad_CabeceraAjena(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otro.xlsx")
	writeWorkbook(t, path, [][]interface{}{{"Nombre", "Precio"}, {"x", 1}})

	_, err := xlsx.NewStore(path, "", nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

func TestLoad_CabeceraDuplicada(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.xlsx")
	writeWorkbook(t, path, [][]interface{}{{"Article Code", "Article Code"}, {"x", "y"}})

	_, err := xlsx.NewStore(path, "", nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Save
// ──────────────────────────────────────────────────────────────────────────────

func TestSave_ReemplazaHojaYConservaElResto(t *testing.T) {
	path := legacyWorkbook(t)
	store := xlsx.NewStore(path, "", nil)
	ctx := context.Background()

	table, err := store.Load(ctx)
	require.NoError(t, err)

	// Se elimina la primera línea y se asigna identificador a la segunda.
	table.Lines = table.Lines[1:]
	table.Lines[0].Identifier = "0123456789012345"
	table.Lines[0].DateModified = time.Date(2024, 4, 1, 9, 15, 0, 0, time.Local)
	require.NoError(t, store.Save(ctx, table))

	rows := readSheet(t, path, "Stock")
	require.Len(t, rows, 3, "cabecera + 2 líneas; la fila sobrante se elimina")
	assert.Equal(t, "QR ID", rows[0][len(rows[0])-1])
	assert.Equal(t, "1001", rows[1][0])
	assert.Equal(t, "2024-04-01 09:15:00", rows[1][8])
	assert.Equal(t, "0123456789012345", rows[1][len(rows[1])-1], "el identificador no se convierte a número")
	assert.Equal(t, "C300", rows[2][0])

	resumen := readSheet(t, path, "Resumen")
	assert.Equal(t, "no tocar", resumen[0][0])

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 2)
	assert.Equal(t, 0, reloaded.Lines[0].Row, "las posiciones se recalculan al recargar")
	assert.Equal(t, "0123456789012345", reloaded.Lines[0].Identifier)
	assert.True(t, decimal.NewFromInt(1250).Equal(reloaded.Lines[0].AvailableQuantity))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "no quedan temporales")
}

func TestSave_AgregaLineasYConservaColumnasExtra(t *testing.T) {
	path := legacyWorkbook(t)
	store := xlsx.NewStore(path, "", nil)
	ctx := context.Background()

	table, err := store.Load(ctx)
	require.NoError(t, err)
	table.Lines = append(table.Lines, entity.StockLine{
		Row:               len(table.Lines),
		ArticleCode:       "D400",
		Description:       "Washer",
		AvailableQuantity: decimal.NewFromInt(8),
	})
	require.NoError(t, store.Save(ctx, table))

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 4)
	assert.Equal(t, "D400", reloaded.Lines[3].ArticleCode)
	assert.Equal(t, "frágil", reloaded.Lines[0].Extra["Notes"])
	assert.Equal(t, table.Columns, reloaded.Columns, "el orden de columnas se conserva")
}

func TestSave_LibroBloqueadoNoEscribe(t *testing.T) {
	path := legacyWorkbook(t)
	store := xlsx.NewStore(path, "", nil)
	table, err := store.Load(context.Background())
	require.NoError(t, err)

	lock := filepath.Join(filepath.Dir(path), "~$"+filepath.Base(path))
	require.NoError(t, os.WriteFile(lock, nil, 0o644))

	table.Lines = nil
	err = store.Save(context.Background(), table)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Len(t, readSheet(t, path, "Stock"), 5, "el libro queda como estaba")
}

// ──────────────────────────────────────────────────────────────────────────────
// Bootstrap
// ──────────────────────────────────────────────────────────────────────────────

func TestBootstrap_CreaLibroConCabecera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nuevo.xlsx")
	store := xlsx.NewStore(path, "Stock", nil)

	created, err := store.Bootstrap()
	require.NoError(t, err)
	assert.True(t, created)

	table, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, table.Lines)
	assert.Equal(t, entity.KnownColumns, table.Columns)

	created, err = store.Bootstrap()
	require.NoError(t, err)
	assert.False(t, created, "no sobrescribe un libro existente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ida y vuelta
// ──────────────────────────────────────────────────────────────────────────────

type seqIssuer struct{ n int }

func (s *seqIssuer) Issue(context.Context) (string, error) {
	s.n++
	return fmt.Sprintf("QRTEST%010d", s.n), nil
}

func TestSave_ConservaEspaciosDeLaClaveCompuesta(t *testing.T) {
	path := legacyWorkbook(t)
	store := xlsx.NewStore(path, "", nil)
	issuer := &seqIssuer{}
	receipt := entity.Receipt{
		ArticleCode:   "A100",
		Description:   "Widget ",
		PurchaseOrder: "P1",
		GRNRef:        "G1",
		SupplierBatch: "B1",
		Location:      "L1",
		Quantity:      "5",
	}
	ctx := context.Background()

	var merged []bool
	for i := 0; i < 2; i++ {
		table, err := store.Load(ctx)
		require.NoError(t, err)
		out, err := ledger.ApplyReceipt(ctx, table, receipt, issuer, time.Now())
		require.NoError(t, err)
		merged = append(merged, out.Merged)
		require.NoError(t, store.Save(ctx, table))
	}
	assert.Equal(t, []bool{false, true}, merged, "la segunda entrada consolida con la línea creada por la primera")

	table, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, table.Lines, 4)

	seen := make(map[entity.CompositeKey]bool)
	var padded, plain []entity.StockLine
	for _, l := range table.Lines {
		assert.False(t, seen[l.Key()], "clave compuesta repetida: %+v", l.Key())
		seen[l.Key()] = true
		switch l.Description {
		case "Widget ":
			padded = append(padded, l)
		case "Widget":
			plain = append(plain, l)
		}
	}
	require.Len(t, padded, 1)
	require.Len(t, plain, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(padded[0].AvailableQuantity))
	assert.True(t, decimal.NewFromInt(10).Equal(plain[0].AvailableQuantity))
}

func TestLoad_CantidadYFechaConEspaciosSeInterpretan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		legacyHeader,
		{"A100", "Widget", "P1", "G1", "B1", "", "L1", " 7 ", " 2024-03-01 08:00:00 "},
	})

	table, err := xlsx.NewStore(path, "", nil).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, table.Lines, 1)
	assert.True(t, decimal.NewFromInt(7).Equal(table.Lines[0].AvailableQuantity))
	assert.Equal(t, "2024-03-01 08:00:00", table.Lines[0].DateModified.Format(xlsx.DateLayout))
}

func TestSave_CabeceraVaciaSeConservaVacia(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Article Code", "PRODUCTS", "", "Location", "Available Quantity"},
		{"A100", "Widget", "nota suelta", "L1", 10},
	})
	store := xlsx.NewStore(path, "", nil)
	ctx := context.Background()

	table, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, table.Lines, 1)
	assert.Equal(t, "nota suelta", table.Lines[0].Extra["Unnamed: 2"])
	require.NoError(t, store.Save(ctx, table))

	rows := readSheet(t, path, "Stock")
	require.GreaterOrEqual(t, len(rows), 2)
	require.Greater(t, len(rows[0]), 3)
	assert.Equal(t, "", rows[0][2], "la cabecera vacía no se escribe como texto")
	assert.Equal(t, "Location", rows[0][3])
	assert.Equal(t, "nota suelta", rows[1][2])

	again, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, again.Lines, 1)
	assert.Equal(t, "nota suelta", again.Lines[0].Extra["Unnamed: 2"])
	assert.Equal(t, table.Columns, again.Columns)
}
