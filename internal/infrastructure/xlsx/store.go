// Package xlsx implementa el system of record del ledger sobre un libro Excel
// compartido. El libro se lee y se reescribe completo en cada operación; la
// serialización de load -> mutación -> save es responsabilidad del llamador.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// DateLayout formato de las columnas de fecha en la hoja.
const DateLayout = "2006-01-02 15:04:05"

// maxNumericText longitud máxima de un texto que se escribe como número (Excel guarda 15 dígitos).
const maxNumericText = 15

var _ repository.LedgerStore = (*Store)(nil)

// Store adaptador del libro .xlsx.
type Store struct {
	path  string
	sheet string
	log   *logger.Logger
}

// NewStore construye el adaptador. sheet vacío = primera hoja del libro.
func NewStore(path, sheet string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{path: path, sheet: sheet, log: log}
}

// Path ruta del libro.
func (s *Store) Path() string { return s.path }

// ── Load ──────────────────────────────────────────────────────────────────────

// Load lee la hoja completa y la normaliza: celdas ausentes -> "" / cero y la
// columna QR ID se materializa vacía si el libro no la tiene.
func (s *Store) Load(ctx context.Context) (*entity.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := s.resolveSheet(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, corrupt(fmt.Errorf("leer hoja %q: %w", sheet, err))
	}
	return s.parse(rows)
}

func (s *Store) parse(rows [][]string) (*entity.Table, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		// Hoja vacía: tabla vacía con las columnas canónicas.
		return entity.NewTable(), nil
	}

	// El ancho lo da la fila más larga; las cabeceras vacías se nombran "Unnamed: N"
	// para que reescribir la hoja no desplace columnas; al guardar vuelven a quedar vacías.
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	seen := make(map[string]bool, width)
	known := 0
	for i := range header {
		h := ""
		if i < len(rows[0]) {
			h = strings.TrimSpace(rows[0][i])
		}
		if h == "" {
			h = unnamedColumn(i)
		}
		if seen[h] {
			return nil, corrupt(fmt.Errorf("columna duplicada %q", h))
		}
		seen[h] = true
		header[i] = h
		if entity.IsKnownColumn(h) {
			known++
		}
	}
	if known == 0 {
		return nil, corrupt(fmt.Errorf("la fila de cabecera no contiene columnas del ledger"))
	}

	t := &entity.Table{Columns: append([]string(nil), header...)}
	t.EnsureColumn(entity.ColIdentifier)

	for _, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		line := entity.StockLine{Row: len(t.Lines)}
		for i, h := range header {
			v := ""
			if i < len(raw) {
				// Sin recortar: la clave compuesta compara el texto tal cual.
				v = raw[i]
			}
			s.assign(&line, h, v)
		}
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

func (s *Store) assign(l *entity.StockLine, col, v string) {
	switch col {
	case entity.ColArticleCode:
		l.ArticleCode = v
	case entity.ColDescription:
		l.Description = v
	case entity.ColPurchaseOrder:
		l.PurchaseOrder = v
	case entity.ColGRN:
		l.GRNRef = v
	case entity.ColSupplierBatch:
		l.SupplierBatch = v
	case entity.ColPackType:
		l.PackType = v
	case entity.ColLocation:
		l.Location = v
	case entity.ColAvailableQuantity:
		l.AvailableQuantity = s.quantity(l.Row, col, v)
	case entity.ColAllocatedQuantity:
		l.AllocatedQuantity = s.quantity(l.Row, col, v)
	case entity.ColDateModified:
		l.DateModified = s.date(l.Row, col, v)
	case entity.ColDateCounted:
		l.DateCounted = s.date(l.Row, col, v)
	case entity.ColIdentifier:
		l.Identifier = v
	default:
		if l.Extra == nil {
			l.Extra = make(map[string]string)
		}
		l.Extra[col] = v
	}
}

func (s *Store) quantity(row int, col, v string) decimal.Decimal {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err == nil {
		return d
	}
	if d, ok := ledger.ParseQuantity(v); ok {
		return d
	}
	s.log.Warn().Int("row", row).Str("column", col).Str("value", v).Msg("cantidad ilegible, se toma como 0")
	return decimal.Zero
}

var dateLayouts = []string{DateLayout, "2006-01-02T15:04:05", "2006-01-02", "02/01/2006 15:04", "02/01/2006"}

func (s *Store) date(row int, col, v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	// Fecha nativa de Excel (número de serie).
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	s.log.Debug().Int("row", row).Str("column", col).Str("value", v).Msg("fecha ilegible")
	return time.Time{}
}

// ── Save ──────────────────────────────────────────────────────────────────────

// Save reescribe la hoja del ledger con el contenido de la tabla y reemplaza el libro
// mediante un archivo temporal + rename. Las demás hojas del libro se conservan.
func (s *Store) Save(ctx context.Context, t *entity.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, err := s.resolveSheet(f)
	if err != nil {
		return err
	}
	existing, err := f.GetRows(sheet)
	if err != nil {
		return corrupt(fmt.Errorf("leer hoja %q: %w", sheet, err))
	}

	if err := writeRows(f, sheet, t); err != nil {
		return fmt.Errorf("xlsx: escribir hoja: %w", err)
	}
	// Filas sobrantes de la versión anterior (líneas eliminadas).
	for r := len(existing); r > len(t.Lines)+1; r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("xlsx: eliminar fila %d: %w", r, err)
		}
	}
	return s.replace(f)
}

func writeRows(f *excelize.File, sheet string, t *entity.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		if c == unnamedColumn(i) {
			// La cabecera estaba vacía en el libro original.
			c = ""
		}
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, l := range t.Lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(t.Columns))
		for j, c := range t.Columns {
			values[j] = cellValue(l, c)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(l entity.StockLine, col string) interface{} {
	switch col {
	case entity.ColArticleCode:
		return textValue(l.ArticleCode)
	case entity.ColDescription:
		return textValue(l.Description)
	case entity.ColPurchaseOrder:
		return textValue(l.PurchaseOrder)
	case entity.ColGRN:
		return textValue(l.GRNRef)
	case entity.ColSupplierBatch:
		return textValue(l.SupplierBatch)
	case entity.ColPackType:
		return textValue(l.PackType)
	case entity.ColLocation:
		return textValue(l.Location)
	case entity.ColAvailableQuantity:
		return l.AvailableQuantity.InexactFloat64()
	case entity.ColAllocatedQuantity:
		return l.AllocatedQuantity.InexactFloat64()
	case entity.ColDateModified:
		return formatDate(l.DateModified)
	case entity.ColDateCounted:
		return formatDate(l.DateCounted)
	case entity.ColIdentifier:
		return l.Identifier
	default:
		return textValue(l.Extra[col])
	}
}

// textValue conserva como número los textos que lo son de forma exacta (p. ej. códigos
// de artículo numéricos) para no convertir celdas numéricas en texto al reescribir.
func textValue(v string) interface{} {
	if v == "" || len(v) > maxNumericText {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != v {
		return v
	}
	return f
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// replace guarda en un temporal del mismo directorio y lo renombra sobre el libro.
func (s *Store) replace(f *excelize.File) error {
	dir, base := filepath.Split(s.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.xlsx", strings.TrimSuffix(base, filepath.Ext(base)), uuid.New().String()[:8]))
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return unavailable(fmt.Errorf("guardar temporal: %w", err))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return unavailable(fmt.Errorf("reemplazar libro: %w", err))
	}
	return nil
}

// ── Bootstrap ────────────────────────────────────────────────────────────────

// Bootstrap crea el libro con la fila de cabecera si no existe. Devuelve true si lo creó.
func (s *Store) Bootstrap() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, unavailable(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if s.sheet != "" && s.sheet != sheet {
		if err := f.SetSheetName(sheet, s.sheet); err != nil {
			return false, fmt.Errorf("xlsx: renombrar hoja: %w", err)
		}
		sheet = s.sheet
	}
	if err := writeRows(f, sheet, entity.NewTable()); err != nil {
		return false, fmt.Errorf("xlsx: escribir cabecera: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return false, unavailable(fmt.Errorf("crear libro: %w", err))
	}
	return true, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *Store) open() (*excelize.File, error) {
	if lock := s.lockFile(); lock != "" {
		return nil, unavailable(fmt.Errorf("libro abierto en otra aplicación (%s)", filepath.Base(lock)))
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, unavailable(err)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, unavailable(err)
		}
		return nil, corrupt(err)
	}
	return f, nil
}

// lockFile devuelve el archivo de bloqueo de Office (~$nombre.xlsx) si existe.
// Office recorta los dos primeros caracteres en nombres largos, se prueban ambas formas.
func (s *Store) lockFile() string {
	dir, base := filepath.Split(s.path)
	candidates := []string{"~$" + base}
	if len(base) > 2 {
		candidates = append(candidates, "~$"+base[2:])
	}
	for _, c := range candidates {
		p := filepath.Join(dir, c)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (s *Store) resolveSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", corrupt(fmt.Errorf("el libro no tiene hojas"))
	}
	if s.sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == s.sheet {
			return name, nil
		}
	}
	return "", corrupt(fmt.Errorf("hoja %q no encontrada", s.sheet))
}

func unnamedColumn(i int) string {
	return fmt.Sprintf("Unnamed: %d", i)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func unavailable(err error) error {
	return errors.Join(domain.ErrStoreUnavailable, fmt.Errorf("xlsx: %w", err))
}

func corrupt(err error) error {
	return errors.Join(domain.ErrStoreCorrupt, fmt.Errorf("xlsx: %w", err))
}
