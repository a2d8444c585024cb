package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de columna de la hoja de stock (system of record).
const (
	ColArticleCode       = "Article Code"
	ColDescription       = "PRODUCTS"
	ColPurchaseOrder     = "P/O"
	ColGRN               = "GRN"
	ColSupplierBatch     = "Supplier Batch"
	ColPackType          = "PACK TYPE"
	ColLocation          = "Location"
	ColAvailableQuantity = "Available Quantity"
	ColDateModified      = "Date Modified"
	ColDateCounted       = "Date Counted"
	ColAllocatedQuantity = "Allocated Quantity"
	ColIdentifier        = "QR ID"
)

// KnownColumns orden canónico de columnas al crear una hoja nueva.
var KnownColumns = []string{
	ColArticleCode, ColDescription, ColPurchaseOrder, ColGRN, ColSupplierBatch, ColPackType,
	ColLocation, ColAvailableQuantity, ColDateModified, ColDateCounted, ColAllocatedQuantity,
	ColIdentifier,
}

// IsKnownColumn indica si la columna se mapea a un campo de StockLine.
func IsKnownColumn(name string) bool {
	for _, c := range KnownColumns {
		if c == name {
			return true
		}
	}
	return false
}

// StockLine representa una línea del ledger (una fila de la hoja).
// Row es la posición (base 0) de la línea en el snapshot cargado; es la referencia
// que usan los despachos. Las líneas nuevas reciben la posición que tendrán al guardarse.
type StockLine struct {
	Row               int
	ArticleCode       string
	Description       string
	PurchaseOrder     string
	GRNRef            string
	SupplierBatch     string
	PackType          string
	Location          string
	AvailableQuantity decimal.Decimal
	DateModified      time.Time
	DateCounted       time.Time
	AllocatedQuantity decimal.Decimal
	Identifier        string
	// Extra guarda las columnas que el ledger no interpreta, para devolverlas intactas.
	Extra map[string]string
}

// Key devuelve la clave compuesta de consolidación de la línea.
func (l StockLine) Key() CompositeKey {
	return CompositeKey{
		ArticleCode:   l.ArticleCode,
		GRNRef:        l.GRNRef,
		PurchaseOrder: l.PurchaseOrder,
		Location:      l.Location,
		Description:   l.Description,
	}
}

// CompositeKey identifica "la misma línea" a efectos de consolidación.
// La comparación es exacta y sensible a mayúsculas, sin recortar espacios.
type CompositeKey struct {
	ArticleCode   string
	GRNRef        string
	PurchaseOrder string
	Location      string
	Description   string
}

// Table es el snapshot completo de la hoja en memoria.
type Table struct {
	// Columns orden de columnas tal como se leyó (más las materializadas al cargar).
	Columns []string
	Lines   []StockLine
}

// NewTable construye una tabla vacía con las columnas canónicas.
func NewTable() *Table {
	cols := make([]string, len(KnownColumns))
	copy(cols, KnownColumns)
	return &Table{Columns: cols}
}

// EnsureColumn agrega la columna al final si no existe.
func (t *Table) EnsureColumn(name string) {
	for _, c := range t.Columns {
		if c == name {
			return
		}
	}
	t.Columns = append(t.Columns, name)
}

// Clone devuelve una copia profunda de la tabla.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Lines:   make([]StockLine, len(t.Lines)),
	}
	for i, l := range t.Lines {
		if l.Extra != nil {
			extra := make(map[string]string, len(l.Extra))
			for k, v := range l.Extra {
				extra[k] = v
			}
			l.Extra = extra
		}
		out.Lines[i] = l
	}
	return out
}
