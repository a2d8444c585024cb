package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DateLayout formato de fechas en las respuestas (igual que en la hoja).
const DateLayout = "2006-01-02 15:04:05"

// Amount valor que las estaciones envían como número o como texto ("12", 12, "1,250").
// Se conserva el texto: su interpretación es parte de las reglas del ledger. null -> "".
type Amount string

// UnmarshalJSON acepta string, número o null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("valor no numérico ni texto: %s", string(b))
		}
		*a = Amount(n.String())
	}
	return nil
}

// ReceiptRequest body para POST /api/ledger/receipts (JSON o formulario de la estación).
type ReceiptRequest struct {
	PurchaseOrder string `json:"po" form:"po-number" validate:"max=64"`
	GRNRef        string `json:"grn" form:"grn-number" validate:"max=64"`
	ArticleCode   string `json:"article_code" form:"article-code" validate:"max=64"`
	SupplierBatch string `json:"supplier_batch" form:"batch-number" validate:"max=64"`
	Location      string `json:"location" form:"location" validate:"max=64"`
	Item          string `json:"item" form:"item" validate:"max=255"`
	Quantity      Amount `json:"quantity" form:"quantity" validate:"max=32"`
	PrintQuantity Amount `json:"print_quantity" form:"print-quantity" validate:"max=16"`
}

// ToEntity convierte el request en una entrada del ledger.
func (r ReceiptRequest) ToEntity() entity.Receipt {
	return entity.Receipt{
		ArticleCode:     r.ArticleCode,
		Description:     r.Item,
		PurchaseOrder:   r.PurchaseOrder,
		GRNRef:          r.GRNRef,
		SupplierBatch:   r.SupplierBatch,
		Location:        r.Location,
		Quantity:        string(r.Quantity),
		LabelPrintCount: string(r.PrintQuantity),
	}
}

// DispatchRequest body para POST /api/ledger/dispatches.
// Rows referencias de línea (índice de la fila o identificador QR); Adjust cantidad por referencia.
type DispatchRequest struct {
	Rows   []Amount          `json:"rows" validate:"max=1000,dive,max=64"`
	Adjust map[string]Amount `json:"adjust" validate:"max=1000"`
}

// ToEntity convierte el request en un despacho del ledger.
func (r DispatchRequest) ToEntity() entity.Dispatch {
	d := entity.Dispatch{
		Targets:     make([]string, 0, len(r.Rows)),
		Adjustments: make(map[string]string, len(r.Adjust)),
	}
	for _, ref := range r.Rows {
		d.Targets = append(d.Targets, strings.TrimSpace(string(ref)))
	}
	for ref, amount := range r.Adjust {
		d.Adjustments[strings.TrimSpace(ref)] = string(amount)
	}
	return d
}

// ReprintRequest body opcional para POST /api/labels/:identifier/reprint.
type ReprintRequest struct {
	Copies Amount `json:"copies" validate:"max=16"`
}

// StockLineResponse una línea del ledger. Index es la referencia a usar en despachos.
type StockLineResponse struct {
	Index             int               `json:"index"`
	ArticleCode       string            `json:"article_code"`
	Description       string            `json:"description"`
	PurchaseOrder     string            `json:"po"`
	GRNRef            string            `json:"grn"`
	SupplierBatch     string            `json:"supplier_batch"`
	PackType          string            `json:"pack_type"`
	Location          string            `json:"location"`
	AvailableQuantity decimal.Decimal   `json:"available_quantity"`
	DateModified      string            `json:"date_modified"`
	DateCounted       string            `json:"date_counted"`
	AllocatedQuantity decimal.Decimal   `json:"allocated_quantity"`
	Identifier        string            `json:"identifier"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// NewStockLineResponse mapea una línea del ledger.
func NewStockLineResponse(l entity.StockLine) StockLineResponse {
	return StockLineResponse{
		Index:             l.Row,
		ArticleCode:       l.ArticleCode,
		Description:       l.Description,
		PurchaseOrder:     l.PurchaseOrder,
		GRNRef:            l.GRNRef,
		SupplierBatch:     l.SupplierBatch,
		PackType:          l.PackType,
		Location:          l.Location,
		AvailableQuantity: l.AvailableQuantity,
		DateModified:      formatDate(l.DateModified),
		DateCounted:       formatDate(l.DateCounted),
		AllocatedQuantity: l.AllocatedQuantity,
		Identifier:        l.Identifier,
		Extra:             l.Extra,
	}
}

// NewStockLineList mapea un listado.
func NewStockLineList(lines []entity.StockLine) StockLineListResponse {
	out := StockLineListResponse{Lines: make([]StockLineResponse, 0, len(lines)), Total: len(lines)}
	for _, l := range lines {
		out.Lines = append(out.Lines, NewStockLineResponse(l))
	}
	return out
}

// NewStockLinePage mapea una página del listado. Total cuenta todas las líneas.
func NewStockLinePage(lines []entity.StockLine, page PageRequest) StockLineListResponse {
	lo, hi := page.Window(len(lines))
	out := NewStockLineList(lines[lo:hi])
	out.Total = len(lines)
	if page.Limit > 0 {
		out.Page = &PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(lines)}
	}
	return out
}

// StockLineListResponse listado o resultado de búsqueda.
type StockLineListResponse struct {
	Lines []StockLineResponse `json:"lines"`
	Total int                 `json:"total"`
	Page  *PageResponse       `json:"page,omitempty"`
}

// LabelReportResponse copias de etiqueta solicitadas, impresas y fallidas.
type LabelReportResponse struct {
	Requested int `json:"requested"`
	Printed   int `json:"printed"`
	Failed    int `json:"failed"`
}

// ReceiptResponse respuesta de POST /api/ledger/receipts.
type ReceiptResponse struct {
	OperationID string            `json:"operation_id"`
	Merged      bool              `json:"merged"`
	Line        StockLineResponse `json:"line"`
	// Identifier solo viene informado si se emitió en esta entrada.
	Identifier string              `json:"identifier,omitempty"`
	Labels     LabelReportResponse `json:"labels"`
	// PrintQuantityDefaulted la cantidad de etiquetas no era numérica o superaba el tope y se corrigió.
	PrintQuantityDefaulted bool `json:"print_quantity_defaulted,omitempty"`
}

// DispatchTargetResponse resultado de una referencia del despacho.
type DispatchTargetResponse struct {
	Ref       string           `json:"ref"`
	Status    string           `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
}

// DispatchResponse respuesta de POST /api/ledger/dispatches.
type DispatchResponse struct {
	Success     bool                     `json:"success"`
	OperationID string                   `json:"operation_id,omitempty"`
	Removed     int                      `json:"removed"`
	Adjusted    int                      `json:"adjusted"`
	Skipped     int                      `json:"skipped"`
	Results     []DispatchTargetResponse `json:"results,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
