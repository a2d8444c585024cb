package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// IdentifierIssuer emite identificadores únicos (implementado por el registro de QR IDs).
type IdentifierIssuer interface {
	Issue(ctx context.Context) (string, error)
}

// ReceiptOutcome resultado de aplicar una entrada al snapshot.
type ReceiptOutcome struct {
	Merged bool
	// Index posición de la línea afectada dentro de table.Lines.
	Index int
	Line  entity.StockLine
	// Identifier solo se informa si se emitió en esta llamada.
	Identifier string
	// PrintCount copias de etiqueta a imprimir (0 si no se emitió identificador).
	PrintCount        int
	PrintCountInvalid bool
}

// ApplyReceipt consolida la entrada en la primera línea con la misma clave compuesta
// o agrega una línea nueva. Emite un identificador cuando la línea no lo tiene y la
// entrada trae código de artículo, descripción y lote.
//
// Si la cantidad no es un decimal no negativo devuelve domain.ErrInvalidInput y la
// tabla queda sin cambios.
func ApplyReceipt(ctx context.Context, t *entity.Table, r entity.Receipt, issuer IdentifierIssuer, now time.Time) (ReceiptOutcome, error) {
	qty, ok := ParseQuantity(r.Quantity)
	if !ok {
		return ReceiptOutcome{}, fmt.Errorf("cantidad %q: %w", r.Quantity, domain.ErrInvalidInput)
	}
	t.EnsureColumn(entity.ColIdentifier)

	idx := FindByKey(t, r.Key())
	out := ReceiptOutcome{Merged: idx >= 0, Index: idx}

	var line entity.StockLine
	if out.Merged {
		line = t.Lines[idx]
		line.AvailableQuantity = line.AvailableQuantity.Add(qty)
		line.SupplierBatch = r.SupplierBatch
		line.DateModified = now
	} else {
		line = entity.StockLine{
			Row:               len(t.Lines),
			ArticleCode:       r.ArticleCode,
			Description:       r.Description,
			PurchaseOrder:     r.PurchaseOrder,
			GRNRef:            r.GRNRef,
			SupplierBatch:     r.SupplierBatch,
			Location:          r.Location,
			AvailableQuantity: qty,
			DateModified:      now,
			DateCounted:       now,
			AllocatedQuantity: decimal.Zero,
		}
	}

	if line.Identifier == "" && labelable(r) {
		id, err := issuer.Issue(ctx)
		if err != nil {
			return ReceiptOutcome{}, fmt.Errorf("emitir identificador: %w", err)
		}
		line.Identifier = id
		out.Identifier = id
		out.PrintCount, ok = ParsePrintCount(r.LabelPrintCount)
		out.PrintCountInvalid = !ok
	}

	if out.Merged {
		t.Lines[idx] = line
	} else {
		t.Lines = append(t.Lines, line)
		out.Index = len(t.Lines) - 1
	}
	out.Line = line
	return out, nil
}

// FindByKey devuelve el índice de la primera línea con la clave dada, o -1.
func FindByKey(t *entity.Table, key entity.CompositeKey) int {
	for i := range t.Lines {
		if t.Lines[i].Key() == key {
			return i
		}
	}
	return -1
}

func labelable(r entity.Receipt) bool {
	return r.ArticleCode != "" && r.Description != "" && r.SupplierBatch != ""
}
