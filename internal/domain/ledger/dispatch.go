package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TargetStatus resultado por referencia de un despacho.
type TargetStatus string

const (
	TargetRemoved  TargetStatus = "removed"
	TargetAdjusted TargetStatus = "adjusted"
	TargetSkipped  TargetStatus = "skipped"
)

// Motivos de omisión de una referencia.
const (
	SkipUnresolved    = "referencia no encontrada o ya eliminada"
	SkipInvalidAmount = "cantidad de ajuste inválida"
)

// TargetResult detalle de una referencia procesada.
type TargetResult struct {
	Ref       string
	Status    TargetStatus
	Reason    string
	Line      entity.StockLine
	Previous  decimal.Decimal
	Remaining decimal.Decimal
}

// DispatchOutcome resultado agregado de un despacho.
type DispatchOutcome struct {
	Results []TargetResult
}

// Count cuenta los resultados con el estado dado.
func (o DispatchOutcome) Count(s TargetStatus) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

// ApplyDispatch descuenta o elimina las líneas referenciadas.
//
// Sin cantidad la línea se elimina completa; con cantidad se resta y si el resultado
// es <= 0 la línea se elimina (el remanente se descarta). Las referencias que no
// resuelven o con cantidad ilegible se omiten sin abortar el lote. Solo una lista de
// referencias vacía devuelve domain.ErrInvalidRequest.
func ApplyDispatch(t *entity.Table, d entity.Dispatch, now time.Time) (DispatchOutcome, error) {
	if len(d.Targets) == 0 {
		return DispatchOutcome{}, domain.ErrInvalidRequest
	}

	removed := make(map[int]bool)
	out := DispatchOutcome{Results: make([]TargetResult, 0, len(d.Targets))}

	for _, ref := range d.Targets {
		idx := resolve(t, ref, removed)
		if idx < 0 {
			out.Results = append(out.Results, TargetResult{Ref: ref, Status: TargetSkipped, Reason: SkipUnresolved})
			continue
		}
		line := &t.Lines[idx]
		res := TargetResult{Ref: ref, Previous: line.AvailableQuantity}

		raw, hasAmount := d.Adjustments[ref]
		if !hasAmount || strings.TrimSpace(raw) == "" {
			removed[idx] = true
			res.Status = TargetRemoved
			res.Line = *line
			out.Results = append(out.Results, res)
			continue
		}

		amount, ok := ParseQuantity(raw)
		if !ok {
			res.Status = TargetSkipped
			res.Reason = SkipInvalidAmount
			res.Line = *line
			res.Remaining = line.AvailableQuantity
			out.Results = append(out.Results, res)
			continue
		}

		remaining := line.AvailableQuantity.Sub(amount)
		if remaining.LessThanOrEqual(decimal.Zero) {
			removed[idx] = true
			res.Status = TargetRemoved
		} else {
			line.AvailableQuantity = remaining
			line.DateModified = now
			res.Status = TargetAdjusted
			res.Remaining = remaining
		}
		res.Line = *line
		out.Results = append(out.Results, res)
	}

	if len(removed) > 0 {
		kept := t.Lines[:0]
		for i, l := range t.Lines {
			if !removed[i] {
				kept = append(kept, l)
			}
		}
		t.Lines = kept
	}
	return out, nil
}

// IdentifierLength longitud fija de un identificador (QR ID).
const IdentifierLength = 16

// resolve busca la línea viva por posición de carga; si la referencia no es un
// entero no negativo se intenta como identificador. Una referencia numérica con la
// longitud de un identificador se busca primero como identificador.
func resolve(t *entity.Table, ref string, removed map[int]bool) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	if len(ref) == IdentifierLength {
		if i := byIdentifier(t, ref, removed); i >= 0 {
			return i
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 {
			return -1
		}
		for i := range t.Lines {
			if t.Lines[i].Row == n && !removed[i] {
				return i
			}
		}
		return -1
	}
	return byIdentifier(t, ref, removed)
}

func byIdentifier(t *entity.Table, id string, removed map[int]bool) int {
	for i := range t.Lines {
		if t.Lines[i].Identifier == id && !removed[i] {
			return i
		}
	}
	return -1
}
