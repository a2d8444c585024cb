package inventory

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// List devuelve todas las líneas del ledger. Lee sin la sección crítica: puede
// observar un snapshot que se está reemplazando, solo sirve para mostrar.
func (uc *LedgerUseCase) List(ctx context.Context) ([]entity.StockLine, error) {
	t, err := uc.store.Load(ctx)
	if err != nil {
		uc.recordStoreError(err)
		return nil, err
	}
	return t.Lines, nil
}

// Search filtra por subcadena en código de artículo, descripción e identificador,
// sin distinguir mayúsculas (case folding Unicode). q vacío devuelve todo.
func (uc *LedgerUseCase) Search(ctx context.Context, q string) ([]entity.StockLine, error) {
	lines, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return lines, nil
	}

	// cases.Caser no es seguro para uso concurrente: uno por llamada.
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]entity.StockLine, 0)
	for _, l := range lines {
		if strings.Contains(fold.String(l.ArticleCode), needle) ||
			strings.Contains(fold.String(l.Description), needle) ||
			strings.Contains(fold.String(l.Identifier), needle) {
			out = append(out, l)
		}
	}
	return out, nil
}

// FindByIdentifier devuelve la línea viva con el identificador, o domain.ErrNotFound.
func (uc *LedgerUseCase) FindByIdentifier(ctx context.Context, identifier string) (entity.StockLine, error) {
	lines, err := uc.List(ctx)
	if err != nil {
		return entity.StockLine{}, err
	}
	identifier = strings.TrimSpace(identifier)
	for _, l := range lines {
		if identifier != "" && l.Identifier == identifier {
			return l, nil
		}
	}
	return entity.StockLine{}, errNotFound(identifier)
}
