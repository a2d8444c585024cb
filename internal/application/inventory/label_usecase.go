package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// Reprint imprime de nuevo la etiqueta de una línea viva. Nunca emite un identificador nuevo.
// copies sigue las reglas de la entrada: vacío o no numérico -> 1, negativo -> 0.
func (uc *LedgerUseCase) Reprint(ctx context.Context, identifier, copies string) (labels.Report, error) {
	line, err := uc.FindByIdentifier(ctx, identifier)
	if err != nil {
		return labels.Report{}, err
	}
	count, _ := ledger.ParsePrintCount(copies)
	rep := uc.labels.Issue(ctx, entity.LabelFromLine(line), count)
	uc.log.Info().
		Str("identifier", line.Identifier).
		Int("printed", rep.Printed).
		Int("failed", rep.Failed).
		Msg("reimpresión de etiqueta")
	return rep, nil
}

// LabelPDF genera la vista previa PDF de la etiqueta de una línea viva.
func (uc *LedgerUseCase) LabelPDF(ctx context.Context, identifier string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("vista previa PDF no configurada: %w", domain.ErrNotFound)
	}
	line, err := uc.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateLabelPDF(ctx, entity.LabelFromLine(line))
}

func errNotFound(identifier string) error {
	return fmt.Errorf("identificador %q: %w", identifier, domain.ErrNotFound)
}
