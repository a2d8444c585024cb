package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ReceiveFromRequest adapta el request HTTP al caso de uso Receive(ctx, entity.Receipt).
func (uc *LedgerUseCase) ReceiveFromRequest(ctx context.Context, in dto.ReceiptRequest) (*ReceiptResult, error) {
	return uc.Receive(ctx, in.ToEntity())
}

// DispatchFromRequest adapta el request HTTP al caso de uso Dispatch(ctx, entity.Dispatch).
func (uc *LedgerUseCase) DispatchFromRequest(ctx context.Context, in dto.DispatchRequest) (*DispatchResult, error) {
	return uc.Dispatch(ctx, in.ToEntity())
}
