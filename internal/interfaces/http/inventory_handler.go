package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// InventoryHandler maneja entradas, salidas y consultas del ledger.
type InventoryHandler struct {
	uc  *inventory.LedgerUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{uc: uc, log: log}
}

// Receive godoc
// @Summary      Registrar entrada de mercancía
// @Description  Consolida por (artículo, GRN, P/O, ubicación, descripción) o crea una línea nueva.
//
//	Si se emite un identificador QR se imprimen print_quantity etiquetas.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "po, grn, article_code, supplier_batch, location, item, quantity, print_quantity"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ledger/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	res, err := h.uc.ReceiveFromRequest(c.Context(), in)
	if err != nil {
		h.log.Warn().Err(err).Str("station_id", GetStationID(c)).Msg("entrada rechazada")
		return writeError(c, err)
	}
	out := res.Outcome
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiptResponse{
		OperationID: res.OperationID,
		Merged:      out.Merged,
		Line:        dto.NewStockLineResponse(out.Line),
		Identifier:  out.Identifier,
		Labels: dto.LabelReportResponse{
			Requested: res.Labels.Requested,
			Printed:   res.Labels.Printed,
			Failed:    res.Labels.Failed,
		},
		PrintQuantityDefaulted: out.PrintCountInvalid,
	})
}

// Dispatch godoc
// @Summary      Registrar salida de mercancía
// @Description  Sin cantidad la línea se elimina; con cantidad se descuenta y si llega a 0 o menos se elimina.
//
//	Las referencias que no resuelven o con cantidad ilegible se omiten sin abortar el lote.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchRequest  true  "rows (índices o identificadores), adjust {ref: cantidad}"
// @Success      200   {object}  dto.DispatchResponse
// @Failure      400   {object}  dto.DispatchResponse
// @Failure      503   {object}  dto.DispatchResponse
// @Router       /api/ledger/dispatches [post]
func (h *InventoryHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.DispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.DispatchResponse{Success: false, Error: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.DispatchResponse{Success: false, Error: validationMessage(err)})
	}
	res, err := h.uc.DispatchFromRequest(c.Context(), in)
	if err != nil {
		h.log.Warn().Err(err).Str("station_id", GetStationID(c)).Msg("despacho rechazado")
		status, _ := statusFor(err)
		return c.Status(status).JSON(dto.DispatchResponse{Success: false, Error: err.Error()})
	}

	out := res.Outcome
	resp := dto.DispatchResponse{
		Success:     true,
		OperationID: res.OperationID,
		Removed:     out.Count(ledger.TargetRemoved),
		Adjusted:    out.Count(ledger.TargetAdjusted),
		Skipped:     out.Count(ledger.TargetSkipped),
		Results:     make([]dto.DispatchTargetResponse, 0, len(out.Results)),
	}
	for _, r := range out.Results {
		tr := dto.DispatchTargetResponse{Ref: r.Ref, Status: string(r.Status), Reason: r.Reason}
		if r.Status == ledger.TargetAdjusted {
			remaining := r.Remaining
			tr.Remaining = &remaining
		}
		resp.Results = append(resp.Results, tr)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar líneas del ledger
// @Tags         ledger
// @Produce      json
// @Param        limit   query  int  false  "tamaño de página (0 = todas)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.StockLineListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/ledger/lines [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	lines, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockLinePage(lines, page))
}

// Search godoc
// @Summary      Buscar líneas
// @Description  Subcadena sin distinguir mayúsculas en código de artículo, descripción e identificador.
// @Tags         ledger
// @Produce      json
// @Param        q  query  string  false  "texto a buscar; vacío devuelve todo"
// @Success      200  {object}  dto.StockLineListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/ledger/search [get]
func (h *InventoryHandler) Search(c *fiber.Ctx) error {
	lines, err := h.uc.Search(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockLineList(lines))
}
