package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// LabelHandler vista previa y reimpresión de etiquetas.
type LabelHandler struct {
	uc *inventory.LedgerUseCase
}

// NewLabelHandler construye el handler.
func NewLabelHandler(uc *inventory.LedgerUseCase) *LabelHandler {
	return &LabelHandler{uc: uc}
}

// PDF godoc
// @Summary      Vista previa PDF de la etiqueta
// @Tags         labels
// @Produce      application/pdf
// @Param        identifier  path  string  true  "QR ID"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/labels/{identifier}/pdf [get]
func (h *LabelHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("identifier")
	b, err := h.uc.LabelPDF(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+id+`.pdf"`)
	return c.Send(b)
}

// Reprint godoc
// @Summary      Reimprimir etiqueta
// @Description  Imprime N copias de la etiqueta de una línea viva. Nunca emite un identificador nuevo.
// @Tags         labels
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        identifier  path   string              true   "QR ID"
// @Param        copies      query  string              false  "copias (por defecto 1)"
// @Param        body        body   dto.ReprintRequest  false  "copies"
// @Success      200  {object}  dto.LabelReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/labels/{identifier}/reprint [post]
func (h *LabelHandler) Reprint(c *fiber.Ctx) error {
	var in dto.ReprintRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if q := c.Query("copies"); q != "" {
		in.Copies = dto.Amount(q)
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	rep, err := h.uc.Reprint(c.Context(), c.Params("identifier"), string(in.Copies))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LabelReportResponse{Requested: rep.Requested, Printed: rep.Printed, Failed: rep.Failed})
}
