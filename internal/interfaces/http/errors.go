package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusFor traduce errores de dominio a status HTTP y código de error.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	case errors.Is(err, domain.ErrStoreCorrupt):
		return fiber.StatusInternalServerError, "STORE_CORRUPT"
	case errors.Is(err, domain.ErrIdentifierExhausted):
		return fiber.StatusServiceUnavailable, "IDENTIFIERS_EXHAUSTED"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// validationMessage resume el primer error del validador.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field() + ": regla " + fe.Tag() + " " + fe.Param()
	}
	return err.Error()
}
