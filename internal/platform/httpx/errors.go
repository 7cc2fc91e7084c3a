package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Module-specific sentinels are mapped by the module handlers before
// falling through to this catch-all.
func RespondError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrShopRequired):
		Problem(w, http.StatusBadRequest, "Shop Required", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConflict), errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Conflict", shared.UserSafeMessage(err))
	case errors.As(err, &validationErrs):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", validationErrs.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
