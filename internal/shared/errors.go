package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrShopRequired occurs when a request carries no shop scope.
	ErrShopRequired = errors.New("shop id required")
	// ErrConflict indicates the record already exists.
	ErrConflict = errors.New("already exists")
)

// UserSafeMessage returns a message suitable for API consumers. Known domain
// errors pass through verbatim; anything else is masked.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrShopRequired),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrIdempotencyConflict):
		return err.Error()
	}
	return "something went wrong, please retry"
}
