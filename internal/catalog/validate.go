package catalog

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

var validate = kit.NewValidator()

// validated is the validation gate for mutating routes: it decodes the body
// into T, validates it and hands it to next through the request context.
// Rejections go to onErr.
func validated[T any](log *zap.Logger, onErr func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req T
			if err := decodeJSON(w, r, &req); err != nil {
				var be *kit.BodyError
				if errors.As(err, &be) {
					log.Debug("rejected request body", zap.Error(be), zap.String("path", r.URL.Path))
				}
				onErr(w, r, err)
				return
			}
			if err := validate.Struct(&req); err != nil {
				onErr(w, r, validationError(err))
				return
			}

			ctx := context.WithValue(r.Context(), bodyKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bodyFrom[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(bodyKey).(T)
	return v, ok
}

// decodeJSON wraps decoder failures in a ValidationError whose details carry
// no decoder text. The original error stays reachable through Unwrap.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := kit.DecodeJSON(w, r, dst, false)
	if err == nil {
		return nil
	}

	var be *kit.BodyError
	if !errors.As(err, &be) {
		return err
	}
	return &ValidationError{Message: "invalid JSON", Details: be.Details, cause: be}
}

func validationError(err error) error {
	details, ok := kit.FieldErrors(err)
	if !ok {
		return err
	}
	return &ValidationError{Message: "validation failed", Details: details}
}
