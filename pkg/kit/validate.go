package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxBodyBytes = 1 << 20

// BodyError is a request body that could not be decoded. Details are safe to
// return to clients; Err keeps the decoder's own message for logs.
type BodyError struct {
	Details map[string]string
	Err     error
}

func (e *BodyError) Error() string { return "decode body: " + e.Err.Error() }

func (e *BodyError) Unwrap() error { return e.Err }

// DecodeJSON reads exactly one JSON value from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return &BodyError{Details: bodyDetails(err), Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return &BodyError{
			Details: map[string]string{"body": "extra data after json object"},
			Err:     fmt.Errorf("trailing data: %v", err),
		}
	}
	return nil
}

func bodyDetails(err error) map[string]string {
	var (
		typeErr *json.UnmarshalTypeError
		sizeErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return map[string]string{typeErr.Field: "wrong type"}
		}
		return map[string]string{"body": "wrong type"}
	case errors.As(err, &sizeErr):
		return map[string]string{"body": "body too large"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return map[string]string{"body": "unknown field"}
	default:
		return map[string]string{"body": "malformed body"}
	}
}

// NewValidator reports failures under JSON field names and knows "notblank".
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}

	return v
}

// FieldErrors flattens validator failures to field -> failed rule.
func FieldErrors(err error) (map[string]string, bool) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Tag()
	}
	return out, true
}
