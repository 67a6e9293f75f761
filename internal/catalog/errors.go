package catalog

import (
	"errors"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("product not found")

// ValidationError is a rejected request payload or query. Details maps the
// offending field to the rule it failed.
type ValidationError struct {
	Message string
	Details map[string]string

	cause error
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}

	fields := make([]string, 0, len(e.Details))
	for f, rule := range e.Details {
		fields = append(fields, f+"="+rule)
	}
	sort.Strings(fields)
	return e.Message + ": " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return e.cause }
