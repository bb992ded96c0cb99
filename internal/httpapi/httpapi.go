// Package httpapi holds shared JSON request/response helpers for the HTTP API.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// A single validator instance is used, because it caches struct parsing.
// Field names in validation errors come from json tags so clients see the
// wire names, not Go identifiers.
func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Response is the generic error/status response body.
type Response struct {
	Message string  `json:"message"`
	Errors  []Error `json:"errors,omitempty"`
}

// Error represents an error scoped to a single input field.
type Error struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// Write encodes response as JSON and writes it with the given status.
// The body is buffered first so an encoding failure never produces a
// half-written 200.
func Write(rw http.ResponseWriter, status int, response any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(response); err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	_, _ = rw.Write(buf.Bytes())
}

// InternalError writes a generic 500 response. Internal detail stays out of
// the body; callers are expected to log it.
func InternalError(rw http.ResponseWriter, message string) {
	Write(rw, http.StatusInternalServerError, Response{Message: message})
}

// ValidationFailed writes a 422 response carrying per-field errors.
func ValidationFailed(rw http.ResponseWriter, fieldErrors []Error) {
	Write(rw, http.StatusUnprocessableEntity, Response{
		Message: "validation failed",
		Errors:  fieldErrors,
	})
}

// Read decodes the JSON request body into value and validates it.
// Returns false after writing an error response: 422 with field detail for
// type mismatches and validation failures, 400 for unparseable JSON.
func Read(rw http.ResponseWriter, r *http.Request, value any) bool {
	return decode(rw, json.NewDecoder(r.Body).Decode(value), value)
}

// Decode unmarshals an already-read JSON body into value and validates it,
// with the same error responses as Read. Used by handlers that need the raw
// body as well (e.g. to check key presence).
func Decode(rw http.ResponseWriter, data []byte, value any) bool {
	return decode(rw, json.Unmarshal(data, value), value)
}

func decode(rw http.ResponseWriter, err error, value any) bool {
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			ValidationFailed(rw, []Error{{
				Field:  typeErr.Field,
				Detail: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}})
			return false
		}
		Write(rw, http.StatusBadRequest, Response{
			Message: fmt.Sprintf("read body: %s", err.Error()),
		})
		return false
	}
	return Validate(rw, value)
}

// Validate runs struct validation on value. Returns false after writing a 422
// response with per-field errors when validation fails.
func Validate(rw http.ResponseWriter, value any) bool {
	err := validate.Struct(value)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apiErrors := make([]Error, 0, len(validationErrors))
		for _, validationError := range validationErrors {
			apiErrors = append(apiErrors, Error{
				Field:  validationError.Field(),
				Detail: fmt.Sprintf("failed %q check (value: %v)", validationError.Tag(), validationError.Value()),
			})
		}
		ValidationFailed(rw, apiErrors)
		return false
	}
	if err != nil {
		InternalError(rw, fmt.Sprintf("validation: %s", err.Error()))
		return false
	}
	return true
}

// Pagination bounds for list endpoints.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 50
)

// ParsePagination reads skip and limit query parameters, applying defaults
// and range checks (skip >= 0, limit in [1,100]). Returns false after writing
// a 422 response when a parameter is malformed or out of range.
func ParsePagination(rw http.ResponseWriter, r *http.Request, defaultSkip int) (skip, limit int, ok bool) {
	skip = defaultSkip
	limit = DefaultLimit

	if raw := r.URL.Query().Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ValidationFailed(rw, []Error{{Field: "skip", Detail: fmt.Sprintf("must be a non-negative integer, got %q", raw)}})
			return 0, 0, false
		}
		skip = n
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < MinLimit || n > MaxLimit {
			ValidationFailed(rw, []Error{{Field: "limit", Detail: fmt.Sprintf("must be an integer in [%d,%d], got %q", MinLimit, MaxLimit, raw)}})
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}
