package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

const maxBodyBytes = 1 << 20

// ReadJSON decodes a single JSON value from the request body into data.
// Unknown fields are rejected.
func ReadJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeErr.Offset)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return err
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// WriteJSON writes data as JSON with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}
	for _, h := range headers {
		for k, v := range h {
			w.Header()[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	return err
}

// ErrorJSON writes the standard error envelope
func ErrorJSON(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, models.Response{
		Error:   true,
		Status:  "error",
		Message: err.Error(),
	})
}

func BadRequest(w http.ResponseWriter, err error) {
	ErrorJSON(w, http.StatusBadRequest, err)
}

func NotFound(w http.ResponseWriter, err error) {
	ErrorJSON(w, http.StatusNotFound, err)
}

func Unauthorized(w http.ResponseWriter, err error) {
	ErrorJSON(w, http.StatusUnauthorized, err)
}

// ServerError hides the cause from the client; callers log it.
func ServerError(w http.ResponseWriter, err error) {
	ErrorJSON(w, http.StatusInternalServerError, errors.New("internal server error"))
}
