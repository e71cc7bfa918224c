package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/courgette-crush/internal/api/apierr"
	"github.com/mcoot/courgette-crush/internal/api/request"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody reads a JSON body into dst and validates it. An empty body is
// only accepted when every field is optional.
func decodeBody(r *http.Request, dst request.Validator, optional bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !optional || !errors.Is(err, io.EOF) {
			return NewInvalidRequestError("invalid request body")
		}
	}
	if err := dst.Validate(); err != nil {
		return NewInvalidRequestError(err.Error())
	}
	return nil
}
