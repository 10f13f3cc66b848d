package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tsawler/docmorph"
)

// httpError is an error with the status and kind sent to the client.
type httpError struct {
	status int
	kind   string
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) *httpError {
	return &httpError{status: http.StatusBadRequest, kind: "bad_request", msg: msg}
}

func tooLarge(limit int64) *httpError {
	return &httpError{
		status: http.StatusRequestEntityTooLarge,
		kind:   "too_large",
		msg:    "File too large. Maximum size is " + humanSize(limit),
	}
}

// conversionError maps a conversion error to its response.
func conversionError(err error) *httpError {
	kind := docmorph.KindOf(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, docmorph.ErrUnsupportedConversion), errors.Is(err, docmorph.ErrUnreadableSource):
		status = http.StatusBadRequest
	case errors.Is(err, docmorph.ErrMalformedTable):
		status = http.StatusUnprocessableEntity
	}
	return &httpError{status: status, kind: kind, msg: "Conversion failed: " + err.Error()}
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

func writeError(w http.ResponseWriter, err error) {
	var he *httpError
	if !errors.As(err, &he) {
		he = &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()}
	}
	writeJSON(w, he.status, map[string]string{"error": he.msg, "kind": he.kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
