package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// maxRequestBody caps JSON request bodies read through Decode. The function
// route payloads are a few hundred bytes; webhook bodies have their own cap
// and never go through Decode.
const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status. Encode failures are logged; at that
// point the status line is already on the wire, so nothing else can be done.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err.Error())
	}
}

// OK writes a 200 response with v as the body.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError logs err and writes a 500 with a fixed message. The real
// error goes to the log only; clients and webhook providers see nothing
// about the failure beyond the status.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("internal error", "error", err.Error())
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Decode reads the JSON request body into dst, answering 400 on malformed
// input or a body over the cap. Returns false when the response has already
// been written.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
