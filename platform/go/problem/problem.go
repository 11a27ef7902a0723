// Package problem renders RFC 7807 problem+json responses. Handlers map
// service errors to these shapes so the boundary stays uniform.
package problem

import (
	"encoding/json"
	"net/http"
)

// Problem type URIs returned in the "type" member.
const (
	TypeValidation   = "https://talenttrack.dev/problems/validation-error"
	TypeUnauthorized = "https://talenttrack.dev/problems/unauthorized"
	TypeForbidden    = "https://talenttrack.dev/problems/forbidden"
	TypeNotFound     = "https://talenttrack.dev/problems/not-found"
	TypeConflict     = "https://talenttrack.dev/problems/conflict"
	TypeUnprocessable = "https://talenttrack.dev/problems/unprocessable"
	TypeInternal     = "https://talenttrack.dev/problems/internal-error"
)

// Details is the serialized problem body. Fields carries per-field
// validation messages as an RFC 7807 extension member.
type Details struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Write emits the problem with the given status code.
func Write(w http.ResponseWriter, status int, typ, title, detail string) {
	write(w, Details{Type: typ, Title: title, Status: status, Detail: detail})
}

// Validation emits a 400 carrying per-field messages.
func Validation(w http.ResponseWriter, fields map[string]string) {
	write(w, Details{
		Type:   TypeValidation,
		Title:  "Validation failed",
		Status: http.StatusBadRequest,
		Detail: "one or more fields are invalid",
		Fields: fields,
	})
}

func write(w http.ResponseWriter, d Details) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(d)
}

// Convenience writers for the common outcomes.

func BadRequest(w http.ResponseWriter, detail string) {
	Write(w, http.StatusBadRequest, TypeValidation, "Invalid request", detail)
}

func Unauthorized(w http.ResponseWriter, detail string) {
	Write(w, http.StatusUnauthorized, TypeUnauthorized, "Unauthorized", detail)
}

func Forbidden(w http.ResponseWriter, detail string) {
	Write(w, http.StatusForbidden, TypeForbidden, "Forbidden", detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	Write(w, http.StatusNotFound, TypeNotFound, "Not found", detail)
}

func Conflict(w http.ResponseWriter, detail string) {
	Write(w, http.StatusConflict, TypeConflict, "Conflict", detail)
}

func Unprocessable(w http.ResponseWriter, detail string) {
	Write(w, http.StatusUnprocessableEntity, TypeUnprocessable, "Unprocessable", detail)
}

func Internal(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, TypeInternal, "Internal error", "an unexpected error occurred")
}
