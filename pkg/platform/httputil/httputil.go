package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	dErrors "atelier/pkg/domain-errors"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeProblem = "application/problem+json"

	maxBodyBytes = 1 << 20
)

// Problem is an RFC 9457 problem document extended with the domain code.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code"`
}

// StatusFor maps a domain code to the HTTP status the delivery layer returns.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound, dErrors.CodeRoleNotFound:
		return http.StatusNotFound
	case dErrors.CodeAlreadyExists, dErrors.CodeCancelledRegistrationCheckin:
		return http.StatusConflict
	case dErrors.CodeRoleForbidden:
		return http.StatusForbidden
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as problem+json. Internal errors never leak detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	problem := Problem{
		Type:   "urn:atelier:error:" + string(code),
		Title:  http.StatusText(status),
		Status: status,
		Code:   string(code),
	}
	if code != dErrors.CodeInternal {
		problem.Detail = dErrors.MessageOf(err)
	}
	writeBody(w, status, contentTypeProblem, problem)
}

// WriteJSON renders v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeBody(w, status, contentTypeJSON, v)
}

func writeBody(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields.
// Failures are returned as invalid input.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.InvalidInput("request_body_required")
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, contentTypeJSON) {
		return dErrors.InvalidInput("content_type_must_be_json")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.InvalidInput("request_body_required")
		}
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "request_body_invalid")
	}
	return nil
}
