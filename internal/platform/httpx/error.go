package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/manira/api/internal/platform/requestctx"
)

// Error is the canonical JSON error envelope returned by every endpoint.
// Code is a stable machine-readable identifier; Message is human-readable.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error, defaulting a zero status to 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// WithDetails attaches additional JSON-serialisable metadata. The map is
// copied so callers can reuse theirs.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}
	e.Details = copied
	return e
}

type errorBody struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`

	extra map[string]any
}

func (b errorBody) MarshalJSON() ([]byte, error) {
	type plain errorBody
	if len(b.extra) == 0 {
		return json.Marshal(plain(b))
	}
	base, err := json.Marshal(plain(b))
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(b.extra)+5)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range b.extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// WriteError writes err as JSON, stamping the request and trace identifiers
// taken from ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := errorBody{
		Code:      err.Code,
		Message:   err.Message,
		Status:    status,
		RequestID: sanitize(middleware.GetReqID(ctx), 80),
		TraceID:   sanitize(requestctx.TraceID(ctx), 64),
		extra:     err.Details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
