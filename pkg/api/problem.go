package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem implements RFC 9457 for transport-level errors (bad JSON, failed
// validation, unknown routes). Upstream AI failures never use this shape;
// they travel as CallResult values.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]any `json:"-"`

	// Log carries the internal cause for server-side logging only.
	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type alias Problem

	data := make(map[string]any)
	for k, v := range p.Extensions {
		data[k] = v
	}

	std, _ := json.Marshal(alias(*p))
	_ = json.Unmarshal(std, &data)

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// NewProblem creates a generic Problem
func NewProblem(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]any),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value any) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// ValidationProblem carries per-field binding failures
func ValidationProblem(fields map[string]string) *Problem {
	return NewProblem(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", fields),
	)
}

// BadRequestProblem creates a standard error for a bad request
func BadRequestProblem(detail string, opts ...ProblemOption) *Problem {
	return NewProblem(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// NotFoundProblem creates a standard 404 error
func NotFoundProblem(detail string) *Problem {
	return NewProblem(http.StatusNotFound, "Not Found", detail)
}

// InternalProblem creates a standard error for any internal server error
func InternalProblem(detail string, err error) *Problem {
	return NewProblem(http.StatusInternalServerError, "Internal Server Error", detail, WithLog(err))
}

// RateLimitProblem creates standard 429 rate limit error
func RateLimitProblem(detail string) *Problem {
	return NewProblem(http.StatusTooManyRequests, "Too Many Requests", detail)
}
