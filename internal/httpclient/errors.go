package httpclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpstreamError represents an error returned by an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// UpstreamMessage extracts the human-readable message from the error body.
func (e *UpstreamError) UpstreamMessage() string {
	return ExtractMessage(e.Body)
}

// ExtractMessage pulls the conventional error.message field out of an
// upstream JSON payload, falling back to the raw body text. Both Google and
// OpenAI style APIs follow the {"error": {"message": ...}} convention.
func ExtractMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}
