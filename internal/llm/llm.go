package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mbergo/guardrails/internal/httpclient"
	"github.com/mbergo/guardrails/pkg/api"
)

// UpstreamRequest is a fully built provider HTTP call: everything the
// transport needs and nothing provider-specific beyond the payload itself.
type UpstreamRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{}
}

// Adapter converts between the canonical call shapes and one upstream API.
// Implementations are pure: they build requests and parse payloads but never
// perform I/O. The gateway and catalog fetcher own the HTTP clients and
// timeouts.
type Adapter interface {
	Provider() api.Provider

	// GenerateRequest builds the provider-specific generation call. The key
	// is passed in per call; adapters hold no credentials.
	GenerateRequest(req *api.CallRequest, apiKey string) *UpstreamRequest

	// ParseGenerateResponse turns a raw upstream reply into a canonical
	// result. Every status code and body shape yields a value, never an
	// error or panic.
	ParseGenerateResponse(status int, body []byte) api.CallResult

	// ModelsRequest builds the model-listing call.
	ModelsRequest(apiKey string) *UpstreamRequest

	// ParseModels filters and sorts the provider's listing payload into the
	// canonical descriptor list.
	ParseModels(body []byte) ([]api.ModelDescriptor, error)

	// DefaultModel picks the default from an already filtered and sorted
	// list. It never re-validates capability: the list is trusted as is.
	DefaultModel(models []api.ModelDescriptor) string
}

// AdapterSet is the closed dispatch table from provider to adapter. The
// gateway and the catalog both resolve adapters through it, so any provider
// that parses also dispatches.
type AdapterSet map[api.Provider]Adapter

// For returns the adapter registered for p.
func (s AdapterSet) For(p api.Provider) (Adapter, bool) {
	a, ok := s[p]
	return a, ok
}

// Credentials maps providers to their configured API keys. An empty key means
// the provider is not configured.
type Credentials map[api.Provider]string

// Resolve returns the key for p and whether one is configured.
func (c Credentials) Resolve(p api.Provider) (string, bool) {
	key := c[p]
	return key, key != ""
}

// JSONInstruction is appended to the outgoing prompt when JSON output was
// requested but nothing in the request mentions JSON yet.
const JSONInstruction = "\n\nRespond strictly in JSON format."

// SafetyBlockMessage is the canonical failure message for a generation the
// upstream refused on safety grounds.
const SafetyBlockMessage = "Content blocked by API due to safety ratings."

// MentionsJSON reports whether any of the given texts already talks about
// JSON, which suppresses the auto-appended format instruction.
func MentionsJSON(texts ...string) bool {
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), "json") {
			return true
		}
	}
	return false
}

// UpstreamFailure is the canonical failure for a non-2xx provider reply: the
// extracted upstream message plus the full raw payload for diagnostics.
func UpstreamFailure(status int, body []byte) api.CallResult {
	msg := fmt.Sprintf("API Error (%d): %s", status, httpclient.ExtractMessage(body))
	return api.Failure(msg, RawDetails(body))
}

// RawDetails wraps an upstream body for the details field. Non-JSON bodies
// are carried as a JSON string so the result always marshals cleanly.
func RawDetails(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
