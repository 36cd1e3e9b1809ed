package guardrail

import (
	"context"
	"encoding/json"

	"github.com/mbergo/guardrails/pkg/api"
)

// Check categories as shown in the sidebar catalog.
const (
	CategoryBase  = "Level 1 Base"
	CategoryEdge  = "Edge Case Rails"
	CategoryOther = "Other Rails"
)

// StatusAPIFailure marks a verdict that only surfaces an upstream call
// failure; the check's own heuristic never ran.
const StatusAPIFailure = "error_api_failure"

// Input is what a check evaluates: the prompt that was sent and the call
// outcome that came back.
type Input struct {
	Prompt string
	Result api.CallResult
}

// Verdict is one check's judgment. Status strings follow the
// success/warning/error families; Fields carries check-specific payload
// merged flat into the JSON object next to status and message.
type Verdict struct {
	Status  string
	Message string
	Fields  map[string]any
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v.Fields)+2)
	for k, val := range v.Fields {
		out[k] = val
	}
	out["status"] = v.Status
	if v.Message != "" {
		out["message"] = v.Message
	}
	return json.Marshal(out)
}

// Check is one guardrail: identity and catalog metadata plus the heuristic
// applied to a call outcome. Evaluate never errors; anything that goes wrong
// becomes a verdict.
type Check interface {
	ID() string
	Name() string
	Category() string

	// DefaultPrompt is sent when the caller supplies none; SystemMessage
	// frames the model the way the check expects (may be empty).
	DefaultPrompt() string
	SystemMessage() string

	Evaluate(ctx context.Context, in Input) Verdict
}

// meta carries the catalog identity shared by every check implementation.
type meta struct {
	id            string
	name          string
	category      string
	defaultPrompt string
	systemMessage string
}

func (m meta) ID() string            { return m.id }
func (m meta) Name() string          { return m.name }
func (m meta) Category() string      { return m.category }
func (m meta) DefaultPrompt() string { return m.defaultPrompt }
func (m meta) SystemMessage() string { return m.systemMessage }

// Descriptor is the catalog entry for one check.
type Descriptor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	DefaultPrompt string `json:"default_prompt"`
	SystemMessage string `json:"system_message,omitempty"`
}

func describe(c Check) Descriptor {
	return Descriptor{
		ID:            c.ID(),
		Name:          c.Name(),
		Category:      c.Category(),
		DefaultPrompt: c.DefaultPrompt(),
		SystemMessage: c.SystemMessage(),
	}
}

// Registry is the ordered, closed catalog of checks.
type Registry struct {
	ordered []Check
	byID    map[string]Check
}

func NewRegistry(checks ...Check) *Registry {
	r := &Registry{byID: make(map[string]Check, len(checks))}
	for _, c := range checks {
		if _, exists := r.byID[c.ID()]; exists {
			continue
		}
		r.ordered = append(r.ordered, c)
		r.byID[c.ID()] = c
	}
	return r
}

// List returns descriptors in catalog order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, describe(c))
	}
	return out
}

func (r *Registry) Get(id string) (Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// passthrough surfaces the raw call outcome unchanged. Checks use it for
// upstream failures and it is the whole behavior of the API-failure check.
func passthrough(result api.CallResult) Verdict {
	if !result.OK() {
		v := Verdict{Status: StatusAPIFailure, Message: result.Message()}
		if details := result.Details(); details != nil {
			v.Fields = map[string]any{"details": details}
		}
		return v
	}
	return Verdict{Status: "success", Fields: map[string]any{"ai_output": result.Text()}}
}

// stringList keeps empty listings as [] rather than null on the wire.
func stringList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
