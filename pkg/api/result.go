package api

import (
	"encoding/json"
	"fmt"
)

// CallResult is the outcome of a gateway call: either a text result or an
// error message with optional raw upstream details. The variant state is
// unexported so callers go through OK() and cannot read both branches.
type CallResult struct {
	ok      bool
	text    string
	message string
	details json.RawMessage
}

// Success wraps the extracted model output text.
func Success(text string) CallResult {
	return CallResult{ok: true, text: text}
}

// Failure wraps a human-readable error message and, when available, the raw
// provider payload that produced it.
func Failure(message string, details json.RawMessage) CallResult {
	return CallResult{message: message, details: details}
}

// Failuref is Failure with fmt-style formatting and no details payload.
func Failuref(format string, args ...any) CallResult {
	return CallResult{message: fmt.Sprintf(format, args...)}
}

func (r CallResult) OK() bool { return r.ok }

// Text returns the model output. Empty unless OK.
func (r CallResult) Text() string { return r.text }

// Message returns the error message. Empty when OK.
func (r CallResult) Message() string { return r.message }

// Details returns the raw provider payload attached to a failure, or nil.
func (r CallResult) Details() json.RawMessage { return r.details }

// MarshalJSON emits exactly one variant: {"result": ...} on success,
// {"error": ..., "details": ...} on failure.
func (r CallResult) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(struct {
			Result string `json:"result"`
		}{r.text})
	}
	return json.Marshal(struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details,omitempty"`
	}{r.message, r.details})
}

func (r *CallResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Result  *string         `json:"result"`
		Error   *string         `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.Error != nil:
		*r = Failure(*wire.Error, wire.Details)
	case wire.Result != nil:
		*r = Success(*wire.Result)
	default:
		return fmt.Errorf("call result has neither result nor error")
	}
	return nil
}
