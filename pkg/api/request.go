package api

// CallRequest is the provider-agnostic call shape accepted by the gateway.
// The provider field is kept as a raw string here so an unknown value can be
// answered with a value-level result instead of a binding failure.
type CallRequest struct {
	Provider string `json:"provider" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Prompt   string `json:"prompt" binding:"required"`

	// Optional system framing. Google merges it into the prompt text,
	// OpenAI carries it as a separate leading message.
	SystemMessage string `json:"system_message,omitempty"`

	// LLM parameters, always forwarded upstream.
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	// EnableWebSearch is only meaningful for the Google provider. Other
	// providers ignore it rather than reject it.
	EnableWebSearch bool `json:"enable_web_search,omitempty"`

	// RequestJSONOutput switches the upstream call into JSON mode where the
	// model supports it.
	RequestJSONOutput bool `json:"request_json_output,omitempty"`
}
