package google

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/pkg/api"
)

// Adapter speaks the Gemini generateContent API. Auth rides in the URL as a
// query parameter, never in a header.
type Adapter struct {
	baseURL string
}

func NewAdapter(baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Adapter) Provider() api.Provider { return api.ProviderGoogle }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// searchTool marshals to {"googleSearchRetrieval": {}}.
type searchTool struct {
	GoogleSearchRetrieval struct{} `json:"googleSearchRetrieval"`
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	Tools            []searchTool     `json:"tools,omitempty"`
}

type candidate struct {
	Content       geminiContent   `json:"content"`
	FinishReason  string          `json:"finishReason"`
	SafetyRatings json.RawMessage `json:"safetyRatings"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// GenerateRequest builds the generateContent call. A system message is
// folded into the prompt text itself: the one-shot call carries a single
// user turn, so framing travels inline as "<system>\n\nUser Query: <prompt>".
func (a *Adapter) GenerateRequest(req *api.CallRequest, apiKey string) *llm.UpstreamRequest {
	finalPrompt := req.Prompt
	if req.SystemMessage != "" {
		finalPrompt = fmt.Sprintf("%s\n\nUser Query: %s", req.SystemMessage, req.Prompt)
	}

	body := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	// JSON mode is gated on the model id: only gemini-1.5 models honor the
	// responseMimeType switch.
	if req.RequestJSONOutput && strings.Contains(req.Model, "gemini-1.5") {
		body.GenerationConfig.ResponseMimeType = "application/json"
		if !llm.MentionsJSON(finalPrompt, req.SystemMessage) {
			finalPrompt += llm.JSONInstruction
		}
	}

	if req.EnableWebSearch {
		body.Tools = []searchTool{{}}
	}

	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: finalPrompt}}}}

	return &llm.UpstreamRequest{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", a.baseURL, req.Model, apiKey),
		Body:   body,
	}
}

// ParseGenerateResponse normalizes a Gemini reply. A safety block outranks
// text extraction: a 200 whose first candidate finished with SAFETY is an
// error result carrying that candidate's ratings.
func (a *Adapter) ParseGenerateResponse(status int, body []byte) api.CallResult {
	if status < 200 || status >= 300 {
		return llm.UpstreamFailure(status, body)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return api.Failuref("Error calling AI provider: %v", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == "SAFETY" {
		ratings := resp.Candidates[0].SafetyRatings
		if ratings == nil {
			ratings = json.RawMessage("[]")
		}
		return api.Failure(llm.SafetyBlockMessage, ratings)
	}

	// Missing path segments default to empty output rather than erroring.
	text := ""
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		text = resp.Candidates[0].Content.Parts[0].Text
	}
	return api.Success(text)
}

type modelEntry struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type modelsResponse struct {
	Models []modelEntry `json:"models"`
}

func (a *Adapter) ModelsRequest(apiKey string) *llm.UpstreamRequest {
	return &llm.UpstreamRequest{
		Method: "GET",
		URL:    fmt.Sprintf("%s/v1beta/models?key=%s", a.baseURL, apiKey),
	}
}

// ParseModels keeps generateContent-capable gemini and text- models, with
// ids normalized by stripping the models/ prefix, sorted ascending by
// display name.
func (a *Adapter) ParseModels(body []byte) ([]api.ModelDescriptor, error) {
	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	var models []api.ModelDescriptor
	for _, m := range resp.Models {
		if !supportsGeneration(m.SupportedGenerationMethods) {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		if !strings.Contains(id, "gemini") && !strings.HasPrefix(id, "text-") {
			continue
		}
		name := m.DisplayName
		if name == "" {
			name = id
		}
		models = append(models, api.ModelDescriptor{ID: id, Name: name})
	}

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})
	return models, nil
}

func (a *Adapter) DefaultModel(models []api.ModelDescriptor) string {
	for _, m := range models {
		if m.ID == "gemini-1.5-pro-latest" {
			return m.ID
		}
	}
	if len(models) > 0 {
		return models[0].ID
	}
	return ""
}

func supportsGeneration(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}
