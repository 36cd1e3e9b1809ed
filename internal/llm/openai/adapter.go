package openai

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/pkg/api"
)

// Adapter speaks the OpenAI chat-completions API with bearer auth.
type Adapter struct {
	baseURL string
}

func NewAdapter(baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Adapter) Provider() api.Provider { return api.ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// GenerateRequest builds the chat-completions call. Unlike the Gemini
// adapter the system message stays a separate leading message and the user
// message carries the original prompt untouched.
func (a *Adapter) GenerateRequest(req *api.CallRequest, apiKey string) *llm.UpstreamRequest {
	var messages []chatMessage
	if req.SystemMessage != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemMessage})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	// JSON mode has no model gate here.
	if req.RequestJSONOutput {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
		if !llm.MentionsJSON(req.Prompt, req.SystemMessage) {
			body.Messages[len(body.Messages)-1].Content += llm.JSONInstruction
		}
	}

	return &llm.UpstreamRequest{
		Method: "POST",
		URL:    a.baseURL + "/v1/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
		},
		Body: body,
	}
}

func (a *Adapter) ParseGenerateResponse(status int, body []byte) api.CallResult {
	if status < 200 || status >= 300 {
		return llm.UpstreamFailure(status, body)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return api.Failuref("Error calling AI provider: %v", err)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	return api.Success(text)
}

type modelEntry struct {
	ID string `json:"id"`
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

func (a *Adapter) ModelsRequest(apiKey string) *llm.UpstreamRequest {
	return &llm.UpstreamRequest{
		Method: "GET",
		URL:    a.baseURL + "/v1/models",
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
		},
	}
}

// ParseModels keeps gpt and text-davinci models, sorted descending by id so
// newer families list first. The id doubles as the display name.
func (a *Adapter) ParseModels(body []byte) ([]api.ModelDescriptor, error) {
	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	var models []api.ModelDescriptor
	for _, m := range resp.Data {
		if !strings.Contains(m.ID, "gpt") && !strings.Contains(m.ID, "text-davinci") {
			continue
		}
		models = append(models, api.ModelDescriptor{ID: m.ID, Name: m.ID})
	}

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})
	return models, nil
}

func (a *Adapter) DefaultModel(models []api.ModelDescriptor) string {
	for _, m := range models {
		if m.ID == "gpt-3.5-turbo" {
			return m.ID
		}
	}
	if len(models) > 0 {
		return models[0].ID
	}
	return ""
}
