package openai

import (
	"testing"

	"github.com/mbergo/guardrails/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequest_MessageOrder(t *testing.T) {
	a := NewAdapter("")

	req := &api.CallRequest{
		Provider:      "openai",
		Model:         "gpt-3.5-turbo",
		Prompt:        "What is the tallest mountain?",
		SystemMessage: "You are a geography tutor.",
		Temperature:   0.2,
		MaxTokens:     100,
	}

	up := a.GenerateRequest(req, "sk-test")

	assert.Equal(t, "POST", up.Method)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", up.URL)
	assert.Equal(t, "Bearer sk-test", up.Headers["Authorization"])

	body := up.Body.(chatRequest)
	assert.Equal(t, "gpt-3.5-turbo", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "You are a geography tutor.", body.Messages[0].Content)
	assert.Equal(t, "user", body.Messages[1].Role)
	// the user message is the original prompt, never merged with the system text
	assert.Equal(t, "What is the tallest mountain?", body.Messages[1].Content)
	assert.Equal(t, 0.2, body.Temperature)
	assert.Equal(t, 100, body.MaxTokens)
	assert.Nil(t, body.ResponseFormat)
}

func TestGenerateRequest_NoSystemMessage(t *testing.T) {
	a := NewAdapter("")

	body := a.GenerateRequest(&api.CallRequest{Model: "gpt-4o", Prompt: "Hi"}, "k").Body.(chatRequest)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
}

func TestGenerateRequest_JSONMode(t *testing.T) {
	a := NewAdapter("")

	// no model gate: every model gets response_format
	req := &api.CallRequest{Model: "gpt-4o", Prompt: "List three colors.", RequestJSONOutput: true}
	body := a.GenerateRequest(req, "k").Body.(chatRequest)
	require.NotNil(t, body.ResponseFormat)
	assert.Equal(t, "json_object", body.ResponseFormat.Type)
	assert.Equal(t, "List three colors.\n\nRespond strictly in JSON format.", body.Messages[0].Content)

	// a system message mentioning JSON suppresses the appended instruction
	req = &api.CallRequest{
		Model:             "gpt-4o",
		Prompt:            "List three colors.",
		SystemMessage:     "Always answer with a JSON object.",
		RequestJSONOutput: true,
	}
	body = a.GenerateRequest(req, "k").Body.(chatRequest)
	assert.Equal(t, "List three colors.", body.Messages[1].Content)
}

func TestParseGenerateResponse(t *testing.T) {
	a := NewAdapter("")

	res := a.ParseGenerateResponse(200, []byte(`{"choices": [{"message": {"role": "assistant", "content": "Hello!"}}]}`))
	assert.True(t, res.OK())
	assert.Equal(t, "Hello!", res.Text())

	// missing choices default to empty output
	res = a.ParseGenerateResponse(200, []byte(`{"choices": []}`))
	assert.True(t, res.OK())
	assert.Equal(t, "", res.Text())

	res = a.ParseGenerateResponse(401, []byte(`{"error": {"message": "invalid_api_key"}}`))
	assert.False(t, res.OK())
	assert.Equal(t, "API Error (401): invalid_api_key", res.Message())
	assert.JSONEq(t, `{"error": {"message": "invalid_api_key"}}`, string(res.Details()))
}

func TestParseModels_FilterAndSort(t *testing.T) {
	a := NewAdapter("")

	payload := `{"data": [
		{"id": "gpt-3.5-turbo"},
		{"id": "whisper-1"},
		{"id": "gpt-4o"},
		{"id": "text-davinci-003"},
		{"id": "dall-e-3"}
	]}`

	models, err := a.ParseModels([]byte(payload))
	require.NoError(t, err)

	// whisper and dall-e dropped, remainder sorted descending by id
	require.Len(t, models, 3)
	assert.Equal(t, "text-davinci-003", models[0].ID)
	assert.Equal(t, "gpt-4o", models[1].ID)
	assert.Equal(t, "gpt-3.5-turbo", models[2].ID)
	// display name mirrors the id
	assert.Equal(t, "gpt-4o", models[1].Name)
}

func TestDefaultModel(t *testing.T) {
	a := NewAdapter("")

	withTurbo := []api.ModelDescriptor{{ID: "text-davinci-003"}, {ID: "gpt-4o"}, {ID: "gpt-3.5-turbo"}}
	assert.Equal(t, "gpt-3.5-turbo", a.DefaultModel(withTurbo))

	// without the well-known id, the first element after the descending sort
	withoutTurbo := []api.ModelDescriptor{{ID: "text-davinci-003"}, {ID: "gpt-4o"}}
	assert.Equal(t, "text-davinci-003", a.DefaultModel(withoutTurbo))

	assert.Equal(t, "", a.DefaultModel(nil))
}
