package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbergo/guardrails/pkg/api"
)

type fakeGateway struct {
	last   *api.CallRequest
	result api.CallResult
}

func (f *fakeGateway) Call(_ context.Context, req *api.CallRequest) api.CallResult {
	f.last = req
	return f.result
}

func TestRunner_FillsDefaultsAndEvaluates(t *testing.T) {
	gw := &fakeGateway{result: api.Success("SELECT * FROM users WHERE name = 'Alice'")}
	runner := NewRunner(zap.NewNop(), DefaultRegistry(userSchema()), gw)

	out, err := runner.Run(context.Background(), "invalid_sql", &api.CallRequest{
		Provider: "openai",
		Model:    "gpt-3.5-turbo",
	})
	require.NoError(t, err)

	// empty prompt and system message fall back to the check's defaults
	assert.Contains(t, gw.last.Prompt, "Generate a SQL query")
	assert.Contains(t, gw.last.SystemMessage, "SQL generation assistant")

	assert.Equal(t, "invalid_sql", out.Check.ID)
	assert.Equal(t, "success_sql_generated", out.Verdict.Status)
	assert.True(t, out.Result.OK())
}

func TestRunner_KeepsCallerPrompt(t *testing.T) {
	gw := &fakeGateway{result: api.Success("fine")}
	runner := NewRunner(zap.NewNop(), DefaultRegistry(userSchema()), gw)

	_, err := runner.Run(context.Background(), "empty_incomplete", &api.CallRequest{
		Provider: "google",
		Model:    "gemini-1.5-pro-latest",
		Prompt:   "my own prompt",
	})
	require.NoError(t, err)
	assert.Equal(t, "my own prompt", gw.last.Prompt)
}

func TestRunner_UnknownCheck(t *testing.T) {
	runner := NewRunner(zap.NewNop(), DefaultRegistry(userSchema()), &fakeGateway{})
	_, err := runner.Run(context.Background(), "echo", &api.CallRequest{})
	assert.ErrorIs(t, err, ErrUnknownCheck)
}
