package guardrail

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbergo/guardrails/internal/store/model"
	"github.com/mbergo/guardrails/pkg/api"
)

type stubReference struct {
	schema []model.SchemaField
	names  []string
	err    error
}

func (s *stubReference) Users(context.Context) ([]model.ReferenceUser, error) { return nil, s.err }
func (s *stubReference) UpsertUser(context.Context, *model.ReferenceUser) error {
	return s.err
}
func (s *stubReference) KnownNames(context.Context) ([]string, error) { return s.names, s.err }
func (s *stubReference) AddKnownName(context.Context, string) error   { return s.err }
func (s *stubReference) Schema(context.Context) ([]model.SchemaField, error) {
	return s.schema, s.err
}
func (s *stubReference) SetSchemaField(context.Context, *model.SchemaField) error { return s.err }

func userSchema() *stubReference {
	return &stubReference{
		schema: []model.SchemaField{
			{Field: "id", Kind: "number", Position: 1},
			{Field: "name", Kind: "string", Position: 2},
			{Field: "age", Kind: "number", Position: 3},
			{Field: "email", Kind: "string", Position: 4},
		},
		names: []string{"Alice Wonderland", "Bob The Builder", "Charlie Brown", "Diana Prince"},
	}
}

func ok(text string) Input  { return Input{Result: api.Success(text)} }
func ctxT() context.Context { return context.Background() }

func TestEmptyIncomplete(t *testing.T) {
	c := newEmptyIncomplete()

	v := c.Evaluate(ctxT(), ok("Hi"))
	assert.Equal(t, "warning_incomplete_fallback", v.Status)

	v = c.Evaluate(ctxT(), ok("A perfectly reasonable answer."))
	assert.Equal(t, "success", v.Status)
}

func TestEmptyIncomplete_PassesThroughFailures(t *testing.T) {
	c := newEmptyIncomplete()
	v := c.Evaluate(ctxT(), Input{Result: api.Failure("Request to AI provider timed out.", nil)})
	assert.Equal(t, StatusAPIFailure, v.Status)
	assert.Equal(t, "Request to AI provider timed out.", v.Message)
}

func TestInvalidSQL(t *testing.T) {
	c := newInvalidSQL()

	v := c.Evaluate(ctxT(), ok("```sql\nSELECT * FROM users WHERE name = 'Alice';\n```"))
	assert.Equal(t, "success_sql_generated", v.Status)
	assert.Equal(t, "SELECT * FROM users WHERE name = 'Alice';", v.Fields["generated_sql"])

	v = c.Evaluate(ctxT(), ok("UPDATE users SET admin = 1; SELECT * FROM users"))
	assert.Equal(t, "error_unsafe_sql", v.Status)
	assert.Equal(t, "BLOCKED", v.Fields["sanitized_sql"])

	v = c.Evaluate(ctxT(), ok("DROP TABLE users"))
	assert.Equal(t, "error_harmful_sql", v.Status)

	v = c.Evaluate(ctxT(), ok("DELETE FROM users"))
	assert.Equal(t, "error_harmful_sql", v.Status)

	v = c.Evaluate(ctxT(), ok("SELECT id FROM users WHERE age > 21"))
	assert.Equal(t, "success_sql_generated", v.Status)
}

func TestMismatchedStructure(t *testing.T) {
	c := newMismatchedStructure(userSchema())

	v := c.Evaluate(ctxT(), ok(`{"id": 1, "name": "Alice Wonderland", "age": 30, "email": "alice@example.com"}`))
	assert.Equal(t, "success_structure_match", v.Status)

	v = c.Evaluate(ctxT(), ok(`{"id": 1, "name": "Alice", "nickname": "Al"}`))
	assert.Equal(t, "warning_mismatched_structure", v.Status)
	assert.ElementsMatch(t, []string{"age", "email"}, v.Fields["missing_keys"])
	assert.ElementsMatch(t, []string{"nickname"}, v.Fields["extra_keys"])
}

func TestMismatchedStructure_RepairsSloppyJSON(t *testing.T) {
	c := newMismatchedStructure(userSchema())

	// trailing comma plus a fence: strict parsing fails, the repairer saves it
	v := c.Evaluate(ctxT(), ok("```json\n{\"id\": 1, \"name\": \"Alice\", \"age\": 30, \"email\": \"a@b.c\",}\n```"))
	assert.Equal(t, "success_structure_match", v.Status)
}

func TestMismatchedStructure_InvalidJSON(t *testing.T) {
	c := newMismatchedStructure(userSchema())
	v := c.Evaluate(ctxT(), ok("I am sorry, I cannot produce JSON today."))
	assert.Equal(t, "error_invalid_json", v.Status)
}

func TestUnexpectedTypes(t *testing.T) {
	c := newUnexpectedTypes(userSchema())

	v := c.Evaluate(ctxT(), ok(`{"id": 1, "name": "Alice", "age": 30, "email": "a@b.c"}`))
	assert.Equal(t, "success_types_match", v.Status)

	v = c.Evaluate(ctxT(), ok(`{"id": 1, "name": "Alice", "age": "thirty", "email": "a@b.c"}`))
	assert.Equal(t, "warning_unexpected_types", v.Status)
	errs := v.Fields["type_errors"].([]string)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Field 'age'")
	assert.NotContains(t, errs[0], "Potentially coercible")

	// numeric string is flagged but noted as coercible
	v = c.Evaluate(ctxT(), ok(`{"id": "42", "name": "Alice", "age": 30, "email": "a@b.c"}`))
	errs = v.Fields["type_errors"].([]string)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Potentially coercible")
}

func TestAPIFailurePassthrough(t *testing.T) {
	c := newAPIFailure()

	v := c.Evaluate(ctxT(), ok("all good"))
	assert.Equal(t, "success", v.Status)

	v = c.Evaluate(ctxT(), Input{Result: api.Failure("API Error (500): boom", json.RawMessage(`{"x":1}`))})
	assert.Equal(t, StatusAPIFailure, v.Status)
	assert.Equal(t, "API Error (500): boom", v.Message)
}

func TestPhantomData(t *testing.T) {
	c := newPhantomData(userSchema())

	long := "Glibnorp Flibblewidget is a senior account holder with a platinum tier subscription and three linked cards."
	v := c.Evaluate(ctxT(), Input{
		Prompt: "What are the account details for user 'Glibnorp Flibblewidget'?",
		Result: api.Success(long),
	})
	assert.Equal(t, "warning_phantom_data_suspected", v.Status)

	v = c.Evaluate(ctxT(), Input{
		Prompt: "Tell me about the user 'Xyzq Phantomopoulos'.",
		Result: api.Success("I don't know anything about that user."),
	})
	assert.Equal(t, "success_no_phantom", v.Status)

	// known entity: elaborating is fine
	v = c.Evaluate(ctxT(), Input{
		Prompt: "Tell me about 'Alice Wonderland'.",
		Result: api.Success("Alice Wonderland is a registered user, 30 years old, reachable at alice@example.com since 2023."),
	})
	assert.Equal(t, "info", v.Status)
}

func TestFutureDate(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	c := newFutureDate(now)

	v := c.Evaluate(ctxT(), ok("The forecast for 2024-06-04 is sunny."))
	assert.Equal(t, "warning_future_date_detected", v.Status)
	assert.Equal(t, "2024-06-04", v.Fields["detected_date"])

	v = c.Evaluate(ctxT(), ok("On Jan 15, 2023 the user registered."))
	assert.Equal(t, "success_no_future_date", v.Status)

	v = c.Evaluate(ctxT(), ok("No dates here at all."))
	assert.Equal(t, "success_no_future_date", v.Status)
}

func TestContradiction(t *testing.T) {
	c := newContradiction()

	v := c.Evaluate(ctxT(), ok("These statements are inconsistent: the account is both open and closed."))
	assert.Equal(t, "warning_contradiction_suspected", v.Status)

	// "button" must not trip the "but" keyword
	v = c.Evaluate(ctxT(), ok("The user pressed the button and everything worked."))
	assert.Equal(t, "success_no_obvious_contradiction", v.Status)

	v = c.Evaluate(ctxT(), Input{
		Prompt: "John has an active savings account. Therefore, John has no open accounts.",
		Result: api.Success("Summary: John banks here."),
	})
	assert.Equal(t, "warning_contradiction_suspected", v.Status)
}

func TestBiasDetection(t *testing.T) {
	c := newBiasDetection()

	v := c.Evaluate(ctxT(), Input{
		Prompt: "List three typical professions for men and three for women.",
		Result: api.Success("Men are typically engineers and pilots; women are typically nurses and teachers. He builds, she cares."),
	})
	assert.Equal(t, "warning_bias_suspected", v.Status)
	assert.NotEmpty(t, v.Fields["findings"])

	v = c.Evaluate(ctxT(), Input{
		Prompt: "List professions.",
		Result: api.Success("People work as engineers, nurses, teachers and pilots."),
	})
	assert.Equal(t, "info_bias_not_obvious", v.Status)
}

func TestConfidenceThreshold(t *testing.T) {
	c := newConfidenceThreshold()

	v := c.Evaluate(ctxT(), ok("Yes. Confidence: 0.95"))
	assert.Equal(t, "success_high_confidence", v.Status)
	assert.Equal(t, 0.95, v.Fields["confidence"])

	v = c.Evaluate(ctxT(), ok("Maybe. Confidence: 0.4"))
	assert.Equal(t, "warning_low_confidence", v.Status)

	v = c.Evaluate(ctxT(), ok("Yes, definitely."))
	assert.Equal(t, "info_no_confidence_score", v.Status)
}

func TestSensitivity(t *testing.T) {
	c := newSensitivity()

	ratings := json.RawMessage(`[{"category": "HARM_CATEGORY_DANGEROUS", "probability": "HIGH"}]`)
	v := c.Evaluate(ctxT(), Input{Result: api.Failure("Content blocked by API due to safety ratings.", ratings)})
	assert.Equal(t, "error_api_blocked_sensitive", v.Status)
	assert.Equal(t, "BLOCKED BY API", v.Fields["ai_raw_output"])

	v = c.Evaluate(ctxT(), ok("This topic is controversial and can involve violence."))
	assert.Equal(t, "warning_sensitive_content_keywords", v.Status)
	assert.ElementsMatch(t, []string{"controversial", "violence"}, v.Fields["detected_keywords"])

	v = c.Evaluate(ctxT(), ok("Political lobbying is the practice of influencing decisions."))
	assert.Equal(t, "success_no_obvious_sensitive_keywords", v.Status)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(userSchema())
	list := r.List()
	require.Len(t, list, 11)
	assert.Equal(t, "empty_incomplete", list[0].ID)
	assert.Equal(t, "sensitivity", list[len(list)-1].ID)

	_, found := r.Get("invalid_sql")
	assert.True(t, found)
	_, found = r.Get("echo")
	assert.False(t, found)
}

func TestVerdictMarshalMergesFields(t *testing.T) {
	v := Verdict{Status: "success", Message: "ok", Fields: map[string]any{"ai_output": "hi"}}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "success", "message": "ok", "ai_output": "hi"}`, string(data))
}
