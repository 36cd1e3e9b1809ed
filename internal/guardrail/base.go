package guardrail

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mbergo/guardrails/internal/store"
)

// emptyIncomplete flags output too short to be a real answer.
type emptyIncomplete struct {
	meta
}

func newEmptyIncomplete() Check {
	return &emptyIncomplete{meta{
		id:            "empty_incomplete",
		name:          "Empty/Incomplete AI Output",
		category:      CategoryBase,
		defaultPrompt: "Tell me something very brief, like just one or two words.",
	}}
}

const minOutputLength = 5

func (c *emptyIncomplete) Evaluate(_ context.Context, in Input) Verdict {
	if !in.Result.OK() {
		return passthrough(in.Result)
	}

	text := in.Result.Text()
	if len(text) < minOutputLength {
		return Verdict{
			Status:  "warning_incomplete_fallback",
			Message: "AI response is too short or empty. Triggering fallback.",
			Fields: map[string]any{
				"ai_output":       text,
				"fallback_action": "Returning cached data or default message.",
			},
		}
	}
	return Verdict{Status: "success", Fields: map[string]any{"ai_output": text}}
}

// invalidSQL blocks generated SQL that looks unsafe (extra statements) or
// harmful (DROP TABLE, DELETE without WHERE).
type invalidSQL struct {
	meta
}

func newInvalidSQL() Check {
	return &invalidSQL{meta{
		id:            "invalid_sql",
		name:          "Invalid SQL Query by AI",
		category:      CategoryBase,
		defaultPrompt: "Generate a SQL query to select all users with the name 'Alice'. Only output the SQL query.",
		systemMessage: "You are a SQL generation assistant. Only output valid SQL queries based on the user's request. Do not include any explanations or markdown formatting around the SQL.",
	}}
}

func (c *invalidSQL) Evaluate(_ context.Context, in Input) Verdict {
	if !in.Result.OK() {
		return passthrough(in.Result)
	}

	sql := StripFences(in.Result.Text())
	upper := strings.ToUpper(sql)
	lower := strings.ToLower(sql)

	switch {
	case strings.Contains(sql, ";") && !strings.HasPrefix(upper, "SELECT ") && !strings.HasPrefix(upper, "WITH "):
		return Verdict{
			Status:  "error_unsafe_sql",
			Message: "Potentially unsafe SQL (e.g., multiple statements or non-SELECT with ';') detected and blocked.",
			Fields:  map[string]any{"generated_sql": sql, "sanitized_sql": "BLOCKED"},
		}
	case strings.Contains(lower, "drop table"),
		strings.Contains(lower, "delete from") && !strings.Contains(lower, "where"):
		return Verdict{
			Status:  "error_harmful_sql",
			Message: "Potentially harmful SQL (DROP TABLE, or DELETE without WHERE) detected and blocked.",
			Fields:  map[string]any{"generated_sql": sql, "sanitized_sql": "BLOCKED"},
		}
	}

	return Verdict{
		Status: "success_sql_generated",
		Fields: map[string]any{
			"generated_sql":        sql,
			"execution_simulation": "SQL would be executed here.",
		},
	}
}

// mismatchedStructure compares the keys of a JSON reply against the expected
// user schema from the reference store.
type mismatchedStructure struct {
	meta
	ref store.ReferenceRepository
}

func newMismatchedStructure(ref store.ReferenceRepository) Check {
	return &mismatchedStructure{
		meta: meta{
			id:            "mismatched_structure",
			name:          "Mismatched AI JSON & Structure",
			category:      CategoryBase,
			defaultPrompt: `Provide details for a user named 'Alice Wonderland' as a JSON object. The JSON should have keys: "id" (number), "name" (string), "age" (number), and "email" (string).`,
			systemMessage: "You are a JSON data provider. Strictly follow the requested JSON format and keys. Only output the JSON object, no explanations.",
		},
		ref: ref,
	}
}

func (c *mismatchedStructure) Evaluate(ctx context.Context, in Input) Verdict {
	if !in.Result.OK() {
		return passthrough(in.Result)
	}

	schema, err := c.ref.Schema(ctx)
	if err != nil {
		return referenceFailure(err)
	}

	obj, raw, err := ParseObject(in.Result.Text())
	if err != nil {
		return invalidJSON(err, raw)
	}

	expected := make(map[string]string, len(schema))
	var missing []string
	for _, f := range schema {
		expected[f.Field] = f.Kind
		if _, ok := obj[f.Field]; !ok {
			missing = append(missing, f.Field)
		}
	}
	var extra []string
	for k := range obj {
		if _, ok := expected[k]; !ok {
			extra = append(extra, k)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		return Verdict{
			Status:  "warning_mismatched_structure",
			Message: "AI JSON structure mismatch.",
			Fields: map[string]any{
				"missing_keys":     stringList(missing),
				"extra_keys":       stringList(extra),
				"expected_schema":  expected,
				"ai_output_parsed": obj,
			},
		}
	}
	return Verdict{Status: "success_structure_match", Fields: map[string]any{"ai_output_parsed": obj}}
}

// unexpectedTypes checks JSON value types against the reference schema. A
// numeric string where a number was expected is reported as potentially
// coercible rather than flatly wrong.
type unexpectedTypes struct {
	meta
	ref store.ReferenceRepository
}

func newUnexpectedTypes(ref store.ReferenceRepository) Check {
	return &unexpectedTypes{
		meta: meta{
			id:            "unexpected_types",
			name:          "Unexpected Data Types in AI JSON",
			category:      CategoryBase,
			defaultPrompt: `Return user data as JSON: { "id": 1, "name": "Alice", "age": "thirty" }. Make sure age is a string, not a number, for this test.`,
			systemMessage: "You are a JSON data provider. Strictly follow the user's instructions about data types, even if unusual. Only output the JSON object.",
		},
		ref: ref,
	}
}

func (c *unexpectedTypes) Evaluate(ctx context.Context, in Input) Verdict {
	if !in.Result.OK() {
		return passthrough(in.Result)
	}

	schema, err := c.ref.Schema(ctx)
	if err != nil {
		return referenceFailure(err)
	}

	obj, raw, err := ParseObject(in.Result.Text())
	if err != nil {
		return invalidJSON(err, raw)
	}

	expected := make(map[string]string, len(schema))
	var typeErrors []string
	for _, f := range schema {
		expected[f.Field] = f.Kind
		value, ok := obj[f.Field]
		if !ok {
			continue
		}
		actual := jsonTypeName(value)
		if actual == f.Kind {
			continue
		}
		if f.Kind == "number" && actual == "string" {
			if _, convErr := strconv.ParseFloat(value.(string), 64); convErr == nil {
				typeErrors = append(typeErrors, fmt.Sprintf(
					"Field '%s': Expected type '%s', got type '%s' (value: %q). Potentially coercible.",
					f.Field, f.Kind, actual, value))
				continue
			}
		}
		encoded, _ := jsonEncode(value)
		typeErrors = append(typeErrors, fmt.Sprintf(
			"Field '%s': Expected type '%s', got type '%s' (value: %s).",
			f.Field, f.Kind, actual, encoded))
	}

	if len(typeErrors) > 0 {
		return Verdict{
			Status:  "warning_unexpected_types",
			Message: "Unexpected data types found in AI JSON.",
			Fields: map[string]any{
				"type_errors":           typeErrors,
				"expected_schema_types": expected,
				"ai_output_parsed":      obj,
			},
		}
	}
	return Verdict{Status: "success_types_match", Fields: map[string]any{"ai_output_parsed": obj}}
}

// apiFailure surfaces the raw call outcome. The point of the check is the
// gateway's own timeout and error normalization, so there is no heuristic on
// top.
type apiFailure struct {
	meta
}

func newAPIFailure() Check {
	return &apiFailure{meta{
		id:            "api_failure",
		name:          "API Timeouts/Failures",
		category:      CategoryBase,
		defaultPrompt: "Tell me a very long story that might take a while to generate, using complex vocabulary.",
	}}
}

func (c *apiFailure) Evaluate(_ context.Context, in Input) Verdict {
	return passthrough(in.Result)
}

func invalidJSON(err error, raw string) Verdict {
	return Verdict{
		Status:  "error_invalid_json",
		Message: "AI did not return valid JSON.",
		Fields: map[string]any{
			"error_details": err.Error(),
			"ai_raw_output": raw,
		},
	}
}

func referenceFailure(err error) Verdict {
	return Verdict{
		Status:  "error_reference_data",
		Message: "Reference dataset unavailable.",
		Fields:  map[string]any{"error_details": err.Error()},
	}
}
