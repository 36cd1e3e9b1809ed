package guardrail

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n?|\n?```")

// StripFences removes markdown code fences that models wrap around SQL and
// JSON output.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// ParseObject parses model output into a JSON object, stripping fences
// first and running the repairer when strict parsing fails. Models routinely
// emit trailing commas, single quotes or bare keys; a repaired parse still
// counts as JSON for structure and type checks.
func ParseObject(raw string) (map[string]any, string, error) {
	cleaned := StripFences(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, cleaned, nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil, cleaned, err
	}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, cleaned, err
	}
	return obj, repaired, nil
}

func jsonEncode(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// jsonTypeName maps a decoded JSON value to the type vocabulary the
// reference schema uses. Arrays and null report as "object", matching how
// the checks have always classified them.
func jsonTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}
