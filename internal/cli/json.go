package cli

import (
	"fmt"
	"regexp"
	"strings"
)

// jsonTokenRegex tokenizes JSON into keys (quoted strings followed by a
// colon), string values, booleans/null and numbers.
var jsonTokenRegex = regexp.MustCompile(`("(\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// HighlightJSON takes a JSON string (minified or indented) and applies ANSI
// colors.
func HighlightJSON(jsonStr string) string {
	if !Enabled() {
		return jsonStr
	}

	return jsonTokenRegex.ReplaceAllStringFunc(jsonStr, func(token string) string {
		switch {
		case strings.HasSuffix(token, ":"):
			key := strings.TrimRight(token[:len(token)-1], " \t")
			return fmt.Sprintf("%s%s%s:", Blue, key, Reset)

		case strings.HasPrefix(token, "\""):
			return fmt.Sprintf("%s%s%s", Green, token, Reset)

		case token == "true" || token == "false":
			return fmt.Sprintf("%s%s%s", Yellow, token, Reset)

		case token == "null":
			return fmt.Sprintf("%s%s%s", Dim, token, Reset)

		default:
			return fmt.Sprintf("%s%s%s", Purple, token, Reset)
		}
	})
}
