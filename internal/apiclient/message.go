package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// errorMessage turns an error response body into a display message.
// JSON bodies are searched for msg, detail, message and error, in that order.
func errorMessage(contentType string, body []byte, status int) string {
	fallback := fmt.Sprintf("HTTP %d", status)

	if strings.Contains(strings.ToLower(contentType), "application/json") {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fallback
		}
		if msg := pickMessage(v); msg != "" {
			return msg
		}
		return fallback
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}

func pickMessage(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := pickMessage(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, field := range []string{"msg", "detail", "message", "error"} {
			if s := pickMessage(x[field]); s != "" {
				return s
			}
		}
		raw, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return fmt.Sprint(x)
	}
}
