package form

import (
	"encoding/json"
	"strings"
)

// parseArrayField normalizes a repeated-credit field. Clients send these
// either as a JSON array string or as a comma-separated list; multiple form
// values are taken as-is.
func parseArrayField(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	if len(values) > 1 {
		return trimAll(values)
	}

	raw := strings.TrimSpace(values[0])
	if raw == "" {
		return nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return trimAll(parsed)
	}

	return trimAll(strings.Split(raw, ","))
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func formBool(v string) bool {
	return v == "true" || v == "yes"
}
