package visibility

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-requestform/pkg/model"
)

// matches reports whether a field's current value satisfies a condition's
// trigger value set. String values match by membership, lists match when any
// entry is in the set, and checkbox state matches boolean-ish trigger values.
func matches(current model.Value, values []string) bool {
	if len(values) == 0 {
		return false
	}
	switch v := current.(type) {
	case nil, model.EmptyValue:
		return false
	case model.StringValue:
		return contains(values, string(v))
	case model.ListValue:
		for _, entry := range v {
			if contains(values, entry) {
				return true
			}
		}
		return false
	case model.BoolValue:
		for _, candidate := range values {
			if coerceBool(candidate) == bool(v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func coerceBool(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "on" {
		return true
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false
	}
	return parsed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
