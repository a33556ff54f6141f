package normalize

import (
	"encoding/json"
	"sort"
	"strings"
)

var (
	breakdownLabelKeys = []string{"label", "name", "key", "criterion", "category"}
	breakdownValueKeys = []string{"value", "score", "weight", "percent"}
)

// ScoreBreakdown flattens a score breakdown into "Label: Value" lines.
// It accepts a newline separated string, a JSON encoded string, an array of
// strings or labelled objects, or an object mapping labels to values.
// Entries that produce no text are skipped.
func ScoreBreakdown(v any) []string {
	out := []string{}

	switch val := v.(type) {
	case nil:
	case string:
		trimmed := strings.TrimSpace(val)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var decoded any
			dec := json.NewDecoder(strings.NewReader(trimmed))
			dec.UseNumber()
			if dec.Decode(&decoded) == nil {
				return ScoreBreakdown(decoded)
			}
		}
		for line := range strings.SplitSeq(trimmed, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, item := range val {
			if line := breakdownEntry(item); line != "" {
				out = append(out, line)
			}
		}
	case []string:
		for _, item := range val {
			if line := strings.TrimSpace(item); line != "" {
				out = append(out, line)
			}
		}
	case map[string]any:
		if line, ok := labelledEntry(val); ok {
			if line != "" {
				out = append(out, line)
			}
			return out
		}
		labels := make([]string, 0, len(val))
		for k := range val {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		for _, label := range labels {
			if line := joinLabel(label, asString(val[label])); line != "" {
				out = append(out, line)
			}
		}
	}

	return out
}

func breakdownEntry(item any) string {
	switch v := item.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		line, _ := labelledEntry(v)
		return line
	}
	return ""
}

// labelledEntry handles {label, value} shaped objects. ok is false when the
// object has none of the known label or value keys.
func labelledEntry(obj map[string]any) (line string, ok bool) {
	label, hasLabel := firstString(obj, breakdownLabelKeys)
	value, hasValue := firstString(obj, breakdownValueKeys)
	if !hasLabel && !hasValue {
		return "", false
	}
	if label == "" {
		return "", true
	}
	return joinLabel(label, value), true
}

func joinLabel(label, value string) string {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	switch {
	case label == "":
		return ""
	case value == "":
		return label
	default:
		return label + ": " + value
	}
}

func firstString(obj map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return asString(v), true
		}
	}
	return "", false
}
