package messages

import (
	"encoding/json"
	"strings"

	"recruitdesk/internal/models"
)

// shape is the discriminator for the raw messages union
type shape int

const (
	shapeEmpty shape = iota
	shapeText
	shapeList
	shapeSingle
	shapeBySender
)

func (s shape) String() string {
	switch s {
	case shapeText:
		return "text"
	case shapeList:
		return "list"
	case shapeSingle:
		return "single"
	case shapeBySender:
		return "by_sender"
	default:
		return "empty"
	}
}

var (
	contentKeys   = []string{"content", "text", "message", "body"}
	timestampKeys = []string{"timestamp", "time", "date", "sent_at", "sentAt", "created_at", "createdAt"}
	senderKeys    = []string{"sender", "from", "author", "role"}
	channelKeys   = []string{"channel", "medium", "via"}
	readKeys      = []string{"read", "isRead", "is_read", "seen"}
	followUpKeys  = []string{"followUp", "follow_up", "isFollowUp", "is_follow_up"}
)

// classify inspects a raw messages value once. JSON-encoded strings are
// decoded, so the returned value is the one the handler for the shape consumes.
func classify(v any) (shape, any) {
	switch val := v.(type) {
	case nil:
		return shapeEmpty, nil
	case string:
		if decoded, ok := decodeJSON(val); ok {
			return classify(decoded)
		}
		if strings.TrimSpace(val) == "" {
			return shapeEmpty, nil
		}
		return shapeText, val
	case []any:
		return shapeList, val
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return shapeList, items
	case map[string]any:
		if _, ok := field(val, contentKeys); ok {
			return shapeSingle, val
		}
		if _, ok := field(val, []string{string(models.SenderRecruiter)}); ok {
			return shapeBySender, val
		}
		if _, ok := field(val, []string{string(models.SenderCandidate)}); ok {
			return shapeBySender, val
		}
	}
	return shapeEmpty, nil
}

// decodeJSON decodes strings that look like a JSON array or object
func decodeJSON(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var decoded any
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

// field looks keys up case-insensitively, first key wins
func field(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		for actual, v := range obj {
			if v != nil && strings.EqualFold(actual, k) {
				return v, true
			}
		}
	}
	return nil, false
}
