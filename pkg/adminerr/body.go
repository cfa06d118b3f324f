package adminerr

import (
	"encoding/json"
	"strings"
)

// MessageFromBody extracts a human-readable message from an error response
// body. It understands {"message"}, {"error": "..."}, {"error": {"message"}},
// {"errors": [{"message"}]} and the same shapes wrapped in {"data": ...}.
// fallback is returned when nothing usable is found.
func MessageFromBody(body []byte, fallback string) string {
	if fallback == "" {
		fallback = GenericMessage
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if msg := messageFrom(payload, 0); msg != "" {
		return msg
	}
	return fallback
}

// FieldsFromBody extracts field-level messages from {"errors": {"field":
// ["msg"]}} or {"errors": [{"field": "x", "message": "y"}]} payloads.
func FieldsFromBody(body []byte) map[string][]string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
		Data   *struct {
			Errors json.RawMessage `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	raw := payload.Errors
	if len(raw) == 0 && payload.Data != nil {
		raw = payload.Data.Errors
	}
	if len(raw) == 0 {
		return nil
	}

	out := make(map[string][]string)
	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err == nil {
		for field, value := range byField {
			var list []string
			if err := json.Unmarshal(value, &list); err == nil {
				out[field] = append(out[field], list...)
				continue
			}
			var single string
			if err := json.Unmarshal(value, &single); err == nil {
				out[field] = append(out[field], single)
			}
		}
	} else {
		var items []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				if item.Field == "" || item.Message == "" {
					continue
				}
				out[item.Field] = append(out[item.Field], item.Message)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func messageFrom(payload any, depth int) string {
	if depth > 3 {
		return ""
	}
	switch v := payload.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"message", "msg", "detail"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		if msg := messageFrom(v["error"], depth+1); msg != "" {
			return msg
		}
		if list, ok := v["errors"].([]any); ok && len(list) > 0 {
			if msg := messageFrom(list[0], depth+1); msg != "" {
				return msg
			}
		}
		if data, ok := v["data"].(map[string]any); ok {
			return messageFrom(data, depth+1)
		}
	}
	return ""
}
