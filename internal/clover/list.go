package clover

import (
	"bytes"
	"encoding/json"
)

// decodeList accepts a bare array or a wrapper exposing it under "elements"
// (or "data"). Any other shape yields an empty list.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapper struct {
		Elements json.RawMessage `json:"elements"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return []T{}, nil
	}

	for _, raw := range []json.RawMessage{wrapper.Elements, wrapper.Data} {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	return []T{}, nil
}
