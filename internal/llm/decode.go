package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Validator is implemented by reply shapes that know their required fields.
type Validator interface {
	Validate() error
}

// DecodeObject repairs raw and decodes exactly one JSON object into T.
// Decoding fails closed: syntax errors, trailing data and a failed
// Validate all yield ErrMalformedResponse.
func DecodeObject[T Validator](raw string) (T, error) {
	var out T
	text := Repair(raw)
	if err := decodeStrict([]byte(text), &out); err != nil {
		return out, malformed("%v", err)
	}
	if err := out.Validate(); err != nil {
		return out, malformed("%v", err)
	}
	return out, nil
}

// DecodeList repairs raw and decodes a JSON array of T. A bare object is
// accepted as a one-element list, and an object wrapping a single array
// (e.g. {"verses": [...]}) is unwrapped. Every element must validate.
func DecodeList[T Validator](raw string) ([]T, error) {
	text := strings.TrimSpace(Repair(raw))
	if text == "" {
		return nil, malformed("empty reply")
	}

	var items []T
	switch text[0] {
	case '[':
		if err := decodeStrict([]byte(text), &items); err != nil {
			return nil, malformed("%v", err)
		}
	case '{':
		var one T
		if err := decodeStrict([]byte(text), &one); err == nil && one.Validate() == nil {
			return []T{one}, nil
		}

		inner, ok := wrappedArray([]byte(text))
		if !ok {
			return nil, malformed("object reply is neither an item nor a wrapped list")
		}
		if err := decodeStrict(inner, &items); err != nil {
			return nil, malformed("%v", err)
		}
	default:
		return nil, malformed("reply is not JSON: %.40q", text)
	}

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, malformed("item %d: %v", i, err)
		}
	}
	return items, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func wrappedArray(data []byte) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	var found json.RawMessage
	for _, v := range obj {
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if found != nil {
				return nil, false
			}
			found = trimmed
		}
	}
	return found, found != nil
}

// FlexInt accepts 3, 3.0 and "3".
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*f = FlexInt(int(fl))
	return nil
}
