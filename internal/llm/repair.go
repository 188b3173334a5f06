package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// Values the model tends to emit bare, e.g. "translation": KJV
	bareFieldPattern = regexp.MustCompile(`"(translation|book|reference)"\s*:\s*([A-Za-z0-9][^,"{}\[\]\n]*?)[ \t]*([,}\]\n])`)
	flatObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)
)

// Repair makes a best-effort attempt to turn a model reply into JSON text.
// It strips Markdown fences, cuts the first balanced {...} or [...] span out
// of surrounding prose, quotes a few known bare scalar fields and, for a
// truncated payload, salvages the complete flat objects into an array.
// Already-valid JSON is returned unchanged. The result is not guaranteed to
// be valid; decoding is left to the caller.
func Repair(raw string) string {
	s := strings.TrimSpace(raw)
	if json.Valid([]byte(s)) {
		return s
	}

	s = stripFences(s)
	if json.Valid([]byte(s)) {
		return s
	}

	span, balanced := firstBalancedSpan(s)
	if balanced {
		s = span
		if json.Valid([]byte(s)) {
			return s
		}
	}

	s = quoteBareFields(s)
	if json.Valid([]byte(s)) {
		return s
	}

	if !balanced {
		if salvaged, ok := salvageObjects(s); ok {
			return salvaged
		}
	}
	return s
}

// stripFences returns the body of the first ``` fence, dropping an optional
// language tag such as json. An unclosed fence keeps everything after it.
func stripFences(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}

	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 && isFenceTag(body[:nl]) {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
		body = strings.TrimPrefix(body, "JSON")
	}

	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// firstBalancedSpan finds the earliest { or [ and returns the text up to its
// matching closer. Brackets inside string literals are ignored.
func firstBalancedSpan(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s, false
	}

	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) == 0 {
				return s[start:], false
			}
			open := stack[len(stack)-1]
			if (open == '{' && ch != '}') || (open == '[' && ch != ']') {
				return s[start:], false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], false
}

// quoteBareFields leaves JSON literals alone so "translation": null stays
// null rather than becoming the string "null".
func quoteBareFields(s string) string {
	return bareFieldPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := bareFieldPattern.FindStringSubmatch(match)
		switch m[2] {
		case "null", "true", "false":
			return match
		}
		return `"` + m[1] + `": "` + m[2] + `"` + m[3]
	})
}

// salvageObjects keeps every complete flat object in a truncated payload.
func salvageObjects(s string) (string, bool) {
	var objects []string
	for _, candidate := range flatObjectPattern.FindAllString(s, -1) {
		if json.Valid([]byte(candidate)) {
			objects = append(objects, candidate)
		}
	}
	if len(objects) == 0 {
		return s, false
	}
	return "[" + strings.Join(objects, ",") + "]", true
}
