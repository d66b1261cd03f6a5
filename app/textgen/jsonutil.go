package textgen

import (
	"regexp"
	"strings"
)

var jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*```")

// ExtractJSONObject returns the first brace-delimited JSON object found in
// content. A fenced ```json block wins over bare text.
func ExtractJSONObject(content string) (string, bool) {
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		return m[1], true
	}

	start := strings.IndexByte(content, '{')
	for start >= 0 {
		if end := matchingBrace(content, start); end > 0 {
			return content[start : end+1], true
		}
		next := strings.IndexByte(content[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchingBrace returns the index of the brace closing the one at open,
// ignoring braces inside string literals, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
