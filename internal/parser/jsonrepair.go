package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RepairJSON turns the near-JSON found in inline scripts into strict JSON.
// Newlines are dropped, single quotes become double quotes and trailing
// commas before a closing bracket are removed. Text inside string literals
// keeps its commas.
//
// The quote swap is lossy: a string value that contains an apostrophe comes
// out broken and the result fails to validate.
func RepairJSON(s string) ([]byte, error) {
	repaired := strings.NewReplacer("\r", "", "\n", "").Replace(s)
	repaired = strings.ReplaceAll(repaired, "'", `"`)
	repaired = dropTrailingCommas(repaired)

	if !json.Valid([]byte(repaired)) {
		return nil, fmt.Errorf("%w: inline script is not valid JSON after repair", ErrMalformedPageData)
	}
	return []byte(repaired), nil
}

// dropTrailingCommas removes a comma, and the whitespace after it, when the
// next token closes an array or object.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}

	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// DecodeLenient repairs s and unmarshals it into v.
func DecodeLenient(s string, v any) error {
	data, err := RepairJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPageData, err)
	}
	return nil
}

// decodeStrict is used for payloads that are already valid JSON and may carry
// apostrophes in titles.
func decodeStrict(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPageData, err)
	}
	return nil
}
