package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	// ErrNoJSON means the text contained nothing that looks like a JSON object.
	ErrNoJSON = errors.New("jsonutil: no JSON object in text")
	// ErrParse means a JSON object was found but could not be decoded, even after repair.
	ErrParse = errors.New("jsonutil: malformed JSON")
)

// MarshalNoEscapeIndent encodes v as indented JSON, leaving <, > and & as
// written. Prompts and published artifacts embed design text verbatim.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var fencedObject = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractObject pulls the JSON object out of free model text. A fenced
// ```json block wins; otherwise the whole trimmed text is used when it is an
// object; otherwise the first balanced {...} block.
func ExtractObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoJSON
	}
	if m := fencedObject.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if strings.HasPrefix(text, "{") {
		return text, nil
	}
	if block := balancedObject(text); block != "" {
		return block, nil
	}
	return "", ErrNoJSON
}

// balancedObject finds the first balanced { ... } block, skipping braces in strings.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// DecodeStrict decodes raw into v and fails with ErrParse on any deviation,
// including trailing content after the object.
func DecodeStrict(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after object", ErrParse)
	}
	return nil
}

// Repair rewrites almost-JSON (single quotes, trailing commas, comments,
// unquoted keys, truncated output) into valid JSON.
func Repair(raw string) (string, error) {
	fixed, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return "", fmt.Errorf("%w: repair: %v", ErrParse, err)
	}
	return fixed, nil
}

// Decode extracts the JSON object from free text and decodes it into v.
// Strict decoding is tried first; repair is a separate fallback step and the
// repaired text is decoded strictly again. The returned bool reports whether
// repair was needed.
func Decode(text string, v any) (bool, error) {
	raw, err := ExtractObject(text)
	if err != nil {
		return false, err
	}
	strictErr := DecodeStrict(raw, v)
	if strictErr == nil {
		return false, nil
	}
	fixed, err := Repair(raw)
	if err != nil {
		return false, errors.Join(strictErr, err)
	}
	if err := DecodeStrict(fixed, v); err != nil {
		return true, err
	}
	return true, nil
}
