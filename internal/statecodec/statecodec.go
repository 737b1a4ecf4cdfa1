// Package statecodec turns JSON-serializable state into a compact string that
// can travel in a URL query parameter without further escaping, and back.
package statecodec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

var toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

// Encode marshals v to JSON and encodes it with the URL-safe base64 alphabet,
// without padding.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("statecodec.Encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Decode reverses Encode into generic JSON values. It reports false for any
// malformed input and never panics.
func Decode(s string) (any, bool) {
	var v any
	if !DecodeInto(s, &v) {
		return nil, false
	}
	return v, true
}

// DecodeInto reverses Encode into dst.
func DecodeInto(s string, dst any) bool {
	data, ok := Bytes(s)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// Bytes returns the JSON text carried by s. Padding and the standard base64
// alphabet are tolerated.
func Bytes(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	s = strings.TrimRight(toURLAlphabet.Replace(s), "=")
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(data) || !json.Valid(data) {
		return nil, false
	}
	return data, true
}
