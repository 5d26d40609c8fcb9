package custom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header mapping with unique names. It encodes as
// a JSON object and keeps key order across a round trip.
type Headers []Header

func (h Headers) Get(name string) (string, bool) {
	for _, kv := range h {
		if kv.Name == name {
			return kv.Value, true
		}
	}

	return "", false
}

// Set replaces an existing value in place or appends a new header.
func (h Headers) Set(name, value string) Headers {
	for i, kv := range h {
		if kv.Name == name {
			out := append(Headers(nil), h...)
			out[i].Value = value
			return out
		}
	}

	return append(append(Headers(nil), h...), Header{Name: name, Value: value})
}

// Apply writes every header onto an outgoing request header set.
func (h Headers) Apply(dst http.Header) {
	for _, kv := range h {
		dst.Set(kv.Name, kv.Value)
	}
}

func (h Headers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range h {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(kv.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (h *Headers) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*h = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("headers: expected object")
	}

	var out Headers
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("headers: value for %q: %w", name, err)
		}

		if seen[name] {
			return fmt.Errorf("headers: duplicate header %q", name)
		}
		seen[name] = true
		out = append(out, Header{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = out
	return nil
}
