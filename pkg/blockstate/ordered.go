package blockstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type member struct {
	Key   string
	Value json.RawMessage
}

// orderedObject is a JSON object that remembers the order of its keys.
// Bit assignment depends on discovery order, which a Go map would lose.
type orderedObject []member

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		*o = append(*o, member{Key: key, Value: raw})
	}

	_, err = dec.Token()
	return err
}

// scalarString renders a condition value as text. Strings are unquoted;
// booleans and numbers keep their JSON spelling ("true", "1").
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty value")
	}
	switch raw[0] {
	case '"':
		return strconv.Unquote(string(raw))
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	}
	return string(raw), nil
}

type pair[V any] struct {
	Key   string
	Value V
}

// orderedMap marshals as a JSON object with its keys in slice order.
type orderedMap[V any] []pair[V]

func (m orderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
