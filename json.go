package artdir

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// MarshalIndent encodes v as indented JSON without HTML escaping and with a
// trailing newline, matching the formatting of the hand-edited data files.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// unmarshalWithExtra decodes data into v and returns the top-level keys
// that are not listed in known.
func unmarshalWithExtra(data []byte, v any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalWithExtra encodes v and appends the extra keys to the resulting
// object. Modeled fields keep their struct order and come first; extra keys
// follow in sorted order. Modeled fields win over extra keys with the same
// name.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := marshalCompact(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var modeled map[string]json.RawMessage
	if err := json.Unmarshal(data, &modeled); err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(bytes.TrimSuffix(data, []byte("}")))
	n := len(modeled)
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if _, ok := modeled[k]; ok {
			continue
		}
		key, err := marshalCompact(k)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(buf, extra[k]); err != nil {
			return nil, err
		}
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
