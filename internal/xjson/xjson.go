package xjson

import (
	stdjson "encoding/json"

	gjson "github.com/goccy/go-json"
)

// Every JSON encode and decode in the module goes through here so the codec can
// be swapped in one place.

func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gjson.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

// RoundTrip re-decodes v into out, which normalises numbers and nested maps to
// their generic JSON shapes.
func RoundTrip(v interface{}, out interface{}) error {
	data, err := gjson.Marshal(v)
	if err != nil {
		return err
	}
	return gjson.Unmarshal(data, out)
}

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage
