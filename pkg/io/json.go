package io

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

type jsonCodec struct{}

func (jsonCodec) Format() string { return "json" }
func (jsonCodec) Ext() string    { return ".json" }

// Encode writes the records as an indented JSON array.
func (jsonCodec) Encode(people []person.Person) ([]byte, error) {
	if people == nil {
		people = []person.Person{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(people); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return buf.Bytes(), nil
}

// Decode reads a JSON array of person objects. Every object must carry a
// non-zero "id".
func (jsonCodec) Decode(data []byte) ([]person.Person, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedJSON, err, "decode json")
	}

	people := make([]person.Person, 0, len(raw))
	for i, r := range raw {
		var probe struct {
			ID *person.ID `json:"id"`
		}
		if err := json.Unmarshal(r, &probe); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedJSON, err, "record %d", i)
		}
		if probe.ID == nil || *probe.ID == 0 {
			return nil, errors.New(errors.ErrCodeMalformedJSON, "record %d: missing id", i)
		}
		var p person.Person
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedJSON, err, "person %d", *probe.ID)
		}
		people = append(people, p)
	}
	return people, nil
}
