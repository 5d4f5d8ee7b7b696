package io

import (
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

type yamlCodec struct{}

func (yamlCodec) Format() string { return "yaml" }
func (yamlCodec) Ext() string    { return ".yaml" }

func (yamlCodec) Encode(people []person.Person) ([]byte, error) {
	if people == nil {
		people = []person.Person{}
	}
	out, err := yaml.Marshal(people)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
	}
	return out, nil
}

func (yamlCodec) Decode(data []byte) ([]person.Person, error) {
	var people []person.Person
	if err := yaml.Unmarshal(data, &people); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	for i, p := range people {
		if p.ID == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %d: missing id", i)
		}
	}
	return people, nil
}
