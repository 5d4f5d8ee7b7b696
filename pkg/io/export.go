package io

import (
	"context"
	"fmt"
	stdio "io"
	"os"

	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
)

// Encode writes the records of one tree of s with c. Pass person.TreeAll
// for every record.
func Encode(ctx context.Context, c Codec, s *person.Store, tree string) ([]byte, error) {
	return EncodePeople(ctx, c, s.Scope(tree))
}

// EncodePeople runs c.Encode and reports the result to the codec hooks.
func EncodePeople(ctx context.Context, c Codec, people []person.Person) ([]byte, error) {
	data, err := c.Encode(people)
	observability.Codec().OnEncode(ctx, c.Format(), len(people), len(data), err)
	return data, err
}

// WriteTo encodes people and writes the result to w.
func WriteTo(ctx context.Context, w stdio.Writer, c Codec, people []person.Person) error {
	data, err := EncodePeople(ctx, c, people)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportFile writes people to a file at path. A nil codec is picked from
// the file extension.
func ExportFile(ctx context.Context, path string, c Codec, people []person.Person) error {
	if c == nil {
		var err error
		if c, err = ForPath(path); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTo(ctx, f, c, people); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
