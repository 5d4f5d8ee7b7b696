package io

import (
	"context"
	"fmt"
	stdio "io"
	"os"

	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
)

// Decode runs c.Decode and reports the result to the codec hooks.
func Decode(ctx context.Context, c Codec, data []byte) ([]person.Person, error) {
	people, err := c.Decode(data)
	observability.Codec().OnDecode(ctx, c.Format(), len(data), len(people), err)
	return people, err
}

// ReadFrom decodes everything read from r. It does not close r.
func ReadFrom(ctx context.Context, r stdio.Reader, c Codec) ([]person.Person, error) {
	data, err := stdio.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(ctx, c, data)
}

// ImportFile reads and decodes the file at path. A nil codec is picked from
// the file extension.
func ImportFile(ctx context.Context, path string, c Codec) ([]person.Person, error) {
	if c == nil {
		var err error
		if c, err = ForPath(path); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(ctx, f, c)
}
