package io

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintree/pkg/observability"
)

type countingHooks struct {
	encodes, decodes int
	lastFormat       string
}

func (h *countingHooks) OnEncode(_ context.Context, format string, _, _ int, _ error) {
	h.encodes++
	h.lastFormat = format
}

func (h *countingHooks) OnDecode(_ context.Context, format string, _, _ int, _ error) {
	h.decodes++
	h.lastFormat = format
}

func TestExportImportFile(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCodecHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"family.json", "family.csv", "family.yaml"} {
		path := filepath.Join(dir, name)
		if err := ExportFile(ctx, path, nil, sample()); err != nil {
			t.Fatalf("ExportFile(%s) error = %v", name, err)
		}
		got, err := ImportFile(ctx, path, nil)
		if err != nil {
			t.Fatalf("ImportFile(%s) error = %v", name, err)
		}
		if diff := cmp.Diff(tuples(sample()), tuples(got)); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}

	if hooks.encodes != 3 || hooks.decodes != 3 {
		t.Errorf("hooks saw %d encodes, %d decodes, want 3, 3", hooks.encodes, hooks.decodes)
	}
	if hooks.lastFormat != "yaml" {
		t.Errorf("last format = %q, want yaml", hooks.lastFormat)
	}
}

func TestImportFile_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("ImportFile(missing) error = nil, want error")
	}
	if _, err := ImportFile(ctx, "family.txt", nil); err == nil {
		t.Error("ImportFile(unknown ext) error = nil, want error")
	}
}
