package render

import (
	"context"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
)

func TestConvertWithoutTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF without %s: err = %v, want UNSUPPORTED", converter, err)
	}
	_, err = ToPNG(context.Background(), []byte("<svg/>"), 0)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG without %s: err = %v, want UNSUPPORTED", converter, err)
	}
}
