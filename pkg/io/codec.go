package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// Codec converts records to and from one file format.
type Codec interface {
	// Format is the short format name, e.g. "gedcom".
	Format() string
	// Ext is the preferred file extension including the dot.
	Ext() string
	Encode(people []person.Person) ([]byte, error)
	Decode(data []byte) ([]person.Person, error)
}

var (
	JSON   Codec = jsonCodec{}
	CSV    Codec = newCSV("csv", canonicalHeaders, canonicalAliases, false)
	Sheets Codec = newCSV("sheets", sheetsHeaders, sheetsAliases, true)
	GEDCOM Codec = gedcomCodec{}
	YAML   Codec = yamlCodec{}
)

// Codecs lists every codec in a stable order.
func Codecs() []Codec {
	return []Codec{JSON, CSV, Sheets, GEDCOM, YAML}
}

// Formats lists the format names accepted by [ForFormat].
func Formats() []string {
	out := make([]string, 0, 5)
	for _, c := range Codecs() {
		out = append(out, c.Format())
	}
	return out
}

// ForFormat returns the codec with the given name.
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "sheets", "gsheets", "google-sheets":
		return Sheets, nil
	case "gedcom", "ged":
		return GEDCOM, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown format %q (want one of %s)", name, strings.Join(Formats(), ", "))
	}
}

// ForPath picks a codec from the extension of path. Plain CSV is assumed
// for .csv files.
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".csv":
		return CSV, nil
	case ".ged", ".gedcom":
		return GEDCOM, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot infer format from %q", path)
	}
}
