package io

import (
	"bytes"
	"encoding/csv"
	stdio "io"
	"strings"
	"unicode"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

const (
	colID = iota
	colName
	colSex
	colParent
	colFather
	colMother
	colSpouse
	colImage
	colBirth
	colDeath
	colNotes
	colTree
	numColumns
)

var canonicalHeaders = [numColumns]string{
	"id", "name", "sex", "parentId", "fatherId", "motherId", "spouseId",
	"imageId", "birth", "death", "notes", "tree",
}

var canonicalAliases = func() map[string]int {
	m := make(map[string]int, numColumns)
	for i, h := range canonicalHeaders {
		m[normalizeHeader(h)] = i
	}
	m["parentids"] = colParent
	return m
}()

var sheetsHeaders = [numColumns]string{
	"ID", "Full Name", "Gender", "Parent ID", "Father ID", "Mother ID",
	"Spouse ID", "Photo", "Born", "Died", "Notes", "Family",
}

var sheetsAliases = func() map[string]int {
	m := make(map[string]int)
	for col, names := range map[int][]string{
		colID:     {"id", "person id", "member id"},
		colName:   {"name", "full name", "display name", "person"},
		colSex:    {"sex", "gender"},
		colParent: {"parent", "parent id", "parentid"},
		colFather: {"father", "father id", "dad"},
		colMother: {"mother", "mother id", "mom", "mum"},
		colSpouse: {"spouse", "spouse id", "partner", "partner id", "husband/wife"},
		colImage:  {"image", "image id", "photo", "photo id", "picture"},
		colBirth:  {"birth", "born", "birth date", "date of birth"},
		colDeath:  {"death", "died", "death date", "date of death"},
		colNotes:  {"notes", "note", "comments", "bio"},
		colTree:   {"tree", "family", "family tree", "branch"},
	} {
		for _, n := range names {
			m[normalizeHeader(n)] = col
		}
	}
	return m
}()

// normalizeHeader lowercases h and drops everything but letters and digits.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type csvCodec struct {
	format    string
	headers   [numColumns]string
	aliases   map[string]int
	skipBlank bool
}

func newCSV(format string, headers [numColumns]string, aliases map[string]int, skipBlank bool) *csvCodec {
	return &csvCodec{format: format, headers: headers, aliases: aliases, skipBlank: skipBlank}
}

func (c *csvCodec) Format() string { return c.format }
func (c *csvCodec) Ext() string    { return ".csv" }

// Encode writes a header row followed by one row per record. Zero links
// are written as empty cells.
func (c *csvCodec) Encode(people []person.Person) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(c.headers[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write csv header")
	}
	for _, p := range people {
		row := [numColumns]string{
			colID:     p.ID.String(),
			colName:   p.Name,
			colSex:    string(p.Sex),
			colParent: idCell(p.ParentID),
			colFather: idCell(p.FatherID),
			colMother: idCell(p.MotherID),
			colSpouse: idCell(p.SpouseID),
			colImage:  p.ImageID,
			colBirth:  p.Birth,
			colDeath:  p.Death,
			colNotes:  p.Notes,
			colTree:   p.Tree,
		}
		if err := w.Write(row[:]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write person %d", p.ID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write csv")
	}
	return buf.Bytes(), nil
}

func idCell(id person.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}

// Decode reads a header row and maps every following row onto a record.
// Unknown columns are ignored and absent optional columns stay empty.
func (c *csvCodec) Decode(data []byte) ([]person.Person, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == stdio.EOF {
		return nil, errors.Wrap(errors.ErrCodeMissingColumn, &errors.ColumnError{Column: "id"}, "read %s", c.format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s header", c.format)
	}

	index := [numColumns]int{}
	for i := range index {
		index[i] = -1
	}
	for i, h := range header {
		if col, ok := c.aliases[normalizeHeader(h)]; ok && index[col] < 0 {
			index[col] = i
		}
	}
	for _, col := range [...]int{colID, colName} {
		if index[col] < 0 {
			return nil, errors.Wrap(errors.ErrCodeMissingColumn, &errors.ColumnError{Column: canonicalHeaders[col]}, "read %s", c.format)
		}
	}

	var people []person.Person
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == stdio.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s row %d", c.format, line)
		}
		if c.skipBlank && blank(row) {
			continue
		}
		p, err := c.record(row, index, header, line)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

func (c *csvCodec) record(row []string, index [numColumns]int, header []string, line int) (person.Person, error) {
	cell := func(col int) string {
		if i := index[col]; i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	var ids [numColumns]person.ID
	for _, col := range [...]int{colID, colParent, colFather, colMother, colSpouse} {
		id, err := person.ParseID(cell(col))
		if err != nil {
			return person.Person{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "row %d column %q", line, header[index[col]])
		}
		ids[col] = id
	}
	if ids[colID] == 0 {
		return person.Person{}, errors.New(errors.ErrCodeInvalidInput, "row %d column %q: id is required", line, header[index[colID]])
	}
	return person.Person{
		ID:       ids[colID],
		Name:     cell(colName),
		Sex:      person.ParseSex(cell(colSex)),
		ParentID: ids[colParent],
		FatherID: ids[colFather],
		MotherID: ids[colMother],
		SpouseID: ids[colSpouse],
		ImageID:  cell(colImage),
		Birth:    cell(colBirth),
		Death:    cell(colDeath),
		Notes:    cell(colNotes),
		Tree:     cell(colTree),
	}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
