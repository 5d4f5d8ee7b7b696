package person

import (
	"slices"
	"strconv"
	"strings"
)

// ID identifies a person. Zero means "no person" in link fields.
type ID uint

// String returns the decimal form of the identifier.
func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParseID parses a decimal identifier. Empty input yields zero (no link).
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

// Sex is the recorded sex of a person. The zero value means unknown.
type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// ParseSex maps the spellings found in CSV, spreadsheet and GEDCOM exports
// onto a Sex. Unrecognized values map to SexUnknown.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man", "boy":
		return SexMale
	case "f", "female", "woman", "girl":
		return SexFemale
	default:
		return SexUnknown
	}
}

// TreeAll is the synthetic tree key selecting the union of all trees.
const TreeAll = "all"

// Metadata stores arbitrary extra key-value pairs attached to a record.
type Metadata map[string]any

// Person is a single genealogy record.
//
// The zero value is not valid: ID must be positive and Name non-empty.
type Person struct {
	ID       ID       `json:"id" yaml:"id" bson:"id" validate:"required,gt=0"`
	Name     string   `json:"name" yaml:"name" bson:"name" validate:"required,max=256"`
	Sex      Sex      `json:"sex,omitempty" yaml:"sex,omitempty" bson:"sex,omitempty" validate:"omitempty,oneof=male female"`
	ParentID ID       `json:"parentId,omitempty" yaml:"parentId,omitempty" bson:"parent_id,omitempty"`
	FatherID ID       `json:"fatherId,omitempty" yaml:"fatherId,omitempty" bson:"father_id,omitempty"`
	MotherID ID       `json:"motherId,omitempty" yaml:"motherId,omitempty" bson:"mother_id,omitempty"`
	SpouseID ID       `json:"spouseId,omitempty" yaml:"spouseId,omitempty" bson:"spouse_id,omitempty"`
	ImageID  string   `json:"imageId,omitempty" yaml:"imageId,omitempty" bson:"image_id,omitempty"`
	Birth    string   `json:"birth,omitempty" yaml:"birth,omitempty" bson:"birth,omitempty"`
	Death    string   `json:"death,omitempty" yaml:"death,omitempty" bson:"death,omitempty"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
	Tree     string   `json:"tree,omitempty" yaml:"tree,omitempty" bson:"tree,omitempty" validate:"max=64"`
	Meta     Metadata `json:"meta,omitempty" yaml:"meta,omitempty" bson:"meta,omitempty"`
}

// Parents returns the distinct non-zero parent links in the order
// father, mother, generic parent.
func (p Person) Parents() []ID {
	var ids []ID
	for _, id := range [...]ID{p.FatherID, p.MotherID, p.ParentID} {
		if id != 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasParent reports whether id is one of the person's parent links.
func (p Person) HasParent(id ID) bool {
	return id != 0 && (p.FatherID == id || p.MotherID == id || p.ParentID == id)
}

// InTree reports whether the record belongs to the tree selected by key.
func (p Person) InTree(key string) bool {
	return key == TreeAll || p.Tree == key
}

// Clone returns a copy whose Meta map is not shared with p.
func (p Person) Clone() Person {
	if p.Meta != nil {
		meta := make(Metadata, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}
		p.Meta = meta
	}
	return p
}

// Patch describes a partial update. Nil fields are left unchanged; a pointer
// to the zero value clears the field.
type Patch struct {
	Name     *string   `json:"name,omitempty"`
	Sex      *Sex      `json:"sex,omitempty"`
	ParentID *ID       `json:"parentId,omitempty"`
	FatherID *ID       `json:"fatherId,omitempty"`
	MotherID *ID       `json:"motherId,omitempty"`
	SpouseID *ID       `json:"spouseId,omitempty"`
	ImageID  *string   `json:"imageId,omitempty"`
	Birth    *string   `json:"birth,omitempty"`
	Death    *string   `json:"death,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Tree     *string   `json:"tree,omitempty"`
	Meta     *Metadata `json:"meta,omitempty"`
}

// Apply returns p with the patch applied. p itself is not modified.
func (pt Patch) Apply(p Person) Person {
	p = p.Clone()
	setString(&p.Name, pt.Name)
	if pt.Sex != nil {
		p.Sex = *pt.Sex
	}
	setID(&p.ParentID, pt.ParentID)
	setID(&p.FatherID, pt.FatherID)
	setID(&p.MotherID, pt.MotherID)
	setID(&p.SpouseID, pt.SpouseID)
	setString(&p.ImageID, pt.ImageID)
	setString(&p.Birth, pt.Birth)
	setString(&p.Death, pt.Death)
	setString(&p.Notes, pt.Notes)
	setString(&p.Tree, pt.Tree)
	if pt.Meta != nil {
		p.Meta = *pt.Meta
	}
	return p
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setID(dst *ID, v *ID) {
	if v != nil {
		*dst = *v
	}
}
