package io

import (
	"bufio"
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// gedcomVersion is written to HEAD.GEDC.VERS.
const gedcomVersion = "5.5.1"

type gedcomCodec struct{}

func (gedcomCodec) Format() string { return "gedcom" }
func (gedcomCodec) Ext() string    { return ".ged" }

// family is one FAM record: up to two partners and their children.
// married is set when the partners are linked as spouses.
type family struct {
	xref     string
	partners []person.ID
	children []person.ID
	married  bool
}

// families groups spouse pairs and parent sets into FAM records, in the
// order they are first seen.
func families(people []person.Person) []*family {
	byKey := make(map[[2]person.ID]*family)
	var out []*family

	get := func(ids ...person.ID) *family {
		slices.Sort(ids)
		key := [2]person.ID{ids[0]}
		if len(ids) > 1 {
			key[1] = ids[1]
		}
		if f, ok := byKey[key]; ok {
			return f
		}
		f := &family{xref: fmt.Sprintf("@F%d@", len(out)+1), partners: slices.Clone(ids)}
		byKey[key] = f
		out = append(out, f)
		return f
	}

	known := make(map[person.ID]bool, len(people))
	for _, p := range people {
		known[p.ID] = true
	}
	for _, p := range people {
		if s := p.SpouseID; s != 0 && s != p.ID && known[s] {
			get(p.ID, s).married = true
		}
		var parents []person.ID
		for _, id := range p.Parents() {
			if known[id] && id != p.ID && len(parents) < 2 {
				parents = append(parents, id)
			}
		}
		if len(parents) > 0 {
			f := get(parents...)
			f.children = append(f.children, p.ID)
		}
	}
	return out
}

// Encode writes a GEDCOM 5.5.1 file with one INDI per record and one FAM per
// spouse pair or parent set. Only spouse pairs carry MARR.
func (gedcomCodec) Encode(people []person.Person) ([]byte, error) {
	fams := families(people)
	byID := make(map[person.ID]person.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}
	childOf := make(map[person.ID][]string)
	spouseOf := make(map[person.ID][]string)
	for _, f := range fams {
		for _, id := range f.partners {
			spouseOf[id] = append(spouseOf[id], f.xref)
		}
		for _, id := range f.children {
			childOf[id] = append(childOf[id], f.xref)
		}
	}

	var b bytes.Buffer
	line := func(level int, tag, value string) {
		if value == "" {
			fmt.Fprintf(&b, "%d %s\n", level, tag)
		} else {
			fmt.Fprintf(&b, "%d %s %s\n", level, tag, escapeGedcom(value))
		}
	}

	b.WriteString("0 HEAD\n")
	line(1, "SOUR", "KINTREE")
	line(1, "GEDC", "")
	line(2, "VERS", gedcomVersion)
	line(2, "FORM", "LINEAGE-LINKED")
	line(1, "CHAR", "UTF-8")

	for _, p := range people {
		fmt.Fprintf(&b, "0 @I%d@ INDI\n", p.ID)
		line(1, "NAME", gedcomName(p.Name))
		switch p.Sex {
		case person.SexMale:
			line(1, "SEX", "M")
		case person.SexFemale:
			line(1, "SEX", "F")
		default:
			line(1, "SEX", "U")
		}
		if p.Birth != "" {
			line(1, "BIRT", "")
			line(2, "DATE", p.Birth)
		}
		if p.Death != "" {
			line(1, "DEAT", "")
			line(2, "DATE", p.Death)
		}
		if p.ImageID != "" {
			line(1, "OBJE", "")
			line(2, "FILE", p.ImageID)
		}
		if p.Notes != "" {
			for i, l := range strings.Split(p.Notes, "\n") {
				if i == 0 {
					line(1, "NOTE", l)
				} else {
					line(2, "CONT", l)
				}
			}
		}
		for _, x := range childOf[p.ID] {
			line(1, "FAMC", x)
		}
		for _, x := range spouseOf[p.ID] {
			line(1, "FAMS", x)
		}
	}

	for _, f := range fams {
		fmt.Fprintf(&b, "0 %s FAM\n", f.xref)
		husb, wife := assignSlots(f.partners, byID)
		if husb != 0 {
			line(1, "HUSB", fmt.Sprintf("@I%d@", husb))
		}
		if wife != 0 {
			line(1, "WIFE", fmt.Sprintf("@I%d@", wife))
		}
		if f.married {
			line(1, "MARR", "")
		}
		for _, c := range f.children {
			line(1, "CHIL", fmt.Sprintf("@I%d@", c))
		}
	}
	b.WriteString("0 TRLR\n")
	return b.Bytes(), nil
}

// assignSlots puts partners into the HUSB and WIFE slots: by sex where it
// decides, otherwise the lower id takes HUSB.
func assignSlots(partners []person.ID, byID map[person.ID]person.Person) (husb, wife person.ID) {
	if len(partners) == 1 {
		if byID[partners[0]].Sex == person.SexFemale {
			return 0, partners[0]
		}
		return partners[0], 0
	}
	a, b := partners[0], partners[1]
	sa, sb := byID[a].Sex, byID[b].Sex
	if sa == person.SexFemale && sb != person.SexFemale || sb == person.SexMale && sa != person.SexMale {
		return b, a
	}
	return a, b
}

// gedcomName marks the last word as the surname: "Ada King" -> "Ada /King/".
func gedcomName(name string) string {
	words := strings.Fields(name)
	if len(words) < 2 {
		return name
	}
	return strings.Join(words[:len(words)-1], " ") + " /" + words[len(words)-1] + "/"
}

func escapeGedcom(v string) string {
	if strings.HasPrefix(v, "@") && !strings.HasSuffix(v, "@") {
		return "@" + v
	}
	return v
}

// gedcomLine is one parsed line.
type gedcomLine struct {
	level int
	xref  string
	tag   string
	value string
}

func parseGedcomLine(s string, n int) (gedcomLine, error) {
	level, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	lv, err := strconv.Atoi(level)
	if err != nil || lv < 0 {
		return gedcomLine{}, errors.New(errors.ErrCodeInvalidFormat, "line %d: invalid level %q", n, level)
	}
	l := gedcomLine{level: lv}
	if strings.HasPrefix(rest, "@") {
		l.xref, rest, _ = strings.Cut(rest, " ")
	}
	l.tag, l.value, _ = strings.Cut(rest, " ")
	if l.tag == "" {
		return gedcomLine{}, errors.New(errors.ErrCodeInvalidFormat, "line %d: missing tag", n)
	}
	l.value = strings.ReplaceAll(l.value, "@@", "@")
	return l, nil
}

type indi struct {
	xref                string
	name, sex           string
	birth, death, notes string
	image               string
}

type fam struct {
	husb, wife string
	chil       []string
	married    bool
}

// partnered reports whether the FAM links its HUSB and WIFE as spouses: it
// records a marriage, or it lists no children and so only names a couple.
func (f *fam) partnered() bool {
	return f.married || len(f.chil) == 0
}

// Decode reads INDI and FAM records. Unknown tags are skipped.
func (gedcomCodec) Decode(data []byte) ([]person.Person, error) {
	var (
		indis   []*indi
		famList []*fam
		cur     *indi
		curFam  *fam
		stack   [8]string
	)

	sc := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		l, err := parseGedcomLine(sc.Text(), n)
		if err != nil {
			return nil, err
		}
		if l.level < len(stack) {
			stack[l.level] = l.tag
		}

		if l.level == 0 {
			cur, curFam = nil, nil
			switch l.tag {
			case "INDI":
				cur = &indi{xref: l.xref}
				indis = append(indis, cur)
			case "FAM":
				curFam = &fam{}
				famList = append(famList, curFam)
			}
			continue
		}

		switch {
		case stack[0] == "HEAD" && l.level == 2 && stack[1] == "GEDC" && l.tag == "VERS":
			v := strings.TrimSpace(l.value)
			if major, _, _ := strings.Cut(v, "."); major != "5" && major != "7" {
				return nil, errors.Wrap(errors.ErrCodeUnsupportedVersion, &errors.VersionError{Version: v}, "read gedcom")
			}
		case cur != nil:
			cur.apply(l, stack[1])
		case curFam != nil && l.level == 1:
			switch l.tag {
			case "HUSB":
				curFam.husb = l.value
			case "WIFE":
				curFam.wife = l.value
			case "CHIL":
				curFam.chil = append(curFam.chil, l.value)
			case "MARR":
				curFam.married = true
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read gedcom")
	}

	return link(indis, famList), nil
}

func (in *indi) apply(l gedcomLine, parent string) {
	switch l.level {
	case 1:
		switch l.tag {
		case "NAME":
			if in.name == "" {
				in.name = strings.Join(strings.Fields(strings.ReplaceAll(l.value, "/", " ")), " ")
			}
		case "SEX":
			in.sex = l.value
		case "NOTE":
			if strings.HasPrefix(l.value, "@") {
				return
			}
			if in.notes != "" {
				in.notes += "\n"
			}
			in.notes += l.value
		}
	case 2:
		switch {
		case parent == "BIRT" && l.tag == "DATE":
			in.birth = l.value
		case parent == "DEAT" && l.tag == "DATE":
			in.death = l.value
		case parent == "OBJE" && l.tag == "FILE" && in.image == "":
			in.image = l.value
		case parent == "NOTE" && l.tag == "CONT":
			in.notes += "\n" + l.value
		case parent == "NOTE" && l.tag == "CONC":
			in.notes += l.value
		}
	}
}

// xrefID extracts the digits of an xref such as "@I12@".
func xrefID(xref string) person.ID {
	var num person.ID
	for _, n := range xref {
		if n >= '0' && n <= '9' {
			num = num*10 + person.ID(n-'0')
		}
	}
	return num
}

// link turns parsed records into people. Identifiers come from the xref
// digits; records without digits or with a clashing number get fresh ids
// above the largest one in use. Spouse links come only from partnered
// families, so co-parents who never married stay unlinked.
func link(indis []*indi, fams []*fam) []person.Person {
	idOf := make([]person.ID, len(indis))
	used := make(map[person.ID]bool, len(indis))
	var next person.ID
	for i, in := range indis {
		if id := xrefID(in.xref); id != 0 && !used[id] {
			idOf[i] = id
			used[id] = true
			next = max(next, id)
		}
	}

	byXref := make(map[string]person.ID, len(indis))
	index := make(map[person.ID]int, len(indis))
	people := make([]person.Person, len(indis))
	for i, in := range indis {
		if idOf[i] == 0 {
			next++
			idOf[i] = next
		}
		if _, dup := byXref[in.xref]; in.xref != "" && !dup {
			byXref[in.xref] = idOf[i]
		}
		name := in.name
		if name == "" {
			name = "Unknown"
		}
		people[i] = person.Person{
			ID:      idOf[i],
			Name:    name,
			Sex:     person.ParseSex(in.sex),
			Birth:   in.birth,
			Death:   in.death,
			Notes:   in.notes,
			ImageID: in.image,
		}
		index[idOf[i]] = i
	}

	lookup := func(xref string) (person.ID, bool) {
		id, ok := byXref[xref]
		return id, ok
	}

	for _, f := range fams {
		h, okH := lookup(f.husb)
		w, okW := lookup(f.wife)
		if okH && okW && h != w && f.partnered() {
			if p := &people[index[h]]; p.SpouseID == 0 {
				p.SpouseID = w
			}
			if p := &people[index[w]]; p.SpouseID == 0 {
				p.SpouseID = h
			}
		}
		for _, cx := range f.chil {
			c, ok := lookup(cx)
			if !ok {
				continue
			}
			child := &people[index[c]]
			if okH && child.FatherID == 0 && h != c {
				child.FatherID = h
			}
			if okW && child.MotherID == 0 && w != c {
				child.MotherID = w
			}
		}
	}
	return people
}
