// Package io converts person records to and from external file formats.
//
// # Codecs
//
// Every format implements [Codec]: Encode turns an ordered slice of records
// into bytes and Decode turns bytes back into records. Decoding never touches
// a store; callers load the result with person.Store.Replace, which either
// accepts every record or none.
//
//	c, err := io.ForPath("family.ged")
//	people, err := c.Decode(data)
//	err = store.Replace(people)
//
// Available formats:
//
//   - json: an array of person objects. Lossless.
//   - csv: a header row and one row per person with the columns
//     id, name, sex, parentId, fatherId, motherId, spouseId, imageId, birth,
//     death, notes, tree. Lossless except for meta.
//   - sheets: the same schema as csv, with the friendlier header names a
//     Google Sheets export uses ("Full Name", "Gender", "Father ID", "Born").
//   - gedcom: GEDCOM 5.5.1 INDI and FAM records. Lossy (see below).
//   - yaml: the json schema written as YAML. Lossless.
//
// # GEDCOM
//
// Encode groups each spouse pair and each set of parents into a FAM record
// and marks spouse pairs with MARR. The husband slot goes to the male
// partner, or to the lower id when sex does not decide. Decode reads INDI
// (NAME, SEX, BIRT/DATE, DEAT/DATE, NOTE with CONT and CONC, OBJE/FILE) and
// FAM (HUSB, WIFE, CHIL, MARR) and ignores every other tag. HUSB and WIFE
// become spouses only when the FAM has MARR or no children. A header declaring a major GEDCOM version other than 5 or 7 is
// rejected with UNSUPPORTED_VERSION.
//
// GEDCOM has no place for the tree key or meta, and a FAM cannot tell a
// generic parent link from a father or mother link. After a round trip a
// generic parent comes back as father (or mother, for a female parent).
//
// # Files
//
// [ImportFile] and [ExportFile] pick the codec from the file extension when
// none is given, and report the operation to the registered codec hooks.
package io
