package forest

import (
	"fmt"

	"github.com/matzehuels/kintree/pkg/person"
)

// DiagnosticKind classifies a recoverable data defect found during a build.
type DiagnosticKind string

const (
	DiagDuplicateRecord  DiagnosticKind = "duplicate-record"
	DiagDanglingParent   DiagnosticKind = "dangling-parent"
	DiagDanglingSpouse   DiagnosticKind = "dangling-spouse"
	DiagSelfSpouse       DiagnosticKind = "self-spouse"
	DiagOneSidedSpouse   DiagnosticKind = "one-sided-spouse"
	DiagConflictedSpouse DiagnosticKind = "conflicted-spouse"
	DiagSelfParent       DiagnosticKind = "self-parent"
	DiagParentCycle      DiagnosticKind = "parent-cycle"
)

// Diagnostic describes one defect. ID is the record carrying the bad link
// and Ref the identifier it points to.
type Diagnostic struct {
	Kind DiagnosticKind
	ID   person.ID
	Ref  person.ID
	Err  error
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagDuplicateRecord:
		return fmt.Sprintf("person %d appears more than once; later copies ignored", d.ID)
	case DiagDanglingParent:
		return fmt.Sprintf("person %d: parent %d not found", d.ID, d.Ref)
	case DiagDanglingSpouse:
		return fmt.Sprintf("person %d: spouse %d not found", d.ID, d.Ref)
	case DiagSelfSpouse:
		return fmt.Sprintf("person %d is linked as their own spouse", d.ID)
	case DiagOneSidedSpouse:
		return fmt.Sprintf("person %d: spouse link to %d is one-sided; inferred the other side", d.ID, d.Ref)
	case DiagConflictedSpouse:
		return fmt.Sprintf("person %d: spouse %d is linked to someone else", d.ID, d.Ref)
	case DiagSelfParent:
		return fmt.Sprintf("person %d is linked as their own parent", d.ID)
	case DiagParentCycle:
		return fmt.Sprintf("person %d: parent link to %d closes an ancestry loop; dropped", d.ID, d.Ref)
	default:
		return fmt.Sprintf("person %d: %s", d.ID, d.Kind)
	}
}

// Unresolved is a record excluded from the forest.
type Unresolved struct {
	Person person.Person
	Err    error
}
