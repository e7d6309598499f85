package pipeline

import (
	"fmt"
	"slices"
)

// NoParent marks a unit without an enclosing unit.
const NoParent = -1

// NoUnit is the owner of reference ids defined outside any unit.
const NoUnit = -1

// BodyType classifies the content role of a unit.
type BodyType int

const (
	BodyNone     BodyType = iota // description content (cover page, annotation)
	BodyMain                     // main narrative
	BodyNotes                    // <body name="notes">
	BodyComments                 // <body name="comments">
)

// String returns the body type name.
func (b BodyType) String() string {
	switch b {
	case BodyNone:
		return "none"
	case BodyMain:
		return "main"
	case BodyNotes:
		return "notes"
	case BodyComments:
		return "comments"
	default:
		return fmt.Sprintf("BodyType(%d)", int(b))
	}
}

// UnitType classifies the structural kind of a unit.
type UnitType int

const (
	UnitNone UnitType = iota
	UnitCoverPage
	UnitAnnotation
	UnitImage
	UnitTitle
	UnitSection
)

// String returns the unit type name.
func (t UnitType) String() string {
	switch t {
	case UnitNone:
		return "none"
	case UnitCoverPage:
		return "coverpage"
	case UnitAnnotation:
		return "annotation"
	case UnitImage:
		return "image"
	case UnitTitle:
		return "title"
	case UnitSection:
		return "section"
	default:
		return fmt.Sprintf("UnitType(%d)", int(t))
	}
}

// Unit is one structural piece of the source document.
//
// Type, BodyType, ID, Title, Size, Parent, RefIDs, Refs, NoteRefID and Anchor
// are fixed by Collect. File, FileID and Level are filled in by Assemble.
type Unit struct {
	BodyType  BodyType
	Type      UnitType
	ID        int      // sequential within (Type, BodyType)
	Title     string   // heading text, whitespace collapsed
	Size      int      // content cost attributed to this unit
	Parent    int      // index of the enclosing unit or NoParent
	RefIDs    []string // canonical ids defined by this unit's content
	Refs      []string // link targets used by this unit's content, sorted, unique
	NoteRefID string   // anchor of an addressable note or comment
	Anchor    string   // canonical id declared on the unit's own element
	File      string
	FileID    string
	Level     int
}

// Navigable reports whether the unit takes part in the navigation hierarchy.
func (u *Unit) Navigable() bool {
	return u.Type == UnitTitle || u.Type == UnitSection
}

// String returns a short diagnostic form such as "section/main#3".
func (u *Unit) String() string {
	return fmt.Sprintf("%s/%s#%d", u.Type, u.BodyType, u.ID)
}

// Units is the ordered arena of units. Index order is document order.
type Units []Unit

// Depth returns the number of navigable units on the parent chain of unit i,
// the unit itself included.
func (us Units) Depth(i int) int {
	depth := 0
	for j := i; j != NoParent; j = us[j].Parent {
		if us[j].Navigable() {
			depth++
		}
	}
	return depth
}

// Children returns the indices of the direct children of unit i, or of the
// top-level units when i is NoParent.
func (us Units) Children(i int) []int {
	var out []int
	for j := range us {
		if us[j].Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// addRef inserts id into a sorted set.
func addRef(refs []string, id string) []string {
	i, found := slices.BinarySearch(refs, id)
	if found {
		return refs
	}
	return slices.Insert(refs, i, id)
}
