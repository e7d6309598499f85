package pipeline

import "fmt"

// BoundaryKind ranks an upcoming unit by how natural a file break is before it.
type BoundaryKind int

const (
	BoundaryMajor BoundaryKind = iota // body-level title, top-level section
	BoundaryMinor                     // nested section
	BoundaryLeaf                      // image, annotation
)

// String returns the kind name.
func (k BoundaryKind) String() string {
	switch k {
	case BoundaryMajor:
		return "major"
	case BoundaryMinor:
		return "minor"
	case BoundaryLeaf:
		return "leaf"
	default:
		return fmt.Sprintf("BoundaryKind(%d)", int(k))
	}
}

// SplitRule sets the threshold for one boundary kind as a fraction of the
// maximum unit size.
type SplitRule struct {
	Kind BoundaryKind
	Num  int
	Den  int
}

// DefaultSplitRules splits eagerly before major boundaries and as late as
// possible before leaves.
var DefaultSplitRules = []SplitRule{
	{Kind: BoundaryMajor, Num: 1, Den: 2},
	{Kind: BoundaryMinor, Num: 3, Den: 4},
	{Kind: BoundaryLeaf, Num: 5, Den: 6},
}

// SplitPolicy decides whether the next unit starts a new output file.
type SplitPolicy struct {
	max   int
	rules []SplitRule
}

// NewSplitPolicy creates a policy over DefaultSplitRules.
func NewSplitPolicy(maxUnitSize int) SplitPolicy {
	return SplitPolicy{max: maxUnitSize, rules: DefaultSplitRules}
}

// Max returns the maximum unit size.
func (p SplitPolicy) Max() int { return p.max }

// Threshold returns the accumulated size above which a unit of kind k
// starts a new file. Unknown kinds use the maximum.
func (p SplitPolicy) Threshold(k BoundaryKind) int {
	for _, r := range p.rules {
		if r.Kind == k {
			return p.max * r.Num / r.Den
		}
	}
	return p.max
}

// KindOf classifies unit i.
func KindOf(units Units, i int) BoundaryKind {
	u := &units[i]
	switch u.Type {
	case UnitSection:
		if u.Parent == NoParent {
			return BoundaryMajor
		}
		return BoundaryMinor
	case UnitImage, UnitAnnotation:
		return BoundaryLeaf
	default:
		return BoundaryMajor
	}
}

// Forced reports a structural break before unit i that does not depend on
// size: the first unit, a change of body, or entering or leaving a cover page.
func Forced(units Units, i int) bool {
	if i == 0 {
		return true
	}
	prev, next := &units[i-1], &units[i]
	if prev.BodyType != next.BodyType {
		return true
	}
	return prev.Type == UnitCoverPage || next.Type == UnitCoverPage
}

// ShouldSplit reports whether unit i starts a new file given the size
// already accumulated in the current one. An empty file is never split, so a
// unit larger than the maximum is emitted whole.
func (p SplitPolicy) ShouldSplit(acc int, units Units, i int) bool {
	if Forced(units, i) {
		return true
	}
	if acc == 0 {
		return false
	}
	if acc > p.Threshold(KindOf(units, i)) {
		return true
	}
	return acc+units[i].Size > p.max
}
