package pipeline

import "testing"

func TestSplitPolicy_Threshold(t *testing.T) {
	t.Parallel()

	p := NewSplitPolicy(1200)
	tests := []struct {
		kind BoundaryKind
		want int
	}{
		{BoundaryMajor, 600},
		{BoundaryMinor, 900},
		{BoundaryLeaf, 1000},
		{BoundaryKind(42), 1200},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			if got := p.Threshold(tt.kind); got != tt.want {
				t.Errorf("Threshold(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	units := Units{
		{Type: UnitTitle, BodyType: BodyMain, Parent: NoParent},
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent},
		{Type: UnitSection, BodyType: BodyMain, Parent: 1},
		{Type: UnitImage, BodyType: BodyMain, Parent: NoParent},
		{Type: UnitAnnotation, BodyType: BodyNone, Parent: NoParent},
	}
	want := []BoundaryKind{BoundaryMajor, BoundaryMajor, BoundaryMinor, BoundaryLeaf, BoundaryLeaf}
	for i, w := range want {
		if got := KindOf(units, i); got != w {
			t.Errorf("KindOf(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestForced(t *testing.T) {
	t.Parallel()

	units := Units{
		{Type: UnitCoverPage, BodyType: BodyNone, Parent: NoParent},
		{Type: UnitAnnotation, BodyType: BodyNone, Parent: NoParent},
		{Type: UnitAnnotation, BodyType: BodyNone, Parent: NoParent},
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent},
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent},
		{Type: UnitSection, BodyType: BodyNotes, Parent: NoParent},
	}
	want := []bool{true, true, false, true, false, true}
	for i, w := range want {
		if got := Forced(units, i); got != w {
			t.Errorf("Forced(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestSplitPolicy_ShouldSplit(t *testing.T) {
	t.Parallel()

	p := NewSplitPolicy(1000)
	units := Units{
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent, Size: 10},
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent, Size: 10},
		{Type: UnitSection, BodyType: BodyMain, Parent: 1, Size: 10},
		{Type: UnitImage, BodyType: BodyMain, Parent: 1, Size: 10},
		{Type: UnitSection, BodyType: BodyMain, Parent: NoParent, Size: 5000},
		{Type: UnitImage, BodyType: BodyMain, Parent: NoParent, Size: 400},
	}

	tests := []struct {
		name string
		acc  int
		unit int
		want bool
	}{
		{name: "first unit is always split", acc: 0, unit: 0, want: true},
		{name: "major below threshold", acc: 500, unit: 1, want: false},
		{name: "major above threshold", acc: 501, unit: 1, want: true},
		{name: "minor below threshold", acc: 750, unit: 2, want: false},
		{name: "minor above threshold", acc: 751, unit: 2, want: true},
		{name: "leaf below threshold", acc: 833, unit: 3, want: false},
		{name: "leaf above threshold", acc: 834, unit: 3, want: true},
		{name: "next unit would overflow", acc: 700, unit: 5, want: true},
		{name: "next unit fits", acc: 600, unit: 5, want: false},
		{name: "oversized unit after content", acc: 1, unit: 4, want: true},
		{name: "oversized unit in empty file", acc: 0, unit: 4, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.ShouldSplit(tt.acc, units, tt.unit); got != tt.want {
				t.Errorf("ShouldSplit(%d, %d) = %v, want %v", tt.acc, tt.unit, got, tt.want)
			}
		})
	}
}
