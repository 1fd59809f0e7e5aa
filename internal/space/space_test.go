package space

import (
	"testing"

	"github.com/tachyon-beep/murk/internal/ids"
)

func TestLine1DAbsorbEdgeCounts(t *testing.T) {
	l, err := NewLine1D(4, EdgeAbsorb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(l.Neighbours(ids.Coord{0})); got != 1 {
		t.Errorf("boundary cell: got %d neighbours, want 1", got)
	}
	if got := len(l.Neighbours(ids.Coord{1})); got != 2 {
		t.Errorf("interior cell: got %d neighbours, want 2", got)
	}
}

func TestLine1DWrapEdgeAlwaysTwoNeighbours(t *testing.T) {
	l, err := NewLine1D(4, EdgeWrap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if got := len(l.Neighbours(ids.Coord{int32(i)})); got != 2 {
			t.Errorf("cell %d: got %d neighbours, want 2", i, got)
		}
	}
}

func TestLine1DClampEdgeSelfLoop(t *testing.T) {
	l, err := NewLine1D(4, EdgeClamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ns := l.Neighbours(ids.Coord{0})
	found := false
	for _, n := range ns {
		if n[0] == 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected clamp edge to include self-loop neighbour at boundary")
	}
}

func TestLine1DInstanceIDsAreDistinct(t *testing.T) {
	a, _ := NewLine1D(2, EdgeAbsorb)
	b, _ := NewLine1D(2, EdgeAbsorb)
	if a.InstanceID() == b.InstanceID() {
		t.Error("expected distinct instance IDs")
	}
	if !a.TopologyEq(b) {
		t.Error("expected topology equality for same n/edge")
	}
}

func TestLine1DCanonicalOrderingAndRank(t *testing.T) {
	l, _ := NewLine1D(3, EdgeAbsorb)
	ordering := l.CanonicalOrdering()
	if len(ordering) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(ordering))
	}
	for i, c := range ordering {
		if rank := l.CanonicalRank(c); rank != i {
			t.Errorf("CanonicalRank(%v) = %d, want %d", c, rank, i)
		}
	}
}

func TestLine1DRejectsZeroCells(t *testing.T) {
	if _, err := NewLine1D(0, EdgeAbsorb); err == nil {
		t.Fatal("expected error for zero cells")
	}
}

func TestLine1DCompileRegionClipsToBounds(t *testing.T) {
	l, _ := NewLine1D(5, EdgeAbsorb)
	plan, err := l.CompileRegion(RegionSpec{Center: ids.Coord{0}, Radius: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Coords) != 3 {
		t.Fatalf("expected 3 cells (0,1,2), got %d", len(plan.Coords))
	}
	idx := l.MapCoordToTensorIndex(ids.Coord{1}, plan)
	if idx != 1 {
		t.Errorf("MapCoordToTensorIndex = %d, want 1", idx)
	}
}
