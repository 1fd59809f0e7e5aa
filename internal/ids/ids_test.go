package ids

import "testing"

func TestNextSpaceInstanceIdMonotonicNoReuse(t *testing.T) {
	seen := make(map[SpaceInstanceId]bool)
	var prev SpaceInstanceId
	for i := 0; i < 100; i++ {
		id := NextSpaceInstanceId()
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		if id <= prev {
			t.Fatalf("id %d not monotonic after %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNewRegistryAssignsIdsInOrder(t *testing.T) {
	reg, err := NewRegistry([]FieldDescriptor{
		{Name: "temperature", Shape: ShapeClass{Kind: ShapeScalar}, Mutability: PerTick},
		{Name: "velocity", Shape: ShapeClass{Kind: ShapeFixedVector, Components: 2}, Mutability: PerTick},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, ok := reg.Lookup("velocity")
	if !ok || id != 1 {
		t.Fatalf("expected velocity at FieldId 1, got %d ok=%v", id, ok)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", reg.Len())
	}
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry([]FieldDescriptor{{Name: ""}})
	if err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNewRegistryRejectsDuplicateName(t *testing.T) {
	_, err := NewRegistry([]FieldDescriptor{
		{Name: "a", Shape: ShapeClass{Kind: ShapeScalar}},
		{Name: "a", Shape: ShapeClass{Kind: ShapeScalar}},
	})
	if err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestNewRegistryRejectsZeroComponentVector(t *testing.T) {
	_, err := NewRegistry([]FieldDescriptor{
		{Name: "v", Shape: ShapeClass{Kind: ShapeFixedVector, Components: 0}},
	})
	if err == nil {
		t.Fatal("expected error for zero-component vector")
	}
}

func TestNewRegistryRejectsInvertedBounds(t *testing.T) {
	_, err := NewRegistry([]FieldDescriptor{
		{Name: "b", Shape: ShapeClass{Kind: ShapeScalar}, Bounds: Bounds{Set: true, Lo: 10, Hi: 0}},
	})
	if err == nil {
		t.Fatal("expected error for lo > hi")
	}
}

func TestShapeClassNumComponents(t *testing.T) {
	cases := []struct {
		shape ShapeClass
		want  uint32
	}{
		{ShapeClass{Kind: ShapeScalar}, 1},
		{ShapeClass{Kind: ShapeFixedVector, Components: 3}, 3},
		{ShapeClass{Kind: ShapeCategorical, Components: 5}, 5},
	}
	for _, c := range cases {
		if got := c.shape.NumComponents(); got != c.want {
			t.Errorf("NumComponents() = %d, want %d", got, c.want)
		}
	}
}
