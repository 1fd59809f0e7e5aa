/*
Copyright (C) 2026  The murk authors

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package pipeline

import (
	"testing"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
)

const (
	fieldA ids.FieldId = 0
	fieldB ids.FieldId = 1
)

func testRegistry(t *testing.T) *ids.Registry {
	t.Helper()
	r, err := ids.NewRegistry([]ids.FieldDescriptor{
		{Name: "a", Shape: ids.ShapeClass{Kind: ids.ShapeScalar}, Mutability: ids.PerTick},
		{Name: "b", Shape: ids.ShapeClass{Kind: ids.ShapeScalar}, Mutability: ids.PerTick},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func testArena(t *testing.T, cellCount uint32) *arena.Arena {
	t.Helper()
	a, err := arena.New(arena.NewConfig(cellCount), testRegistry(t).All())
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	a.FinishConstruction()
	return a
}

// fakePropagator is a minimal Propagator for pipeline tests.
type fakePropagator struct {
	name          string
	readsCurrent  []ids.FieldId
	readsPrevious []ids.FieldId
	writes        []WriteSpec
	maxDt         float64
	hasMaxDt      bool
	scratchBytes  int
	hasScratch    bool
	run           func(ctx *StepContext) error
}

func (p *fakePropagator) Name() string                { return p.name }
func (p *fakePropagator) ReadsCurrent() []ids.FieldId  { return p.readsCurrent }
func (p *fakePropagator) ReadsPrevious() []ids.FieldId { return p.readsPrevious }
func (p *fakePropagator) Writes() []WriteSpec          { return p.writes }
func (p *fakePropagator) MaxDt() (float64, bool)       { return p.maxDt, p.hasMaxDt }
func (p *fakePropagator) ScratchBytes() (int, bool)    { return p.scratchBytes, p.hasScratch }
func (p *fakePropagator) Step(ctx *StepContext) error  { return p.run(ctx) }

func TestCompileRejectsDoubleWriter(t *testing.T) {
	fields := testRegistry(t)
	p1 := &fakePropagator{name: "p1", writes: []WriteSpec{{Field: fieldA, Mode: arena.Full}}}
	p2 := &fakePropagator{name: "p2", writes: []WriteSpec{{Field: fieldA, Mode: arena.Full}}}
	if _, err := Compile([]Propagator{p1, p2}, fields); err == nil {
		t.Fatal("expected double-writer rejection, got nil")
	}
}

func TestCompileRejectsUnregisteredField(t *testing.T) {
	fields := testRegistry(t)
	p1 := &fakePropagator{name: "p1", writes: []WriteSpec{{Field: 99, Mode: arena.Full}}}
	if _, err := Compile([]Propagator{p1}, fields); err == nil {
		t.Fatal("expected unregistered-field rejection, got nil")
	}
}

func TestCompileDtCapIsMinimumDeclared(t *testing.T) {
	fields := testRegistry(t)
	p1 := &fakePropagator{name: "p1", maxDt: 0.5, hasMaxDt: true}
	p2 := &fakePropagator{name: "p2", maxDt: 0.1, hasMaxDt: true}
	pl, err := Compile([]Propagator{p1, p2}, fields)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pl.DtCap() != 0.1 {
		t.Errorf("dt_cap = %v, want 0.1", pl.DtCap())
	}
}

func TestExecuteRejectsDtAboveCap(t *testing.T) {
	fields := testRegistry(t)
	a := testArena(t, 2)
	p1 := &fakePropagator{name: "p1", maxDt: 0.1, hasMaxDt: true}
	pl, err := Compile([]Propagator{p1}, fields)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	guard, err := a.BeginTick()
	if err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	defer guard.Abort()
	if err := pl.Execute(guard, nil, 1, 0.5); err == nil {
		t.Fatal("expected dt-cap rejection, got nil")
	}
}

// A later propagator reading fieldA through the overlay view sees an
// earlier propagator's write made this same tick.
func TestOverlayPropagatesBetweenPropagatorsInOrder(t *testing.T) {
	fields := testRegistry(t)
	a := testArena(t, 2)
	var observed float32
	writer := &fakePropagator{
		name:   "writer",
		writes: []WriteSpec{{Field: fieldA, Mode: arena.Full}},
		run: func(ctx *StepContext) error {
			g, err := ctx.Write(fieldA)
			if err != nil {
				return err
			}
			g.AsMutSlice()[0] = 7
			return nil
		},
	}
	reader := &fakePropagator{
		name:         "reader",
		readsCurrent: []ids.FieldId{fieldA},
		writes:       []WriteSpec{{Field: fieldB, Mode: arena.Full}},
		run: func(ctx *StepContext) error {
			buf, err := ctx.ReadCurrent(fieldA)
			if err != nil {
				return err
			}
			observed = buf[0]
			g, err := ctx.Write(fieldB)
			if err != nil {
				return err
			}
			g.AsMutSlice()
			return nil
		},
	}
	pl, err := Compile([]Propagator{writer, reader}, fields)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	guard, err := a.BeginTick()
	if err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	if err := pl.Execute(guard, nil, 1, 0.1); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if observed != 7 {
		t.Errorf("reader observed %v, want 7 (this-tick write via overlay)", observed)
	}
	guard.Abort()
}

// A propagator declaring reads_previous never sees the current tick's
// writes, even though the writer already ran earlier in the same tick.
func TestFrozenIgnoresEarlierPropagatorWriteThisTick(t *testing.T) {
	fields := testRegistry(t)
	a := testArena(t, 2)

	seed, err := a.BeginTick()
	if err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	buf, _ := seed.WriteStage(fieldA, arena.Full)
	buf[0] = 1
	snap, err := seed.Publish()
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	defer snap.Release()

	var observed float32
	writer := &fakePropagator{
		name:   "writer",
		writes: []WriteSpec{{Field: fieldA, Mode: arena.Full}},
		run: func(ctx *StepContext) error {
			g, err := ctx.Write(fieldA)
			if err != nil {
				return err
			}
			g.AsMutSlice()[0] = 42
			return nil
		},
	}
	reader := &fakePropagator{
		name:          "reader",
		readsPrevious: []ids.FieldId{fieldA},
		writes:        []WriteSpec{{Field: fieldB, Mode: arena.Full}},
		run: func(ctx *StepContext) error {
			buf, err := ctx.ReadPrevious(fieldA)
			if err != nil {
				return err
			}
			observed = buf[0]
			g, err := ctx.Write(fieldB)
			if err != nil {
				return err
			}
			g.AsMutSlice()
			return nil
		},
	}
	pl, err := Compile([]Propagator{writer, reader}, fields)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	guard, err := a.BeginTick()
	if err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	if err := pl.Execute(guard, nil, 2, 0.1); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if observed != 1 {
		t.Errorf("frozen reader observed %v, want 1 (previous published, ignoring this-tick write)", observed)
	}
	guard.Abort()
}

func TestWriteRejectsUndeclaredField(t *testing.T) {
	fields := testRegistry(t)
	a := testArena(t, 2)
	p1 := &fakePropagator{
		name: "p1",
		run: func(ctx *StepContext) error {
			_, err := ctx.Write(fieldA)
			return err
		},
	}
	pl, err := Compile([]Propagator{p1}, fields)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	guard, err := a.BeginTick()
	if err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	defer guard.Abort()
	err = pl.Execute(guard, nil, 1, 0.1)
	if err == nil {
		t.Fatal("expected error from undeclared write, got nil")
	}
	if _, ok := err.(*PropagatorError); !ok {
		t.Fatalf("expected *PropagatorError, got %T", err)
	}
}
