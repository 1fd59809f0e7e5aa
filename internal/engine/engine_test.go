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

package engine

import (
	"errors"
	"testing"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/config"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
	"github.com/tachyon-beep/murk/internal/pipeline"
	"github.com/tachyon-beep/murk/internal/space"
)

const (
	temperature ids.FieldId = 0
	occupant    ids.FieldId = 1
)

func testSpace(t *testing.T) space.Space {
	t.Helper()
	sp, err := space.NewLine1D(4, space.EdgeClamp)
	if err != nil {
		t.Fatalf("NewLine1D: %v", err)
	}
	return sp
}

func baseConfig(t *testing.T, propagators []pipeline.Propagator) config.WorldConfig {
	t.Helper()
	return config.WorldConfig{
		Space: testSpace(t),
		Fields: []ids.FieldDescriptor{
			{Name: "temperature", Shape: ids.ShapeClass{Kind: ids.ShapeScalar}, Mutability: ids.PerTick},
			{Name: "occupant", Shape: ids.ShapeClass{Kind: ids.ShapeScalar}, Mutability: ids.Sparse},
		},
		Propagators:     propagators,
		Dt:              0.1,
		RingBufferSize:  1,
		MaxIngressQueue: 16,
		Arena:           arena.NewConfig(4),
	}
}

// incrementPropagator bumps every cell of temperature by 1 each tick,
// exercising a Full write over ReadPrevious.
type incrementPropagator struct{}

func (incrementPropagator) Name() string                { return "increment" }
func (incrementPropagator) ReadsCurrent() []ids.FieldId  { return nil }
func (incrementPropagator) ReadsPrevious() []ids.FieldId { return []ids.FieldId{temperature} }
func (incrementPropagator) Writes() []pipeline.WriteSpec {
	return []pipeline.WriteSpec{{Field: temperature, Mode: arena.Full}}
}
func (incrementPropagator) MaxDt() (float64, bool)    { return 0, false }
func (incrementPropagator) ScratchBytes() (int, bool) { return 0, false }
func (incrementPropagator) Step(ctx *pipeline.StepContext) error {
	prev, err := ctx.ReadPrevious(temperature)
	if err != nil {
		return err
	}
	g, err := ctx.Write(temperature)
	if err != nil {
		return err
	}
	out := g.AsMutSlice()
	for i := range out {
		out[i] = prev[i] + 1
	}
	return nil
}

type failingPropagator struct{}

func (failingPropagator) Name() string                  { return "failing" }
func (failingPropagator) ReadsCurrent() []ids.FieldId   { return nil }
func (failingPropagator) ReadsPrevious() []ids.FieldId  { return nil }
func (failingPropagator) Writes() []pipeline.WriteSpec  { return nil }
func (failingPropagator) MaxDt() (float64, bool)        { return 0, false }
func (failingPropagator) ScratchBytes() (int, bool)     { return 0, false }
func (failingPropagator) Step(ctx *pipeline.StepContext) error {
	return errors.New("boom")
}

func newTestEngine(t *testing.T, props []pipeline.Propagator, handlers Handlers, threshold uint32) *Engine {
	t.Helper()
	e, err := New(baseConfig(t, props), nil, handlers, threshold)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestStepPublishesAndAdvancesTick(t *testing.T) {
	e := newTestEngine(t, []pipeline.Propagator{incrementPropagator{}}, Handlers{}, 3)
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	if e.TickID() != 1 {
		t.Errorf("TickID = %d, want 1", e.TickID())
	}
	buf, err := result.Snapshot.ReadField(temperature)
	if err != nil {
		t.Fatalf("ReadField: %v", err)
	}
	for i, v := range buf {
		if v != 1 {
			t.Errorf("buf[%d] = %v, want 1", i, v)
		}
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want Idle", e.State())
	}
}

func TestStepTwiceAccumulates(t *testing.T) {
	e := newTestEngine(t, []pipeline.Propagator{incrementPropagator{}}, Handlers{}, 3)
	r1, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	r1.Snapshot.Release()
	r2, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	defer r2.Snapshot.Release()
	buf, _ := r2.Snapshot.ReadField(temperature)
	if buf[0] != 2 {
		t.Errorf("buf[0] = %v, want 2 after two ticks", buf[0])
	}
}

func TestDisabledAfterConsecutiveFailures(t *testing.T) {
	e := newTestEngine(t, []pipeline.Propagator{failingPropagator{}}, Handlers{}, 2)
	for i := 0; i < 2; i++ {
		if _, err := e.Step(nil); err == nil {
			t.Fatalf("Step %d: expected propagator failure error", i)
		}
		if e.State() == Disabled {
			t.Fatalf("Step %d: went Disabled too early", i)
		}
	}
	if _, err := e.Step(nil); err == nil {
		t.Fatal("expected third failure to trip Disabled")
	}
	if e.State() != Disabled {
		t.Fatalf("state = %v, want Disabled", e.State())
	}
	if _, err := e.Step(nil); err == nil {
		t.Fatal("expected DisabledError on Step while Disabled")
	} else if _, ok := err.(*DisabledError); !ok {
		t.Fatalf("expected *DisabledError, got %T", err)
	}
}

func TestResetRecoversFromDisabled(t *testing.T) {
	e := newTestEngine(t, []pipeline.Propagator{failingPropagator{}}, Handlers{}, 1)
	e.Step(nil)
	e.Step(nil)
	if e.State() != Disabled {
		t.Fatalf("precondition: expected Disabled, got %v", e.State())
	}
	if err := e.Reset(42); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("state after Reset = %v, want Idle", e.State())
	}
	if e.TickID() != 0 {
		t.Errorf("TickID after Reset = %d, want 0", e.TickID())
	}
}

func TestUnregisteredHandlerFailsTick(t *testing.T) {
	e := newTestEngine(t, nil, Handlers{}, 3)
	cmds := []ingress.Command{{
		ExpiresAfterTick: 100,
		Payload:          ingress.CommandPayload{Kind: ingress.Spawn},
	}}
	e.Queue().Submit(cmds)
	if _, err := e.Step(nil); err == nil {
		t.Fatal("expected PolicyError for unregistered Spawn handler")
	} else if !errors.As(err, new(*PolicyError)) {
		t.Fatalf("expected *PolicyError, got %T: %v", err, err)
	}
	if e.TickID() != 0 {
		t.Errorf("TickID = %d, want 0 (rolled back)", e.TickID())
	}
}

func TestRegisteredHandlerDispatches(t *testing.T) {
	called := false
	handlers := Handlers{
		Spawn: func(ctx HandlerContext, cmd ingress.Command) error {
			called = true
			return nil
		},
	}
	e := newTestEngine(t, nil, handlers, 3)
	e.Queue().Submit([]ingress.Command{{
		ExpiresAfterTick: 100,
		Payload:          ingress.CommandPayload{Kind: ingress.Spawn},
	}})
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	if !called {
		t.Error("registered Spawn handler was not invoked")
	}
}

func TestSetParameterUpdatesAndBumpsVersion(t *testing.T) {
	e := newTestEngine(t, nil, Handlers{}, 3)
	e.Queue().Submit([]ingress.Command{{
		ExpiresAfterTick: 100,
		Payload:          ingress.CommandPayload{Kind: ingress.SetParameter, ParameterKey: 7, ParameterValue: 3.5},
	}})
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	v, ok := e.Parameter(7)
	if !ok || v != 3.5 {
		t.Errorf("Parameter(7) = %v, %v; want 3.5, true", v, ok)
	}
	if e.ParameterVersion() != 1 {
		t.Errorf("ParameterVersion = %d, want 1", e.ParameterVersion())
	}
}

func TestTwoParameterCommandsInOneBatchBumpVersionOnce(t *testing.T) {
	e := newTestEngine(t, nil, Handlers{}, 3)
	e.Queue().Submit([]ingress.Command{
		{ExpiresAfterTick: 100, Payload: ingress.CommandPayload{Kind: ingress.SetParameter, ParameterKey: 7, ParameterValue: 3.5}},
		{ExpiresAfterTick: 100, Payload: ingress.CommandPayload{Kind: ingress.SetParameter, ParameterKey: 8, ParameterValue: 1.0}},
	})
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	if v, ok := e.Parameter(7); !ok || v != 3.5 {
		t.Errorf("Parameter(7) = %v, %v; want 3.5, true", v, ok)
	}
	if v, ok := e.Parameter(8); !ok || v != 1.0 {
		t.Errorf("Parameter(8) = %v, %v; want 1.0, true", v, ok)
	}
	if e.ParameterVersion() != 1 {
		t.Errorf("ParameterVersion = %d, want 1 (one bump per batch, not per command)", e.ParameterVersion())
	}
}

func TestSetFieldWritesSparseCell(t *testing.T) {
	e := newTestEngine(t, nil, Handlers{}, 3)
	e.Queue().Submit([]ingress.Command{{
		ExpiresAfterTick: 100,
		Payload:          ingress.CommandPayload{Kind: ingress.SetField, Field: occupant, Coord: ids.Coord{2}, Value: 9},
	}})
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	buf, err := result.Snapshot.ReadField(occupant)
	if err != nil {
		t.Fatalf("ReadField: %v", err)
	}
	if buf[2] != 9 {
		t.Errorf("occupant[2] = %v, want 9", buf[2])
	}
}

func TestMetricsPopulatedAfterStep(t *testing.T) {
	e := newTestEngine(t, []pipeline.Propagator{incrementPropagator{}}, Handlers{}, 3)
	result, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	defer result.Snapshot.Release()
	if len(result.Metrics.PropagatorUs) != 1 || result.Metrics.PropagatorUs[0].Name != "increment" {
		t.Errorf("PropagatorUs = %+v, want one entry named increment", result.Metrics.PropagatorUs)
	}
	if result.Metrics.MemoryBytes == 0 {
		t.Error("MemoryBytes = 0, want > 0")
	}
}

// dtCappedPropagator declares a max_dt below baseConfig's configured
// dt, so New must reject construction rather than leaving an
// un-constructible world to fail its first Step.
type dtCappedPropagator struct{}

func (dtCappedPropagator) Name() string                  { return "dt-capped" }
func (dtCappedPropagator) ReadsCurrent() []ids.FieldId    { return nil }
func (dtCappedPropagator) ReadsPrevious() []ids.FieldId   { return nil }
func (dtCappedPropagator) Writes() []pipeline.WriteSpec   { return nil }
func (dtCappedPropagator) MaxDt() (float64, bool)         { return 0.05, true }
func (dtCappedPropagator) ScratchBytes() (int, bool)      { return 0, false }
func (dtCappedPropagator) Step(ctx *pipeline.StepContext) error { return nil }

func TestNewRejectsDtExceedingCompiledDtCap(t *testing.T) {
	_, err := New(baseConfig(t, []pipeline.Propagator{dtCappedPropagator{}}), nil, Handlers{}, 3)
	if err == nil {
		t.Fatal("New: want error, got nil")
	}
	var dtErr *DtOutOfRangeError
	if !errors.As(err, &dtErr) {
		t.Fatalf("New: err = %v, want *DtOutOfRangeError", err)
	}
	if dtErr.DtCap != 0.05 {
		t.Errorf("DtOutOfRangeError.DtCap = %v, want 0.05", dtErr.DtCap)
	}
}
