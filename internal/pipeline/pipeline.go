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
	"fmt"
	"math"
	"time"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/space"
)

// CompileError reports why Compile rejected a propagator list.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string { return e.Reason }

// PropagatorError wraps a Step failure with the offending propagator's
// name, for the engine to report and count toward its failure threshold.
type PropagatorError struct {
	Propagator string
	Err        error
}

func (e *PropagatorError) Error() string {
	return fmt.Sprintf("pipeline: propagator %q failed: %v", e.Propagator, e.Err)
}

func (e *PropagatorError) Unwrap() error { return e.Err }

// Pipeline is a compiled, ordered propagator list ready for per-tick
// execution.
type Pipeline struct {
	propagators []Propagator
	dtCap       float64
	scratchCap  int
	scratch     *arena.ScratchRegion
	Debug       bool
}

// Compile validates propagators against fields: every declared field
// must be registered, and no two propagators may declare the same
// write field (the single-writer rule). Acyclicity of the
// reads_current -> writes edges follows trivially from pipeline order
// plus the single-writer rule, so no separate graph check is needed —
// a propagator reading a field through the overlay view only ever sees
// an earlier propagator's write, never a later one's. It then computes
// dt_cap (the minimum of every declared max_dt) and scratch_cap (the
// maximum of every declared scratch_bytes).
func Compile(propagators []Propagator, fields *ids.Registry) (*Pipeline, error) {
	writerOf := make(map[ids.FieldId]string)
	dtCap := math.Inf(1)
	scratchCap := 0

	checkField := func(f ids.FieldId, propagatorName, role string) error {
		if _, ok := fields.Descriptor(f); !ok {
			return &CompileError{Reason: fmt.Sprintf("propagator %q declares %s on unregistered field %d", propagatorName, role, f)}
		}
		return nil
	}

	for _, p := range propagators {
		name := p.Name()
		for _, f := range p.ReadsCurrent() {
			if err := checkField(f, name, "reads_current"); err != nil {
				return nil, err
			}
		}
		for _, f := range p.ReadsPrevious() {
			if err := checkField(f, name, "reads_previous"); err != nil {
				return nil, err
			}
		}
		for _, w := range p.Writes() {
			if err := checkField(w.Field, name, "writes"); err != nil {
				return nil, err
			}
			if owner, taken := writerOf[w.Field]; taken {
				return nil, &CompileError{Reason: fmt.Sprintf("field %d has two writers: %q and %q", w.Field, owner, name)}
			}
			writerOf[w.Field] = name
		}
		if dt, ok := p.MaxDt(); ok && dt < dtCap {
			dtCap = dt
		}
		if bytes, ok := p.ScratchBytes(); ok && bytes > scratchCap {
			scratchCap = bytes
		}
	}

	return &Pipeline{
		propagators: propagators,
		dtCap:       dtCap,
		scratchCap:  scratchCap,
		scratch:     arena.NewScratchRegion(scratchCap / 4),
	}, nil
}

// DtCap returns the compiled minimum admissible timestep across every
// propagator that declared one (+Inf if none did).
func (p *Pipeline) DtCap() float64 { return p.dtCap }

// ScratchCap returns the compiled maximum declared scratch usage in bytes.
func (p *Pipeline) ScratchCap() int { return p.scratchCap }

// Execute runs every propagator in pipeline order against guard. dt
// exceeding DtCap is rejected before any propagator runs. A Step
// failure aborts immediately and is returned wrapped in a
// PropagatorError; the caller (the engine) is responsible for releasing
// the staging generation without publishing.
func (p *Pipeline) Execute(guard *arena.TickGuard, sp space.Space, tick ids.TickId, dt float64) error {
	_, err := p.run(guard, sp, tick, dt, false)
	return err
}

// PropagatorTiming is one propagator's wall-clock cost within a tick,
// reported in microseconds (spec section 4.5's per-propagator metric).
type PropagatorTiming struct {
	Name   string
	Micros uint64
}

// ExecuteTimed behaves exactly like Execute but additionally reports
// each propagator's wall-clock duration, timed the way scm/trace.go
// timestamps its trace events: time.Since against a start mark,
// narrowed to microseconds.
func (p *Pipeline) ExecuteTimed(guard *arena.TickGuard, sp space.Space, tick ids.TickId, dt float64) ([]PropagatorTiming, error) {
	return p.run(guard, sp, tick, dt, true)
}

func (p *Pipeline) run(guard *arena.TickGuard, sp space.Space, tick ids.TickId, dt float64, timed bool) ([]PropagatorTiming, error) {
	if dt > p.dtCap {
		return nil, &CompileError{Reason: fmt.Sprintf("dt %v exceeds compiled dt_cap %v", dt, p.dtCap)}
	}
	overlay := arena.NewOverlayReader(guard)
	frozen := arena.NewFrozenReader(guard)

	var timings []PropagatorTiming
	if timed {
		timings = make([]PropagatorTiming, 0, len(p.propagators))
	}

	for _, prop := range p.propagators {
		p.scratch.Reset()
		writer := newStagingWriter(guard, prop.Writes(), prop.Name(), p.Debug)
		ctx := &StepContext{
			overlay: overlay,
			frozen:  frozen,
			writer:  writer,
			scratch: p.scratch,
			sp:      sp,
			tick:    tick,
			dt:      dt,
		}
		start := time.Now()
		err := prop.Step(ctx)
		if timed {
			timings = append(timings, PropagatorTiming{Name: prop.Name(), Micros: uint64(time.Since(start).Microseconds())})
		}
		writer.closeAll()
		if err != nil {
			return timings, &PropagatorError{Propagator: prop.Name(), Err: err}
		}
	}
	return timings, nil
}
