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

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/space"
)

// stagingWriter hands out FullWriteGuards restricted to one propagator's
// declared output fields. A guard is created (and, in debug builds,
// tracked) on first access to a field and reused for the rest of the
// tick so repeated Write calls accumulate coverage correctly.
type stagingWriter struct {
	guard          *arena.TickGuard
	declared       map[ids.FieldId]arena.WriteMode
	propagatorName string
	debug          bool
	guards         map[ids.FieldId]*arena.FullWriteGuard
}

func newStagingWriter(guard *arena.TickGuard, writes []WriteSpec, propagatorName string, debug bool) *stagingWriter {
	declared := make(map[ids.FieldId]arena.WriteMode, len(writes))
	for _, w := range writes {
		declared[w.Field] = w.Mode
	}
	return &stagingWriter{
		guard:          guard,
		declared:       declared,
		propagatorName: propagatorName,
		debug:          debug,
		guards:         make(map[ids.FieldId]*arena.FullWriteGuard),
	}
}

// Write returns the write guard for field, restricted to this
// propagator's declared outputs. Full-mode writes are coverage-tracked
// when debug is set; Incremental writes never are, since partial
// coverage is the expected, correct behavior for them.
func (w *stagingWriter) Write(field ids.FieldId) (*arena.FullWriteGuard, error) {
	mode, ok := w.declared[field]
	if !ok {
		return nil, fmt.Errorf("pipeline: propagator %q did not declare a write to field %d", w.propagatorName, field)
	}
	if fg, exists := w.guards[field]; exists {
		return fg, nil
	}
	buf, err := w.guard.WriteStage(field, mode)
	if err != nil {
		return nil, err
	}
	effectiveDebug := w.debug && mode == arena.Full
	fg := arena.NewFullWriteGuard(buf, effectiveDebug, w.propagatorName, uint32(field))
	w.guards[field] = fg
	return fg, nil
}

func (w *stagingWriter) closeAll() {
	for _, fg := range w.guards {
		fg.Close()
	}
}

// StepContext is handed to exactly one propagator's Step call. It
// carries the overlay (reads_current) and frozen (reads_previous) read
// views, a writer restricted to this propagator's declared outputs, the
// tick-scoped scratch arena (already reset), the active Space, the
// current TickId, and the admitted timestep.
type StepContext struct {
	overlay *arena.OverlayReader
	frozen  *arena.FrozenReader
	writer  *stagingWriter
	scratch *arena.ScratchRegion
	sp      space.Space
	tick    ids.TickId
	dt      float64
}

// ReadCurrent reads field through the in-tick overlay view: the most
// recently staged value if an earlier propagator wrote it this tick,
// otherwise the previous published generation.
func (c *StepContext) ReadCurrent(field ids.FieldId) ([]float32, error) {
	return c.overlay.Read(field)
}

// ReadPrevious reads field through the frozen tick-start view: always
// the previous published generation, regardless of in-tick writes.
func (c *StepContext) ReadPrevious(field ids.FieldId) ([]float32, error) {
	return c.frozen.Read(field)
}

// Write returns the coverage-tracked write guard for field. field must
// be one of this propagator's declared outputs.
func (c *StepContext) Write(field ids.FieldId) (*arena.FullWriteGuard, error) {
	return c.writer.Write(field)
}

// Scratch returns this tick's scratch arena, already reset for this
// propagator's exclusive use.
func (c *StepContext) Scratch() *arena.ScratchRegion { return c.scratch }

// Space returns the active spatial topology.
func (c *StepContext) Space() space.Space { return c.sp }

// Tick returns the current TickId.
func (c *StepContext) Tick() ids.TickId { return c.tick }

// Dt returns the timestep admitted for this tick.
func (c *StepContext) Dt() float64 { return c.dt }
