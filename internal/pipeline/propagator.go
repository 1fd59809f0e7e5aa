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

// Package pipeline implements the propagator pipeline (C4): the ordered
// list of per-tick transformation steps, their compile-time checks
// (field registration, single-writer, dt/scratch caps), and the
// per-propagator StepContext that enforces the overlay/frozen read
// split and restricts writes to a propagator's declared outputs.
package pipeline

import (
	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
)

// WriteSpec is one (FieldId, WriteMode) entry in a propagator's declared
// output set.
type WriteSpec struct {
	Field ids.FieldId
	Mode  arena.WriteMode
}

// Propagator is one pipeline stage. Step must be deterministic and pure
// of any state outside ctx: given the same StepContext contents it must
// produce the same writes every time.
type Propagator interface {
	// Name is a stable identifier used in metrics and guard diagnostics.
	Name() string

	// ReadsCurrent lists FieldIds read through the in-tick overlay view.
	ReadsCurrent() []ids.FieldId

	// ReadsPrevious lists FieldIds read through the frozen tick-start view.
	ReadsPrevious() []ids.FieldId

	// Writes lists the (FieldId, WriteMode) pairs this propagator owns.
	Writes() []WriteSpec

	// MaxDt optionally bounds the timestep this propagator tolerates
	// (CFL-like); ok is false if the propagator imposes no bound.
	MaxDt() (dt float64, ok bool)

	// ScratchBytes optionally bounds this propagator's scratch usage in
	// bytes; ok is false if it uses no scratch.
	ScratchBytes() (bytes int, ok bool)

	Step(ctx *StepContext) error
}
