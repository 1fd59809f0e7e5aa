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

package arena

import "github.com/tachyon-beep/murk/internal/ids"

// FieldReader is the split-borrow read view a propagator is handed for
// one declared input field: either an OverlayReader (reads_current,
// Euler-style — sees writes already made this tick) or a FrozenReader
// (reads_previous, Jacobi-style — always the generation this tick
// started from).
type FieldReader interface {
	Read(field ids.FieldId) ([]float32, error)
}

// OverlayReader implements reads_current: it returns whatever has been
// staged for field so far this tick if a writer has touched it, and
// falls back to the previous published buffer otherwise. Because
// propagators run in a fixed declared order within a tick, this lets a
// later propagator observe an earlier one's writes within the same
// tick (Gauss-Seidel/Euler semantics).
type OverlayReader struct {
	guard *TickGuard
}

// NewOverlayReader wraps guard for reads_current access.
func NewOverlayReader(guard *TickGuard) *OverlayReader { return &OverlayReader{guard: guard} }

func (r *OverlayReader) Read(field ids.FieldId) ([]float32, error) {
	if r.guard.WrittenThisTick(field) {
		return r.guard.ReadStaged(field)
	}
	return r.guard.ReadPublished(field)
}

// FrozenReader implements reads_previous: it always returns the
// generation the tick started from, never anything written this tick
// (Jacobi semantics), so a propagator declaring a frozen read is immune
// to pipeline ordering.
type FrozenReader struct {
	guard *TickGuard
}

// NewFrozenReader wraps guard for reads_previous access.
func NewFrozenReader(guard *TickGuard) *FrozenReader { return &FrozenReader{guard: guard} }

func (r *FrozenReader) Read(field ids.FieldId) ([]float32, error) {
	return r.guard.ReadPublished(field)
}

// SnapshotReader implements FieldReader over a published Snapshot, for
// consumers outside the tick loop (observation extraction, replay
// comparison) that never see in-flight writes.
type SnapshotReader struct {
	snap *Snapshot
}

// NewSnapshotReader wraps snap for read-only access.
func NewSnapshotReader(snap *Snapshot) *SnapshotReader { return &SnapshotReader{snap: snap} }

func (r *SnapshotReader) Read(field ids.FieldId) ([]float32, error) {
	return r.snap.ReadField(field)
}
