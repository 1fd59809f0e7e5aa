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

import "fmt"

// FullWriteGuard wraps a mutable Full-write-mode field buffer and, when
// Debug is true, tracks which cells have been written. If the pipeline
// tears it down with incomplete coverage it logs a one-line diagnostic;
// it never panics or blocks publish. With Debug false it degenerates to
// a direct slice reference with no bookkeeping overhead.
type FullWriteGuard struct {
	data           []float32
	Debug          bool
	written        []bool
	propagatorName string
	fieldID        uint32
}

// NewFullWriteGuard wraps data for propagatorName's write to fieldID.
// propagatorName and fieldID are used only for the drop-time diagnostic.
func NewFullWriteGuard(data []float32, debug bool, propagatorName string, fieldID uint32) *FullWriteGuard {
	g := &FullWriteGuard{data: data, Debug: debug, propagatorName: propagatorName, fieldID: fieldID}
	if debug {
		g.written = make([]bool, len(data))
	}
	return g
}

// WriteAt writes a single cell and marks it covered.
func (g *FullWriteGuard) WriteAt(index int, value float32) {
	g.data[index] = value
	if g.Debug {
		g.written[index] = true
	}
}

// AsMutSlice returns the underlying slice for bulk writes, marking every
// cell as covered on the assumption the caller fills the entire slice.
func (g *FullWriteGuard) AsMutSlice() []float32 {
	if g.Debug {
		for i := range g.written {
			g.written[i] = true
		}
	}
	return g.data
}

// Len returns the number of cells in the buffer.
func (g *FullWriteGuard) Len() int { return len(g.data) }

// IsEmpty reports whether the buffer has zero cells.
func (g *FullWriteGuard) IsEmpty() bool { return len(g.data) == 0 }

// Coverage returns the fraction of cells written; always 1.0 when Debug
// is false or the buffer is empty.
func (g *FullWriteGuard) Coverage() float64 {
	if !g.Debug || len(g.data) == 0 {
		return 1.0
	}
	count := 0
	for _, w := range g.written {
		if w {
			count++
		}
	}
	return float64(count) / float64(len(g.data))
}

// MarkComplete explicitly marks the guard as fully covered, suppressing
// the incomplete-coverage diagnostic on Close.
func (g *FullWriteGuard) MarkComplete() {
	if g.Debug {
		for i := range g.written {
			g.written[i] = true
		}
	}
}

// Close tears down the guard, logging a diagnostic if coverage is
// incomplete. Safe to call unconditionally at the end of a propagator's
// declared Full writes.
func (g *FullWriteGuard) Close() {
	if !g.Debug || len(g.data) == 0 {
		return
	}
	total := len(g.written)
	count := 0
	for _, w := range g.written {
		if w {
			count++
		}
	}
	if count < total {
		fmt.Printf(
			"murk: FullWriteGuard incomplete — propagator '%s', field %d: %d/%d written (%.1f%%)\n",
			g.propagatorName, g.fieldID, count, total, (float64(count)/float64(total))*100.0,
		)
	}
}
