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

// WriteMode selects how a field's staging slot is initialized for a tick.
type WriteMode uint8

const (
	// Full requires the writer to cover every cell before publish; the
	// staging slot starts freshly allocated and zeroed.
	Full WriteMode = iota
	// Incremental seeds the staging slot from the previous published
	// buffer via a bulk copy (or COW sharing, for Sparse fields); the
	// writer mutates only the cells it updates.
	Incremental
)

// fieldEntry is one FieldDescriptorTable row: the field's current and
// previous handles, plus (for Sparse fields) the shared COW allocation.
type fieldEntry struct {
	Current     FieldHandle
	Previous    FieldHandle
	sparseAlloc *sparseAlloc // nil for non-Sparse fields
	writtenThis bool         // overlay bitmap bit for this tick
}

// descriptorTable maps FieldId -> fieldEntry for one generation. The
// "published" table's pointer is swapped atomically at publish.
type descriptorTable struct {
	generation       uint64
	entries          []fieldEntry
	snapshotRefcount int32
}
