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

// NamedDuration is one propagator's wall-clock cost within a tick.
type NamedDuration struct {
	Name   string
	Micros uint64
}

// StepMetrics carries the per-tick timing and memory data a successful
// Step call populates (spec section 4.5); a failed Step produces none.
type StepMetrics struct {
	TotalUs              uint64
	CommandProcessingUs  uint64
	PropagatorUs         []NamedDuration
	SnapshotPublishUs    uint64
	MemoryBytes          uint64
	SparseRetiredRanges  uint32
	SparsePendingRetired uint32
}
