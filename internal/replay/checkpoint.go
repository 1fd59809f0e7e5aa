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

package replay

import "io"

// CheckpointStore is the pluggable backend a run's periodic full
// snapshots are dumped to, independent of where the per-tick frame log
// itself is written. Mirrors the teacher's PersistenceEngine /
// PersistenceFactory split: one factory-ish constructor per backend,
// one interface every backend satisfies identically so callers never
// branch on which is in use.
type CheckpointStore interface {
	// WriteCheckpoint stores data (already xz-compressed by the
	// caller via NewCheckpointArchiveWriter) under runID/tick.
	WriteCheckpoint(runID string, tick uint64, data io.Reader) error
	// ReadCheckpoint opens the stored (still-compressed) checkpoint
	// for runID/tick. The caller decompresses with
	// NewCheckpointArchiveReader.
	ReadCheckpoint(runID string, tick uint64) (io.ReadCloser, error)
	// ListCheckpoints returns every tick a checkpoint is stored for,
	// in ascending order.
	ListCheckpoints(runID string) ([]uint64, error)
	// RemoveCheckpoint deletes one checkpoint; removing a checkpoint
	// that does not exist is not an error.
	RemoveCheckpoint(runID string, tick uint64) error
}

// CheckpointFactory creates a CheckpointStore for one run, the way the
// teacher's PersistenceFactory.CreateDatabase mints one PersistenceEngine
// per schema.
type CheckpointFactory interface {
	CreateStore(runID string) CheckpointStore
}
