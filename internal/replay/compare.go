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

import "github.com/tachyon-beep/murk/internal/ids"

// DivergenceKind classifies how a replayed run disagreed with its
// recording.
type DivergenceKind uint8

const (
	// DivergenceConfig means the recorded and current config hashes differ.
	DivergenceConfig DivergenceKind = iota
	// DivergenceSnapshot means a tick's recorded and replayed snapshot
	// hashes differ.
	DivergenceSnapshot
	// DivergenceFieldCount means a field's buffer length differs between
	// the two runs (including a field readable in only one of them), so
	// a per-cell comparison of it could not be attempted.
	DivergenceFieldCount
)

func (k DivergenceKind) String() string {
	switch k {
	case DivergenceConfig:
		return "Config"
	case DivergenceSnapshot:
		return "Snapshot"
	case DivergenceFieldCount:
		return "FieldCount"
	default:
		return "DivergenceKind(?)"
	}
}

// FieldDivergence reports one field whose per-cell values disagreed
// between a recorded and a replayed snapshot, when per-field detail is
// available (CompareSnapshotFields) rather than just a whole-snapshot
// hash comparison.
type FieldDivergence struct {
	Field     uint32
	CellIndex int
	Recorded  float32
	Replayed  float32
}

// DivergenceReport is what CompareSnapshot / replay comparison returns
// when a recorded and a replayed run disagree.
type DivergenceReport struct {
	Kind     DivergenceKind
	TickID   uint64
	Recorded uint64
	Replayed uint64
	Fields   []FieldDivergence
}

// CompareSnapshot compares a replayed snapshot's hash against the
// recorded frame's hash, over fieldCount fields. It returns nil when
// they agree, or a DivergenceSnapshot report naming the first tick
// where they diverged.
func CompareSnapshot(recorded *Frame, replayed SnapshotAccess, fieldCount uint32) *DivergenceReport {
	replayedHash := SnapshotHash(replayed, fieldCount)
	if replayedHash == recorded.SnapshotHash {
		return nil
	}
	return &DivergenceReport{
		Kind:     DivergenceSnapshot,
		TickID:   recorded.TickID,
		Recorded: recorded.SnapshotHash,
		Replayed: replayedHash,
	}
}

// CompareSnapshotFields does a full per-field, per-cell comparison
// between two snapshots, for diagnosing a hash mismatch CompareSnapshot
// already detected. It stops at the first field whose length disagrees
// (reported as DivergenceFieldCount) and otherwise collects every
// differing cell across every field.
func CompareSnapshotFields(tickID uint64, recorded, replayed SnapshotAccess, fieldCount uint32) *DivergenceReport {
	var diffs []FieldDivergence
	for i := uint32(0); i < fieldCount; i++ {
		rBuf, _ := fieldOrEmpty(recorded, i)
		pBuf, _ := fieldOrEmpty(replayed, i)
		if len(rBuf) != len(pBuf) {
			return &DivergenceReport{Kind: DivergenceFieldCount, TickID: tickID, Fields: []FieldDivergence{{Field: i}}}
		}
		for j := range rBuf {
			if rBuf[j] != pBuf[j] {
				diffs = append(diffs, FieldDivergence{Field: i, CellIndex: j, Recorded: rBuf[j], Replayed: pBuf[j]})
			}
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &DivergenceReport{Kind: DivergenceSnapshot, TickID: tickID, Fields: diffs}
}

func fieldOrEmpty(snap SnapshotAccess, field uint32) ([]float32, error) {
	return snap.ReadField(ids.FieldId(field))
}
