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

package ingress

// compareOptionalUint64 orders nil as less than any non-nil value, then
// compares values, matching the composite key's "None < Some" rule.
func compareOptionalUint64(a, b *uint64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// lessCommand is the btree ordering function implementing the composite
// key (priority_class ASC, source_id ASC with None<Some, source_seq ASC
// with None<Some, arrival_seq ASC). ArrivalSeq is unique per accepted
// command, so this is a strict total order with no ties.
func lessCommand(a, b Command) bool {
	if a.PriorityClass != b.PriorityClass {
		return a.PriorityClass < b.PriorityClass
	}
	if c := compareOptionalUint64(a.SourceID, b.SourceID); c != 0 {
		return c < 0
	}
	if c := compareOptionalUint64(a.SourceSeq, b.SourceSeq); c != 0 {
		return c < 0
	}
	return a.ArrivalSeq < b.ArrivalSeq
}
