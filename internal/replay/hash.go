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

import (
	"math"

	"github.com/tachyon-beep/murk/internal/ids"
)

// FNV-1a 64-bit offset basis and prime. Not cryptographically secure —
// used only for fast equality checks between recorded and replayed
// runs.
const (
	fnvOffset uint64 = 0xcbf29ce484222325
	fnvPrime  uint64 = 0x00000100000001B3
)

func fnv1aByte(hash uint64, b byte) uint64 {
	return (hash ^ uint64(b)) * fnvPrime
}

func fnv1aUint32(hash uint64, v uint32) uint64 {
	var buf [4]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	for _, b := range buf {
		hash = fnv1aByte(hash, b)
	}
	return hash
}

func fnv1aUint64(hash uint64, v uint64) uint64 {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	for _, b := range buf {
		hash = fnv1aByte(hash, b)
	}
	return hash
}

// SnapshotAccess is the minimal read surface snapshot_hash needs;
// *arena.Snapshot satisfies it without this package importing arena.
type SnapshotAccess interface {
	ReadField(field ids.FieldId) ([]float32, error)
}

// SnapshotHash hashes every field 0..fieldCount in order, folding the
// field index in at each boundary so field order matters and a field
// with no data still contributes to the hash. A missing or unreadable
// field contributes only its index. Returns fnvOffset (non-zero) when
// fieldCount is 0.
func SnapshotHash(snap SnapshotAccess, fieldCount uint32) uint64 {
	hash := fnvOffset
	for i := uint32(0); i < fieldCount; i++ {
		hash = fnv1aUint32(hash, i)
		data, err := snap.ReadField(ids.FieldId(i))
		if err != nil {
			continue
		}
		for _, v := range data {
			hash = fnv1aUint32(hash, math.Float32bits(v))
		}
	}
	return hash
}

// ConfigHash hashes the scalars that determine a deterministic world's
// behavior: seed, dt (as bits, so it hashes exactly what the float
// represents), field count, cell count, and the opaque space
// descriptor.
func ConfigHash(seed uint64, dtBits uint64, fieldCount uint32, cellCount uint64, spaceDescriptor []byte) uint64 {
	hash := fnvOffset
	hash = fnv1aUint64(hash, seed)
	hash = fnv1aUint64(hash, dtBits)
	hash = fnv1aUint32(hash, fieldCount)
	hash = fnv1aUint64(hash, cellCount)
	for _, b := range spaceDescriptor {
		hash = fnv1aByte(hash, b)
	}
	return hash
}
