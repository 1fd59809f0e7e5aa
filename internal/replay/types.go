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

// Package replay implements the persisted replay format: a binary
// header (magic, version, build metadata, init descriptor) followed by
// a frame stream, each frame carrying the commands submitted that tick
// and an FNV-1a hash of the post-tick snapshot. It also provides
// snapshot/config hashing, divergence comparison between a recorded and
// a replayed run, and pluggable checkpoint storage backends.
package replay

// Magic is the four bytes every replay stream starts with.
var Magic = [4]byte{'M', 'U', 'R', 'K'}

// FormatVersion is the current binary format version.
//
// History:
//   - v1: source_id/source_seq encoded as bare uint64 (0 = not set)
//   - v2: source_id/source_seq use presence-flag encoding
//   - v3: expires_after_tick and arrival_seq appended per command
const FormatVersion uint8 = 3

// Limits enforced on decode to bound the damage a crafted or corrupt
// replay file can do to the decoding process.
const (
	MaxStringLen        = 1 << 20 // 1 MiB
	MaxBlobLen          = 1 << 26 // 64 MiB
	MaxCommandsPerFrame = 1_000_000
)

// Payload type tags on the wire. Their numbering differs from
// internal/ingress.PayloadKind's; payloadTag and kindFromTag map
// between the two.
const (
	PayloadMove uint8 = iota
	PayloadSpawn
	PayloadDespawn
	PayloadSetField
	PayloadCustom
	PayloadSetParameter
	PayloadSetParameterBatch
)

// BuildMetadata records the environment a replay was captured under, so
// a later build compiled with a different toolchain or flags that could
// affect floating-point determinism can be flagged before trusting a
// comparison.
type BuildMetadata struct {
	Toolchain    string
	TargetTriple string
	MurkVersion  string
	CompileFlags string
}

// InitDescriptor captures everything needed to reconstruct the world
// configuration a replay was recorded against.
type InitDescriptor struct {
	Seed            uint64
	ConfigHash      uint64
	FieldCount      uint32
	CellCount       uint64
	SpaceDescriptor []byte
}

// SerializedCommand is one command's flat binary representation within
// a Frame.
type SerializedCommand struct {
	PayloadType      uint8
	Payload          []byte
	PriorityClass    uint8
	SourceID         *uint64
	SourceSeq        *uint64
	ExpiresAfterTick uint64
	ArrivalSeq       uint64
}

// Frame is one tick's worth of recorded data: the tick id, the commands
// submitted during it, and a hash of the resulting snapshot.
type Frame struct {
	TickID       uint64
	Commands     []SerializedCommand
	SnapshotHash uint64
}
