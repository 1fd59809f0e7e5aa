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

import "fmt"

// InvalidMagicError is returned when a stream does not start with Magic.
type InvalidMagicError struct{}

func (e *InvalidMagicError) Error() string {
	return `replay: invalid magic bytes (expected "MURK")`
}

// UnsupportedVersionError is returned when a stream's version byte is
// not this build's FormatVersion.
type UnsupportedVersionError struct {
	Found uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("replay: unsupported format version %d (this build reads only version %d)", e.Found, FormatVersion)
}

// MalformedFrameError is returned when a frame is truncated or
// otherwise internally inconsistent.
type MalformedFrameError struct {
	Detail string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("replay: malformed frame: %s", e.Detail)
}

// UnknownPayloadTypeError is returned when a command's payload type tag
// is not one this build recognizes.
type UnknownPayloadTypeError struct {
	Tag uint8
}

func (e *UnknownPayloadTypeError) Error() string {
	return fmt.Sprintf("replay: unknown payload type tag %d", e.Tag)
}

// ConfigMismatchError is returned when a replay's recorded config hash
// does not match the hash of the configuration it is being replayed
// against.
type ConfigMismatchError struct {
	Recorded uint64
	Current  uint64
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("replay: config hash mismatch: recorded=%#016x, current=%#016x", e.Recorded, e.Current)
}

// SnapshotMismatchError is returned by CompareSnapshot / replay
// comparison when a recorded and a replayed snapshot hash disagree.
type SnapshotMismatchError struct {
	TickID   uint64
	Recorded uint64
	Replayed uint64
}

func (e *SnapshotMismatchError) Error() string {
	return fmt.Sprintf("replay: snapshot mismatch at tick %d: recorded=%#016x, replayed=%#016x", e.TickID, e.Recorded, e.Replayed)
}
