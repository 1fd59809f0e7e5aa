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
	"io"

	"github.com/tachyon-beep/murk/internal/ingress"
)

// Writer streams replay frames to an io.Writer, writing the header
// immediately on construction. Generic over any io.Writer so callers
// can record straight to a *bufio.Writer over an *os.File, or to a
// bytes.Buffer in tests.
type Writer struct {
	w             io.Writer
	fieldCount    uint32
	framesWritten uint64
}

// NewWriter creates a Writer, writing metadata and init as the
// stream's header before returning.
func NewWriter(w io.Writer, metadata *BuildMetadata, init *InitDescriptor) (*Writer, error) {
	if err := encodeHeader(w, metadata, init); err != nil {
		return nil, err
	}
	return &Writer{w: w, fieldCount: init.FieldCount}, nil
}

// WriteFrame serializes commands, hashes snapshot over fieldCount
// fields, and appends the resulting frame to the stream.
func (rw *Writer) WriteFrame(tickID uint64, commands []ingress.Command, snapshot SnapshotAccess) error {
	serialized := make([]SerializedCommand, len(commands))
	for i, cmd := range commands {
		sc, err := SerializeCommand(cmd)
		if err != nil {
			return err
		}
		serialized[i] = sc
	}
	frame := &Frame{
		TickID:       tickID,
		Commands:     serialized,
		SnapshotHash: SnapshotHash(snapshot, rw.fieldCount),
	}
	return rw.WriteRawFrame(frame)
}

// WriteRawFrame appends a pre-built frame directly, useful for tests
// and for re-encoding frames read back from another stream.
func (rw *Writer) WriteRawFrame(frame *Frame) error {
	if err := encodeFrame(rw.w, frame); err != nil {
		return err
	}
	rw.framesWritten++
	return nil
}

// FramesWritten reports how many frames have been appended so far.
func (rw *Writer) FramesWritten() uint64 { return rw.framesWritten }

// Flush flushes the underlying writer if it implements an
// interface{ Flush() error }, and is a no-op otherwise.
func (rw *Writer) Flush() error {
	if f, ok := rw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
