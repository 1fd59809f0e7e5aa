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
	"encoding/binary"
	"fmt"
	"io"
)

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func writeString(w io.Writer, s string) error {
	return writeBytes(w, []byte(s))
}

func readUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readBytes(r io.Reader, maxLen int) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int(n) > maxLen {
		return nil, &MalformedFrameError{Detail: fmt.Sprintf("declared length %d exceeds limit %d", n, maxLen)}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readString(r io.Reader, maxLen int) (string, error) {
	b, err := readBytes(r, maxLen)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeHeader writes MAGIC, FormatVersion, metadata and init in order.
func encodeHeader(w io.Writer, metadata *BuildMetadata, init *InitDescriptor) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if err := writeUint8(w, FormatVersion); err != nil {
		return err
	}
	for _, s := range []string{metadata.Toolchain, metadata.TargetTriple, metadata.MurkVersion, metadata.CompileFlags} {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	if err := writeUint64(w, init.Seed); err != nil {
		return err
	}
	if err := writeUint64(w, init.ConfigHash); err != nil {
		return err
	}
	if err := writeUint32(w, init.FieldCount); err != nil {
		return err
	}
	if err := writeUint64(w, init.CellCount); err != nil {
		return err
	}
	return writeBytes(w, init.SpaceDescriptor)
}

// decodeHeader reads and validates the magic/version, then decodes
// metadata and init. UnsupportedVersionError is returned for any
// version other than FormatVersion: v1 and v2 streams encode commands
// differently (see FormatVersion's history) and this decoder reads
// only the v3 layout.
func decodeHeader(r io.Reader) (*BuildMetadata, *InitDescriptor, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, nil, err
	}
	if magic != Magic {
		return nil, nil, &InvalidMagicError{}
	}
	version, err := readUint8(r)
	if err != nil {
		return nil, nil, err
	}
	if version != FormatVersion {
		return nil, nil, &UnsupportedVersionError{Found: version}
	}

	strs := make([]string, 4)
	for i := range strs {
		s, err := readString(r, MaxStringLen)
		if err != nil {
			return nil, nil, err
		}
		strs[i] = s
	}
	metadata := &BuildMetadata{Toolchain: strs[0], TargetTriple: strs[1], MurkVersion: strs[2], CompileFlags: strs[3]}

	seed, err := readUint64(r)
	if err != nil {
		return nil, nil, err
	}
	configHash, err := readUint64(r)
	if err != nil {
		return nil, nil, err
	}
	fieldCount, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	cellCount, err := readUint64(r)
	if err != nil {
		return nil, nil, err
	}
	spaceDescriptor, err := readBytes(r, MaxBlobLen)
	if err != nil {
		return nil, nil, err
	}
	init := &InitDescriptor{Seed: seed, ConfigHash: configHash, FieldCount: fieldCount, CellCount: cellCount, SpaceDescriptor: spaceDescriptor}
	return metadata, init, nil
}

func encodeCommand(w io.Writer, c SerializedCommand) error {
	if err := writeUint8(w, c.PayloadType); err != nil {
		return err
	}
	if err := writeBytes(w, c.Payload); err != nil {
		return err
	}
	if err := writeUint8(w, c.PriorityClass); err != nil {
		return err
	}
	if err := writeOptionalUint64(w, c.SourceID); err != nil {
		return err
	}
	if err := writeOptionalUint64(w, c.SourceSeq); err != nil {
		return err
	}
	if err := writeUint64(w, c.ExpiresAfterTick); err != nil {
		return err
	}
	return writeUint64(w, c.ArrivalSeq)
}

func writeOptionalUint64(w io.Writer, v *uint64) error {
	if v == nil {
		return writeUint8(w, 0)
	}
	if err := writeUint8(w, 1); err != nil {
		return err
	}
	return writeUint64(w, *v)
}

func readOptionalUint64(r io.Reader) (*uint64, error) {
	flag, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	v, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeCommand(r io.Reader) (SerializedCommand, error) {
	var c SerializedCommand
	payloadType, err := readUint8(r)
	if err != nil {
		return c, err
	}
	payload, err := readBytes(r, MaxBlobLen)
	if err != nil {
		return c, err
	}
	priority, err := readUint8(r)
	if err != nil {
		return c, err
	}
	sourceID, err := readOptionalUint64(r)
	if err != nil {
		return c, err
	}
	sourceSeq, err := readOptionalUint64(r)
	if err != nil {
		return c, err
	}
	expires, err := readUint64(r)
	if err != nil {
		return c, err
	}
	arrivalSeq, err := readUint64(r)
	if err != nil {
		return c, err
	}
	c = SerializedCommand{
		PayloadType:      payloadType,
		Payload:          payload,
		PriorityClass:    priority,
		SourceID:         sourceID,
		SourceSeq:        sourceSeq,
		ExpiresAfterTick: expires,
		ArrivalSeq:       arrivalSeq,
	}
	return c, nil
}

func encodeFrame(w io.Writer, f *Frame) error {
	if err := writeUint64(w, f.TickID); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(f.Commands))); err != nil {
		return err
	}
	for _, c := range f.Commands {
		if err := encodeCommand(w, c); err != nil {
			return err
		}
	}
	return writeUint64(w, f.SnapshotHash)
}

func decodeFrame(r io.Reader) (*Frame, error) {
	tickID, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int(count) > MaxCommandsPerFrame {
		return nil, &MalformedFrameError{Detail: fmt.Sprintf("frame declares %d commands, limit %d", count, MaxCommandsPerFrame)}
	}
	commands := make([]SerializedCommand, count)
	for i := range commands {
		c, err := decodeCommand(r)
		if err != nil {
			return nil, err
		}
		commands[i] = c
	}
	snapshotHash, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	return &Frame{TickID: tickID, Commands: commands, SnapshotHash: snapshotHash}, nil
}
