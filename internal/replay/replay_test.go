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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
)

type fakeSnapshot struct {
	fields map[ids.FieldId][]float32
}

func (f fakeSnapshot) ReadField(field ids.FieldId) ([]float32, error) {
	v, ok := f.fields[field]
	if !ok {
		return nil, &MalformedFrameError{Detail: "no such field"}
	}
	return v, nil
}

func TestSnapshotHashSameDataSameHash(t *testing.T) {
	a := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 3}, 1: {4, 5}}}
	b := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 3}, 1: {4, 5}}}
	if SnapshotHash(a, 2) != SnapshotHash(b, 2) {
		t.Fatal("identical snapshots hashed differently")
	}
}

func TestSnapshotHashDifferentDataDifferentHash(t *testing.T) {
	a := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 3}}}
	b := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 4}}}
	if SnapshotHash(a, 1) == SnapshotHash(b, 1) {
		t.Fatal("different snapshots hashed the same")
	}
}

func TestSnapshotHashFieldOrderMatters(t *testing.T) {
	a := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2}, 1: {3, 4}}}
	b := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {3, 4}, 1: {1, 2}}}
	if SnapshotHash(a, 2) == SnapshotHash(b, 2) {
		t.Fatal("swapping field assignment must change the hash")
	}
}

func TestSnapshotHashEmptyIsFnvOffset(t *testing.T) {
	if h := SnapshotHash(fakeSnapshot{}, 0); h != fnvOffset {
		t.Fatalf("SnapshotHash with fieldCount=0 = %#x, want fnvOffset %#x", h, fnvOffset)
	}
}

func TestConfigHashDeterministic(t *testing.T) {
	h1 := ConfigHash(42, 0x3FB99999A0000000, 5, 10000, []byte{1, 2, 3})
	h2 := ConfigHash(42, 0x3FB99999A0000000, 5, 10000, []byte{1, 2, 3})
	if h1 != h2 {
		t.Fatal("ConfigHash not deterministic for identical inputs")
	}
	h3 := ConfigHash(43, 0x3FB99999A0000000, 5, 10000, []byte{1, 2, 3})
	if h1 == h3 {
		t.Fatal("different seed must change ConfigHash")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	metadata := &BuildMetadata{Toolchain: "go1.23", TargetTriple: "x86_64-unknown-linux-gnu", MurkVersion: "0.1.0", CompileFlags: "release"}
	init := &InitDescriptor{Seed: 42, ConfigHash: 0xDEADBEEF, FieldCount: 3, CellCount: 100, SpaceDescriptor: []byte{1, 2, 3}}
	if err := encodeHeader(&buf, metadata, init); err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	gotMeta, gotInit, err := decodeHeader(&buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if *gotMeta != *metadata {
		t.Errorf("metadata = %+v, want %+v", gotMeta, metadata)
	}
	if gotInit.Seed != init.Seed || gotInit.ConfigHash != init.ConfigHash || gotInit.FieldCount != init.FieldCount || gotInit.CellCount != init.CellCount {
		t.Errorf("init = %+v, want %+v", gotInit, init)
	}
	if !bytes.Equal(gotInit.SpaceDescriptor, init.SpaceDescriptor) {
		t.Errorf("space descriptor = %v, want %v", gotInit.SpaceDescriptor, init.SpaceDescriptor)
	}
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XXXX")
	if _, _, err := decodeHeader(buf); err == nil {
		t.Fatal("expected InvalidMagicError")
	} else if _, ok := err.(*InvalidMagicError); !ok {
		t.Fatalf("expected *InvalidMagicError, got %T", err)
	}
}

func TestHeaderRejectsFutureVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(FormatVersion + 1)
	if _, _, err := decodeHeader(&buf); err == nil {
		t.Fatal("expected UnsupportedVersionError")
	} else if _, ok := err.(*UnsupportedVersionError); !ok {
		t.Fatalf("expected *UnsupportedVersionError, got %T", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sourceID := uint64Ptr(99)
	frame := &Frame{
		TickID: 5,
		Commands: []SerializedCommand{
			{PayloadType: PayloadSetParameter, Payload: []byte{1, 2, 3, 4}, PriorityClass: 1, SourceID: sourceID, ExpiresAfterTick: 10, ArrivalSeq: 1},
			{PayloadType: PayloadMove, Payload: nil, PriorityClass: 0, ExpiresAfterTick: 20, ArrivalSeq: 2},
		},
		SnapshotHash: 0xABCDEF,
	}
	if err := encodeFrame(&buf, frame); err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	got, err := decodeFrame(&buf)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if got.TickID != frame.TickID || got.SnapshotHash != frame.SnapshotHash || len(got.Commands) != len(frame.Commands) {
		t.Fatalf("frame = %+v, want %+v", got, frame)
	}
	if *got.Commands[0].SourceID != *sourceID {
		t.Errorf("SourceID = %v, want %v", got.Commands[0].SourceID, sourceID)
	}
	if got.Commands[1].SourceID != nil {
		t.Error("SourceID should be nil for command without one")
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

func TestSerializeDeserializeSetParameter(t *testing.T) {
	cmd := ingress.Command{
		PriorityClass:    2,
		ArrivalSeq:       1,
		ExpiresAfterTick: 50,
		Payload:          ingress.CommandPayload{Kind: ingress.SetParameter, ParameterKey: 7, ParameterValue: 3.5},
	}
	sc, err := SerializeCommand(cmd)
	if err != nil {
		t.Fatalf("SerializeCommand: %v", err)
	}
	got, err := DeserializeCommand(sc)
	if err != nil {
		t.Fatalf("DeserializeCommand: %v", err)
	}
	if got.Payload.Kind != ingress.SetParameter || got.Payload.ParameterKey != 7 || got.Payload.ParameterValue != 3.5 {
		t.Errorf("payload = %+v, want SetParameter(7, 3.5)", got.Payload)
	}
	if got.ExpiresAfterTick != cmd.ExpiresAfterTick || got.ArrivalSeq != cmd.ArrivalSeq {
		t.Errorf("command metadata mismatch: %+v vs %+v", got, cmd)
	}
}

func TestSerializeDeserializeSetField(t *testing.T) {
	cmd := ingress.Command{
		Payload: ingress.CommandPayload{Kind: ingress.SetField, Field: 3, Coord: ids.Coord{1, 2}, Value: 9.5},
	}
	sc, err := SerializeCommand(cmd)
	if err != nil {
		t.Fatalf("SerializeCommand: %v", err)
	}
	got, err := DeserializeCommand(sc)
	if err != nil {
		t.Fatalf("DeserializeCommand: %v", err)
	}
	if got.Payload.Field != 3 || got.Payload.Value != 9.5 || len(got.Payload.Coord) != 2 || got.Payload.Coord[0] != 1 || got.Payload.Coord[1] != 2 {
		t.Errorf("payload = %+v, want SetField(3, [1 2], 9.5)", got.Payload)
	}
}

func TestSerializeCustomRequiresBinaryMarshaler(t *testing.T) {
	cmd := ingress.Command{Payload: ingress.CommandPayload{Kind: ingress.Custom, Data: 42}}
	if _, err := SerializeCommand(cmd); err == nil {
		t.Fatal("expected an error for Data that does not implement encoding.BinaryMarshaler")
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	metadata := &BuildMetadata{MurkVersion: "0.1.0"}
	init := &InitDescriptor{Seed: 1, FieldCount: 1, CellCount: 4}
	w, err := NewWriter(&buf, metadata, init)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	snap := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 3, 4}}}
	cmds := []ingress.Command{{Payload: ingress.CommandPayload{Kind: ingress.SetParameter, ParameterKey: 1, ParameterValue: 1}}}
	if err := w.WriteFrame(1, cmds, snap); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if w.FramesWritten() != 1 {
		t.Errorf("FramesWritten = %d, want 1", w.FramesWritten())
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Init.Seed != 1 || r.Init.FieldCount != 1 {
		t.Errorf("Init = %+v", r.Init)
	}
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.TickID != 1 || len(frame.Commands) != 1 {
		t.Fatalf("frame = %+v", frame)
	}
	wantHash := SnapshotHash(snap, 1)
	if frame.SnapshotHash != wantHash {
		t.Errorf("SnapshotHash = %#x, want %#x", frame.SnapshotHash, wantHash)
	}

	if _, err := r.ReadFrame(); err != io.EOF {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestFrameIter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, &BuildMetadata{}, &InitDescriptor{FieldCount: 0})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i := uint64(0); i < 3; i++ {
		if err := w.WriteFrame(i, nil, fakeSnapshot{}); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	it := r.Frames()
	count := 0
	for {
		frame, ok := it.Next()
		if !ok {
			break
		}
		if frame.TickID != uint64(count) {
			t.Errorf("frame %d: TickID = %d, want %d", count, frame.TickID, count)
		}
		count++
	}
	if it.Err() != nil {
		t.Fatalf("iteration error: %v", it.Err())
	}
	if count != 3 {
		t.Fatalf("iterated %d frames, want 3", count)
	}
}

func TestCompareSnapshotAgreesOnMatchingHash(t *testing.T) {
	snap := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2}}}
	frame := &Frame{TickID: 1, SnapshotHash: SnapshotHash(snap, 1)}
	if div := CompareSnapshot(frame, snap, 1); div != nil {
		t.Fatalf("expected nil divergence, got %+v", div)
	}
}

func TestCompareSnapshotReportsDivergence(t *testing.T) {
	recorded := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2}}}
	replayed := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 3}}}
	frame := &Frame{TickID: 9, SnapshotHash: SnapshotHash(recorded, 1)}
	div := CompareSnapshot(frame, replayed, 1)
	if div == nil {
		t.Fatal("expected a divergence report")
	}
	if div.Kind != DivergenceSnapshot || div.TickID != 9 {
		t.Errorf("div = %+v", div)
	}
}

func TestCompareSnapshotFieldsFindsCell(t *testing.T) {
	recorded := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 2, 3}}}
	replayed := fakeSnapshot{fields: map[ids.FieldId][]float32{0: {1, 9, 3}}}
	div := CompareSnapshotFields(4, recorded, replayed, 1)
	if div == nil {
		t.Fatal("expected a divergence report")
	}
	if len(div.Fields) != 1 || div.Fields[0].CellIndex != 1 {
		t.Fatalf("div.Fields = %+v", div.Fields)
	}
}

func TestFileCheckpointStoreRoundTrip(t *testing.T) {
	factory := &FileCheckpointFactory{Basepath: t.TempDir()}
	store := factory.CreateStore("run-1")

	if err := store.WriteCheckpoint("run-1", 10, strings.NewReader("checkpoint-data")); err != nil {
		t.Fatalf("WriteCheckpoint: %v", err)
	}
	if err := store.WriteCheckpoint("run-1", 20, strings.NewReader("more-data")); err != nil {
		t.Fatalf("WriteCheckpoint: %v", err)
	}

	rc, err := store.ReadCheckpoint("run-1", 10)
	if err != nil {
		t.Fatalf("ReadCheckpoint: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading checkpoint body: %v", err)
	}
	if string(body) != "checkpoint-data" {
		t.Errorf("body = %q, want %q", body, "checkpoint-data")
	}

	ticks, err := store.ListCheckpoints("run-1")
	if err != nil {
		t.Fatalf("ListCheckpoints: %v", err)
	}
	if len(ticks) != 2 || ticks[0] != 10 || ticks[1] != 20 {
		t.Fatalf("ticks = %v, want [10 20]", ticks)
	}

	if err := store.RemoveCheckpoint("run-1", 10); err != nil {
		t.Fatalf("RemoveCheckpoint: %v", err)
	}
	ticks, err = store.ListCheckpoints("run-1")
	if err != nil {
		t.Fatalf("ListCheckpoints after remove: %v", err)
	}
	if len(ticks) != 1 || ticks[0] != 20 {
		t.Fatalf("ticks after remove = %v, want [20]", ticks)
	}

	if err := store.RemoveCheckpoint("run-1", 999); err != nil {
		t.Errorf("removing a nonexistent checkpoint should not error, got %v", err)
	}
}

func TestFileCheckpointStoreListEmptyRun(t *testing.T) {
	factory := &FileCheckpointFactory{Basepath: t.TempDir()}
	store := factory.CreateStore("never-written")
	ticks, err := store.ListCheckpoints("never-written")
	if err != nil {
		t.Fatalf("ListCheckpoints on unwritten run: %v", err)
	}
	if len(ticks) != 0 {
		t.Fatalf("ticks = %v, want empty", ticks)
	}
}

func TestFrameStreamCompressionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewFrameStreamWriter(&buf)
	if _, err := w.Write([]byte("hello frame stream")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := io.ReadAll(NewFrameStreamReader(&buf))
	if err != nil {
		t.Fatalf("reading decompressed stream: %v", err)
	}
	if string(got) != "hello frame stream" {
		t.Errorf("decompressed = %q, want %q", got, "hello frame stream")
	}
}

func TestCheckpointArchiveCompressionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCheckpointArchiveWriter(&buf)
	if err != nil {
		t.Fatalf("NewCheckpointArchiveWriter: %v", err)
	}
	if _, err := w.Write([]byte("hello checkpoint archive")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := NewCheckpointArchiveReader(&buf)
	if err != nil {
		t.Fatalf("NewCheckpointArchiveReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading decompressed archive: %v", err)
	}
	if string(got) != "hello checkpoint archive" {
		t.Errorf("decompressed = %q, want %q", got, "hello checkpoint archive")
	}
}
