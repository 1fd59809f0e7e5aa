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
	"encoding"
	"fmt"
	"math"

	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
)

func payloadTag(kind ingress.PayloadKind) (uint8, error) {
	switch kind {
	case ingress.Move:
		return PayloadMove, nil
	case ingress.Spawn:
		return PayloadSpawn, nil
	case ingress.Despawn:
		return PayloadDespawn, nil
	case ingress.SetField:
		return PayloadSetField, nil
	case ingress.Custom:
		return PayloadCustom, nil
	case ingress.SetParameter:
		return PayloadSetParameter, nil
	case ingress.SetParameterBatch:
		return PayloadSetParameterBatch, nil
	default:
		return 0, fmt.Errorf("replay: unrecognized payload kind %v", kind)
	}
}

func kindFromTag(tag uint8) (ingress.PayloadKind, error) {
	switch tag {
	case PayloadMove:
		return ingress.Move, nil
	case PayloadSpawn:
		return ingress.Spawn, nil
	case PayloadDespawn:
		return ingress.Despawn, nil
	case PayloadSetField:
		return ingress.SetField, nil
	case PayloadCustom:
		return ingress.Custom, nil
	case PayloadSetParameter:
		return ingress.SetParameter, nil
	case PayloadSetParameterBatch:
		return ingress.SetParameterBatch, nil
	default:
		return 0, &UnknownPayloadTypeError{Tag: tag}
	}
}

// SerializeCommand flattens an ingress.Command into its wire form.
// Move/Spawn/Despawn/Custom commands carry an opaque Data payload; it
// is serialized via encoding.BinaryMarshaler if Data implements it,
// otherwise SerializeCommand reports an error — this module has no way
// to guess how a caller-registered handler's payload type should be
// encoded without that contract.
func SerializeCommand(cmd ingress.Command) (SerializedCommand, error) {
	tag, err := payloadTag(cmd.Payload.Kind)
	if err != nil {
		return SerializedCommand{}, err
	}
	payload, err := encodePayload(cmd.Payload)
	if err != nil {
		return SerializedCommand{}, err
	}
	return SerializedCommand{
		PayloadType:      tag,
		Payload:          payload,
		PriorityClass:    uint8(cmd.PriorityClass),
		SourceID:         cmd.SourceID,
		SourceSeq:        cmd.SourceSeq,
		ExpiresAfterTick: uint64(cmd.ExpiresAfterTick),
		ArrivalSeq:       cmd.ArrivalSeq,
	}, nil
}

func encodePayload(p ingress.CommandPayload) ([]byte, error) {
	var buf bytes.Buffer
	switch p.Kind {
	case ingress.SetParameter:
		writeUint32(&buf, uint32(p.ParameterKey))
		writeUint64(&buf, math.Float64bits(p.ParameterValue))
	case ingress.SetParameterBatch:
		writeUint32(&buf, uint32(len(p.ParameterPairs)))
		for _, pair := range p.ParameterPairs {
			writeUint32(&buf, uint32(pair.Key))
			writeUint64(&buf, math.Float64bits(pair.Value))
		}
	case ingress.SetField:
		writeUint32(&buf, uint32(p.Field))
		writeUint32(&buf, uint32(len(p.Coord)))
		for _, c := range p.Coord {
			writeUint32(&buf, uint32(int32(c)))
		}
		writeUint64(&buf, math.Float64bits(p.Value))
	case ingress.Move, ingress.Spawn, ingress.Despawn, ingress.Custom:
		if p.Data == nil {
			return buf.Bytes(), nil
		}
		marshaler, ok := p.Data.(encoding.BinaryMarshaler)
		if !ok {
			return nil, fmt.Errorf("replay: %v command's Data (%T) does not implement encoding.BinaryMarshaler", p.Kind, p.Data)
		}
		b, err := marshaler.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("replay: marshaling %v command data: %w", p.Kind, err)
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// DeserializeCommand reconstructs an ingress.Command from its wire
// form. Move/Spawn/Despawn/Custom payload bytes are handed back as the
// raw []byte in Data — reconstructing the original registered type
// requires calling DecodeCustomData with a caller-supplied
// encoding.BinaryUnmarshaler, since this package cannot know which
// concrete type a given deployment registered for that kind.
func DeserializeCommand(sc SerializedCommand) (ingress.Command, error) {
	kind, err := kindFromTag(sc.PayloadType)
	if err != nil {
		return ingress.Command{}, err
	}
	payload, err := decodePayload(kind, sc.Payload)
	if err != nil {
		return ingress.Command{}, err
	}
	return ingress.Command{
		PriorityClass:    int32(sc.PriorityClass),
		SourceID:         sc.SourceID,
		SourceSeq:        sc.SourceSeq,
		ArrivalSeq:       sc.ArrivalSeq,
		ExpiresAfterTick: ids.TickId(sc.ExpiresAfterTick),
		Payload:          payload,
	}, nil
}

func decodePayload(kind ingress.PayloadKind, raw []byte) (ingress.CommandPayload, error) {
	r := bytes.NewReader(raw)
	switch kind {
	case ingress.SetParameter:
		key, err := readUint32(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetParameter: " + err.Error()}
		}
		bits, err := readUint64(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetParameter: " + err.Error()}
		}
		return ingress.CommandPayload{Kind: kind, ParameterKey: ids.ParameterKey(key), ParameterValue: math.Float64frombits(bits)}, nil
	case ingress.SetParameterBatch:
		count, err := readUint32(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetParameterBatch: " + err.Error()}
		}
		pairs := make([]ingress.ParameterPair, count)
		for i := range pairs {
			key, err := readUint32(r)
			if err != nil {
				return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetParameterBatch: " + err.Error()}
			}
			bits, err := readUint64(r)
			if err != nil {
				return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetParameterBatch: " + err.Error()}
			}
			pairs[i] = ingress.ParameterPair{Key: ids.ParameterKey(key), Value: math.Float64frombits(bits)}
		}
		return ingress.CommandPayload{Kind: kind, ParameterPairs: pairs}, nil
	case ingress.SetField:
		field, err := readUint32(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetField: " + err.Error()}
		}
		coordLen, err := readUint32(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetField: " + err.Error()}
		}
		coord := make(ids.Coord, coordLen)
		for i := range coord {
			v, err := readUint32(r)
			if err != nil {
				return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetField: " + err.Error()}
			}
			coord[i] = int32(v)
		}
		bits, err := readUint64(r)
		if err != nil {
			return ingress.CommandPayload{}, &MalformedFrameError{Detail: "SetField: " + err.Error()}
		}
		return ingress.CommandPayload{Kind: kind, Field: ids.FieldId(field), Coord: coord, Value: math.Float64frombits(bits)}, nil
	case ingress.Move, ingress.Spawn, ingress.Despawn, ingress.Custom:
		return ingress.CommandPayload{Kind: kind, Data: raw}, nil
	default:
		return ingress.CommandPayload{}, fmt.Errorf("replay: unhandled payload kind %v", kind)
	}
}

// DecodeCustomData unmarshals a Move/Spawn/Despawn/Custom command's raw
// Data ([]byte, as left by DeserializeCommand) into dst.
func DecodeCustomData(cmd ingress.Command, dst encoding.BinaryUnmarshaler) error {
	raw, ok := cmd.Payload.Data.([]byte)
	if !ok {
		return fmt.Errorf("replay: command Data is %T, not raw bytes from DeserializeCommand", cmd.Payload.Data)
	}
	return dst.UnmarshalBinary(raw)
}
