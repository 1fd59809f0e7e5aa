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

// Package ingress implements the command queue (C3): deterministic total
// ordering of submitted commands, bounded-capacity admission with
// per-command receipts, and tick-boundary draining with expiry.
package ingress

import "github.com/tachyon-beep/murk/internal/ids"

// PayloadKind tags which variant of CommandPayload is populated.
type PayloadKind uint8

const (
	SetParameter PayloadKind = iota
	SetParameterBatch
	SetField
	Move
	Spawn
	Despawn
	Custom
)

func (k PayloadKind) String() string {
	switch k {
	case SetParameter:
		return "SetParameter"
	case SetParameterBatch:
		return "SetParameterBatch"
	case SetField:
		return "SetField"
	case Move:
		return "Move"
	case Spawn:
		return "Spawn"
	case Despawn:
		return "Despawn"
	case Custom:
		return "Custom"
	default:
		return "PayloadKind(?)"
	}
}

// ParameterPair is one key/value update within a SetParameterBatch.
type ParameterPair struct {
	Key   ids.ParameterKey
	Value float64
}

// CommandPayload is a flattened tagged union standing in for the
// original's CommandPayload enum: Kind selects which fields are
// meaningful. Move/Spawn/Despawn/Custom carry an opaque Data value
// forwarded verbatim to the handler registered for that kind; the
// queue itself never inspects it.
type CommandPayload struct {
	Kind PayloadKind

	ParameterKey   ids.ParameterKey
	ParameterValue float64
	ParameterPairs []ParameterPair

	Field ids.FieldId
	Coord ids.Coord
	Value float64

	Data any
}

// Command is one ingress entry: validated and ordered before it is ever
// handed to a propagator or handler.
type Command struct {
	PriorityClass    int32
	SourceID         *uint64 // nil compares as less than any Some
	SourceSeq        *uint64
	ArrivalSeq       uint64 // assigned by the queue at acceptance time
	ExpiresAfterTick ids.TickId
	Payload          CommandPayload
}

// ReceiptStatus is the outcome of submitting one command.
type ReceiptStatus uint8

const (
	Accepted ReceiptStatus = iota
	Rejected
	QueueFull
	Expired
)

func (s ReceiptStatus) String() string {
	switch s {
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case QueueFull:
		return "QueueFull"
	case Expired:
		return "Expired"
	default:
		return "ReceiptStatus(?)"
	}
}

// Receipt reports what happened to the batch entry at CommandIndex.
// Submit returns receipts indexed to match the input batch.
type Receipt struct {
	CommandIndex int
	Status       ReceiptStatus
	Reason       string // populated for Rejected
	ArrivalSeq   uint64 // meaningful only when Status == Accepted
}
