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

package abi

import (
	"errors"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/engine"
	"github.com/tachyon-beep/murk/internal/ingress"
	"github.com/tachyon-beep/murk/internal/pipeline"
)

// Classify maps an error returned by internal/engine, internal/arena,
// internal/pipeline or internal/ingress onto the fixed Status table, so
// a caller on the other side of an ABI boundary never has to know about
// this module's internal Go error types. A nil err classifies as
// StatusOk; an error this function does not recognize classifies as
// StatusInvalidArg, since every recognized failure mode already has a
// named code and an unrecognized one is, by construction, a caller
// mistake rather than an engine-internal condition.
func Classify(err error) Status {
	if err == nil {
		return StatusOk
	}

	var (
		disabledErr     *engine.DisabledError
		policyErr       *engine.PolicyError
		panicErr        *engine.PropagatorPanicError
		dtRangeErr      *engine.DtOutOfRangeError
		capacityErr     *arena.CapacityExceededError
		staleErr        *arena.StaleHandleError
		unknownFieldErr *arena.UnknownFieldError
		notWritableErr  *arena.NotWritableError
		compileErr      *pipeline.CompileError
		propagatorErr   *pipeline.PropagatorError
		validationErr   *ingress.ValidationError
	)

	switch {
	case errors.As(err, &disabledErr):
		return StatusTickingDisabled
	case errors.As(err, &policyErr):
		return StatusInvalidArg
	case errors.As(err, &panicErr):
		return StatusPropagatorFailed
	case errors.As(err, &dtRangeErr):
		return StatusDtOutOfRange
	case errors.As(err, &capacityErr):
		return StatusArenaOom
	case errors.As(err, &staleErr):
		return StatusInvalidHandle
	case errors.As(err, &unknownFieldErr):
		return StatusInvalidArg
	case errors.As(err, &notWritableErr):
		return StatusInvalidArg
	case errors.As(err, &compileErr):
		return StatusInvalidSpec
	case errors.As(err, &propagatorErr):
		return StatusPropagatorFailed
	case errors.As(err, &validationErr):
		return StatusStaleCommand
	}
	return StatusInvalidArg
}

// ClassifyReceipt maps one ingress.Receipt's outcome onto Status, for
// callers that want a single code per submitted command rather than
// reading ingress.ReceiptStatus directly.
func ClassifyReceipt(r ingress.Receipt) Status {
	switch r.Status {
	case ingress.Accepted:
		return StatusOk
	case ingress.QueueFull:
		return StatusQueueFull
	case ingress.Expired:
		return StatusStaleCommand
	case ingress.Rejected:
		return StatusInvalidArg
	default:
		return StatusInvalidArg
	}
}
