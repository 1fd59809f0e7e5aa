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

package engine

import (
	"fmt"

	"github.com/tachyon-beep/murk/internal/ingress"
)

// DisabledError is returned by Step when the engine has exceeded its
// consecutive-failure threshold and is waiting for Reset.
type DisabledError struct {
	ConsecutiveFailures uint32
	Threshold           uint32
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("engine: disabled after %d consecutive tick failures (threshold %d); call Reset", e.ConsecutiveFailures, e.Threshold)
}

// PolicyError reports a command that could not be applied for policy
// reasons decided outside the ingress queue's own validation — most
// notably a Move/Spawn/Despawn/Custom command with no handler
// registered for its kind.
type PolicyError struct {
	Kind ingress.PayloadKind
}

func (e *PolicyError) Error() string {
	if e.Kind == ingress.SetField {
		return "engine: SetField command could not be applied (unknown or non-scalar field, or coordinate outside the space)"
	}
	return fmt.Sprintf("engine: no handler registered for command kind %s", e.Kind)
}

// DtOutOfRangeError is returned by New when cfg.Dt exceeds the
// compiled pipeline's dt_cap (the minimum of every propagator's
// declared max_dt): a world configured this way could never complete a
// single tick without its Step call being rejected, so construction
// itself must fail rather than leaving an un-constructible-per-spec
// world to burn its consecutive-failure budget one tick at a time.
type DtOutOfRangeError struct {
	Dt    float64
	DtCap float64
}

func (e *DtOutOfRangeError) Error() string {
	return fmt.Sprintf("engine: configured dt %v exceeds compiled dt_cap %v", e.Dt, e.DtCap)
}

// PropagatorPanicError wraps a panic recovered from within a tick
// (propagator code or a registered handler), converting it into the
// same rollback-and-count-toward-threshold path as an ordinary error,
// the way the teacher's storage/scan.go turns a recovered panic into a
// scanError instead of crashing the process.
type PropagatorPanicError struct {
	Recovered any
	Stack     string
}

func (e *PropagatorPanicError) Error() string {
	return fmt.Sprintf("engine: recovered panic during tick: %v\n%s", e.Recovered, e.Stack)
}
