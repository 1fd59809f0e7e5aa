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

package ingress

import "fmt"

// ValidationError explains why Submit rejected one command. There is no
// original_source grounding for this type (murk-core/src/error.rs was
// not present in the retrieved reference set); the reasons below are
// drawn directly from spec.md section 4.3's submission validation list.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func unknownFieldError(field int) error {
	return &ValidationError{Reason: fmt.Sprintf("unknown field %d", field)}
}

func unknownParameterError(key uint32) error {
	return &ValidationError{Reason: fmt.Sprintf("unknown parameter key %d", key)}
}

func coordArityError(got, want int) error {
	return &ValidationError{Reason: fmt.Sprintf("coordinate has %d components, space expects %d", got, want)}
}

func coordOutOfBoundsError() error {
	return &ValidationError{Reason: "coordinate is out of bounds for the configured space"}
}

func notSparseError(field int) error {
	return &ValidationError{Reason: fmt.Sprintf("field %d is not Sparse; SetField requires a Sparse field", field)}
}

func payloadTooLargeError(size, cap int) error {
	return &ValidationError{Reason: fmt.Sprintf("payload size %d exceeds configured cap %d", size, cap)}
}

func emptyBatchError() error {
	return &ValidationError{Reason: "SetParameterBatch must contain at least one pair"}
}
