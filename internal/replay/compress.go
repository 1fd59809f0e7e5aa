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

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// NewFrameStreamWriter wraps w with lz4 block compression for the
// per-tick frame log: frames arrive one at a time and are small, so a
// fast block codec suits the steady trickle of WriteFrame calls better
// than a dictionary-building archive format.
func NewFrameStreamWriter(w io.Writer) io.WriteCloser {
	return lz4.NewWriter(w)
}

// NewFrameStreamReader wraps r to decompress a stream written by
// NewFrameStreamWriter.
func NewFrameStreamReader(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}

// NewCheckpointArchiveWriter wraps w with xz compression for a
// periodic full-snapshot checkpoint dump: unlike the frame log, a
// checkpoint is one large write of mostly-repetitive float data, where
// xz's better compression ratio is worth its slower throughput.
func NewCheckpointArchiveWriter(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

// NewCheckpointArchiveReader wraps r to decompress a checkpoint written
// by NewCheckpointArchiveWriter.
func NewCheckpointArchiveReader(r io.Reader) (io.Reader, error) {
	return xz.NewReader(r)
}
