//go:build ceph

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
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephCheckpointFactory mints one CephCheckpointStore per run against a
// shared RADOS connection, the way storage/persistence-ceph.go's
// CephFactory mints CephStorages against a shared pool.
type CephCheckpointFactory struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

func (f *CephCheckpointFactory) CreateStore(runID string) CheckpointStore {
	return &cephCheckpointStore{factory: f, prefix: path.Join(f.Prefix, "checkpoints", runID)}
}

type cephCheckpointStore struct {
	factory *CephCheckpointFactory
	prefix  string

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func (s *cephCheckpointStore) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}

	conn, err := rados.NewConnWithClusterAndUser(s.factory.ClusterName, s.factory.UserName)
	if err != nil {
		return err
	}
	if s.factory.ConfFile != "" {
		if err := conn.ReadConfigFile(s.factory.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(s.factory.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	s.conn = conn
	s.ioctx = ioctx
	s.opened = true
	return nil
}

func (s *cephCheckpointStore) obj(tick uint64) string {
	return path.Join(s.prefix, fmt.Sprintf("%020d.ckpt.xz", tick))
}

func (s *cephCheckpointStore) WriteCheckpoint(runID string, tick uint64, data io.Reader) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	return s.ioctx.WriteFull(s.obj(tick), body)
}

func (s *cephCheckpointStore) ReadCheckpoint(runID string, tick uint64) (io.ReadCloser, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	obj := s.obj(tick)
	stat, err := s.ioctx.Stat(obj)
	if err != nil {
		return nil, err
	}
	data := make([]byte, stat.Size)
	n, err := s.ioctx.Read(obj, data, 0)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data[:n])), nil
}

func (s *cephCheckpointStore) ListCheckpoints(runID string) ([]uint64, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	iter, err := s.ioctx.Iter()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var ticks []uint64
	prefix := s.prefix + "/"
	for iter.Next() {
		name := iter.Value()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".ckpt.xz") {
			continue
		}
		trimmed := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".ckpt.xz")
		n, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			continue
		}
		ticks = append(ticks, n)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks, nil
}

func (s *cephCheckpointStore) RemoveCheckpoint(runID string, tick uint64) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.ioctx.Delete(s.obj(tick)); err != nil && !errors.Is(err, rados.ErrNotFound) {
		return err
	}
	return nil
}
