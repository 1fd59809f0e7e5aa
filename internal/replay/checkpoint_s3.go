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
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3CheckpointFactory mints S3CheckpointStores bucket/prefix-scoped the
// way storage/persistence-s3.go's S3Factory mints S3Storages.
type S3CheckpointFactory struct {
	Bucket          string
	Region          string
	Endpoint        string // non-empty for S3-compatible (MinIO, Ceph RGW, etc.)
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

func (f *S3CheckpointFactory) CreateStore(runID string) CheckpointStore {
	return &s3CheckpointStore{factory: f, prefix: "checkpoints/" + runID + "/"}
}

type s3CheckpointStore struct {
	factory *S3CheckpointFactory
	prefix  string

	mu     sync.Mutex
	client *s3.Client
}

func (s *s3CheckpointStore) ensureClient() (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if s.factory.Region != "" {
		opts = append(opts, config.WithRegion(s.factory.Region))
	}
	if s.factory.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.factory.AccessKeyID, s.factory.SecretAccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("replay: loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s.factory.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = awssdk.String(s.factory.Endpoint)
		})
	}
	if s.factory.PathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	s.client = s3.NewFromConfig(cfg, s3Opts...)
	return s.client, nil
}

func (s *s3CheckpointStore) key(tick uint64) string {
	return fmt.Sprintf("%s%020d.ckpt.xz", s.prefix, tick)
}

func (s *s3CheckpointStore) WriteCheckpoint(runID string, tick uint64, data io.Reader) error {
	client, err := s.ensureClient()
	if err != nil {
		return err
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	_, err = client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: awssdk.String(s.factory.Bucket),
		Key:    awssdk.String(s.key(tick)),
		Body:   bytes.NewReader(body),
	})
	return err
}

func (s *s3CheckpointStore) ReadCheckpoint(runID string, tick uint64) (io.ReadCloser, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	resp, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: awssdk.String(s.factory.Bucket),
		Key:    awssdk.String(s.key(tick)),
	})
	if err != nil {
		// S3 reports a missing key as a service error, not a Go
		// os.ErrNotExist; like the teacher's ReadSchema/ReadColumn,
		// callers are expected to treat any GetObject error as "no
		// checkpoint for this tick" rather than parse the error body.
		return nil, err
	}
	return resp.Body, nil
}

func (s *s3CheckpointStore) ListCheckpoints(runID string) ([]uint64, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: awssdk.String(s.factory.Bucket),
		Prefix: awssdk.String(s.prefix),
	})
	var ticks []uint64
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(awssdk.ToString(obj.Key), s.prefix)
			name = strings.TrimSuffix(name, ".ckpt.xz")
			n, err := strconv.ParseUint(name, 10, 64)
			if err != nil {
				continue
			}
			ticks = append(ticks, n)
		}
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks, nil
}

func (s *s3CheckpointStore) RemoveCheckpoint(runID string, tick uint64) error {
	client, err := s.ensureClient()
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: awssdk.String(s.factory.Bucket),
		Key:    awssdk.String(s.key(tick)),
	})
	return err
}
