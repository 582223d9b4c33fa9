// Package objectstore persists rendered audio in a NATS JetStream
// object store bucket. Segment and episode artifacts are addressed by
// job-scoped keys and referenced elsewhere via nats-obj:// URLs.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const urlScheme = "nats-obj://"

// Store wraps a JetStream object store bucket.
type Store struct {
	conn   *nats.Conn
	bucket string
	store  nats.ObjectStore
}

// Connect dials the NATS server and creates or binds the named bucket.
func Connect(url, bucket string) (*Store, error) {
	conn, err := nats.Connect(url, nats.Name("castpress"))
	if err != nil {
		return nil, fmt.Errorf("object store: connect %s: %w", url, err)
	}
	store, err := NewWithConn(conn, bucket)
	if err != nil {
		conn.Close()
		return nil, err
	}
	store.conn = conn
	return store, nil
}

// NewWithConn creates or binds the bucket on an existing connection.
// The caller keeps ownership of the connection.
func NewWithConn(conn *nats.Conn, bucket string) (*Store, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("object store: jetstream context: %w", err)
	}
	obj, err := js.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:  bucket,
		Storage: nats.FileStorage,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("object store: create bucket %s: %w", bucket, err)
		}
		obj, err = js.ObjectStore(bucket)
		if err != nil {
			return nil, fmt.Errorf("object store: bind bucket %s: %w", bucket, err)
		}
	}
	return &Store{bucket: bucket, store: obj}, nil
}

// Put stores data under key and returns the artifact URL.
func (s *Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.store.Put(&nats.ObjectMeta{Name: key}, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("object store: put %s/%s: %w", s.bucket, key, err)
	}
	return s.URL(key), nil
}

// Get retrieves the object stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obj, err := s.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("object store: get %s/%s: %w", s.bucket, key, err)
	}
	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()
	if readErr != nil {
		return nil, fmt.Errorf("object store: read %s/%s: %w", s.bucket, key, readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("object store: close %s/%s: %w", s.bucket, key, closeErr)
	}
	return data, nil
}

// URL formats the artifact URL for a key in this bucket.
func (s *Store) URL(key string) string {
	return urlScheme + s.bucket + "/" + key
}

// Close closes the underlying connection when this store owns it.
func (s *Store) Close() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// SegmentKey addresses one synthesized line of a job.
func SegmentKey(jobID string, index int) string {
	return fmt.Sprintf("jobs/%s/segment_%03d.wav", jobID, index)
}

// EpisodeKey addresses a job's assembled episode.
func EpisodeKey(jobID string) string {
	return fmt.Sprintf("jobs/%s/episode.wav", jobID)
}

// KeyFromURL extracts the bucket-relative key from an artifact URL.
func KeyFromURL(rawURL string) (string, error) {
	trimmed, ok := strings.CutPrefix(rawURL, urlScheme)
	if !ok {
		return "", fmt.Errorf("object store: unrecognized artifact url %q", rawURL)
	}
	_, key, ok := strings.Cut(trimmed, "/")
	if !ok || key == "" {
		return "", fmt.Errorf("object store: artifact url %q missing key", rawURL)
	}
	return key, nil
}
