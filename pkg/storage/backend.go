// Package storage holds blob backends for graph snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Location is a parsed snapshot URL.
type Location struct {
	Scheme string // "s3" or "file"
	Bucket string // s3 only
	Root   string // file only
	Key    string
}

// ParseLocation accepts "s3://bucket/key" or a filesystem path. A path
// ending in "/" names a directory with an empty key.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, errors.New("empty snapshot location")
	}
	if rest, ok := strings.CutPrefix(raw, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", raw)
		}
		return Location{Scheme: "s3", Bucket: bucket, Key: key}, nil
	}
	path := strings.TrimPrefix(raw, "file://")
	if strings.HasSuffix(path, "/") {
		// A directory: list it, keys are relative to it.
		return Location{Scheme: "file", Root: filepath.Clean(path)}, nil
	}
	return Location{Scheme: "file", Root: filepath.Dir(path), Key: filepath.Base(path)}, nil
}

func (l Location) String() string {
	if l.Scheme == "s3" {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return filepath.Join(l.Root, l.Key)
}
