package partition

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
	"github.com/rohmanhakim/shell-cache/pkg/fileutil"
)

const entrySuffix = ".snap"

// DiskStore persists partitions as directories under a root path, one JSON
// snapshot file per entry. It survives process restarts the way browser cache
// storage survives tab closes. Keys are hex digests, so they are used directly
// as filenames.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(root); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Open(name string) (Partition, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(s.root, name); err != nil {
		return nil, &PartitionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		}
	}
	return &diskPartition{dir: filepath.Join(s.root, name)}, nil
}

func (s *DiskStore) Names() ([]string, failure.ClassifiedError) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &PartitionError{
			Message:   fmt.Sprintf("read root: %v", err),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
		}
	}

	var names []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			names = append(names, dirEntry.Name())
		}
	}
	return names, nil
}

func (s *DiskStore) Delete(name string) failure.ClassifiedError {
	if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
		return &PartitionError{
			Message:   fmt.Sprintf("delete %s: %v", name, err),
			Retryable: true,
			Cause:     ErrCauseDeleteFailure,
		}
	}
	return nil
}

type diskPartition struct {
	dir string
}

// diskEntry is the on-disk snapshot format. Body round-trips through JSON's
// base64 encoding of []byte.
type diskEntry struct {
	StatusCode int         `json:"statusCode"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"storedAt"`
}

func (p *diskPartition) Match(key string) (Entry, bool, failure.ClassifiedError) {
	raw, err := os.ReadFile(p.entryPath(key))
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, &PartitionError{
			Message:   fmt.Sprintf("read %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
		}
	}

	var stored diskEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Entry{}, false, &PartitionError{
			Message:   fmt.Sprintf("decode %s: %v", key, err),
			Retryable: false,
			Cause:     ErrCauseCorruptEntry,
		}
	}
	return NewEntry(stored.StatusCode, stored.Header, stored.Body, stored.StoredAt), true, nil
}

func (p *diskPartition) Put(key string, entry Entry) failure.ClassifiedError {
	raw, err := json.Marshal(diskEntry{
		StatusCode: entry.StatusCode(),
		Header:     entry.Header(),
		Body:       entry.Body(),
		StoredAt:   entry.StoredAt(),
	})
	if err != nil {
		return &PartitionError{
			Message:   fmt.Sprintf("encode %s: %v", key, err),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		}
	}

	// Write-then-rename keeps a concurrent Match from observing a torn file.
	tmp := p.entryPath(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return &PartitionError{
			Message:   fmt.Sprintf("write %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	if err := os.Rename(tmp, p.entryPath(key)); err != nil {
		return &PartitionError{
			Message:   fmt.Sprintf("rename %s: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return nil
}

func (p *diskPartition) Keys() ([]string, failure.ClassifiedError) {
	dirEntries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, &PartitionError{
			Message:   fmt.Sprintf("read dir: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadFailure,
		}
	}

	var keys []string
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if strings.HasSuffix(name, entrySuffix) {
			keys = append(keys, strings.TrimSuffix(name, entrySuffix))
		}
	}
	return keys, nil
}

func (p *diskPartition) entryPath(key string) string {
	return filepath.Join(p.dir, key+entrySuffix)
}
