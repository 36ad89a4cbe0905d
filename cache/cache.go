// Package cache is a content-addressed on-disk store for video hashes.
// Keys combine a blake3 digest of the full file bytes with a digest of the
// hashing parameters, so a re-encoded file or a parameter change never
// reuses a stale fingerprint. One .vhash file per key is the source of
// truth; an index file exists only as an enumeration hint.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"
	"lukechampine.com/blake3"

	"github.com/lepinkainen/videodup/vhash"
)

// Key addresses one cache entry: blake3 of the file bytes followed by the
// params digest.
type Key [48]byte

// NewKey combines a file digest with the digest of the hashing parameters.
func NewKey(fileDigest [32]byte, params vhash.Params) Key {
	var k Key
	copy(k[:32], fileDigest[:])
	pd := params.Digest()
	copy(k[32:], pd[:])
	return k
}

// Hex is the key's filename form.
func (k Key) Hex() string { return hex.EncodeToString(k[:]) }

// FileDigest computes the blake3 digest over the full file contents.
func FileDigest(path string) ([32]byte, error) {
	var digest [32]byte

	f, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer func() { _ = f.Close() }()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return digest, fmt.Errorf("digesting %s: %w", path, err)
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

const indexName = "index.json"

type indexEntry struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	MTime int64  `json:"mtime"`
}

// Store owns one cache directory. Reads are lock-free; writes serialize per
// key through a .lock file, and concurrent builders of the same key inside
// one process share a single execution.
type Store struct {
	root string

	mu    sync.RWMutex // guards index
	index map[string]indexEntry

	group singleflight.Group
}

// Open creates the cache directory if needed and loads the index hint.
// A missing or unreadable index is not an error; the entry files decide.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	s := &Store{root: root, index: make(map[string]indexEntry)}
	if raw, err := os.ReadFile(filepath.Join(root, indexName)); err == nil {
		var entries []indexEntry
		if json.Unmarshal(raw, &entries) == nil {
			for _, e := range entries {
				s.index[e.Key] = e
			}
		}
	}
	return s, nil
}

// Root returns the cache directory.
func (s *Store) Root() string { return s.root }

func (s *Store) entryPath(key Key) string {
	return filepath.Join(s.root, key.Hex()+".vhash")
}

func (s *Store) lockPath(key Key) string {
	return filepath.Join(s.root, key.Hex()+".lock")
}

// Lookup reads the entry for key. A corrupt entry is removed and reported
// as a miss.
func (s *Store) Lookup(key Key) (*vhash.VideoHash, bool, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	vh, err := decodeEntry(data, key)
	if err != nil {
		_ = os.Remove(s.entryPath(key))
		s.dropIndex(key)
		return nil, false, nil
	}
	return vh, true, nil
}

// Put writes the entry for key, replacing any previous one. The write is
// temp-file-then-rename under the per-key lock so concurrent processes
// never observe a partial entry.
func (s *Store) Put(key Key, vh *vhash.VideoHash) error {
	data, err := encodeEntry(key, vh)
	if err != nil {
		return err
	}

	fl := flock.New(s.lockPath(key))
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking cache key: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	if err := s.writeAtomic(s.entryPath(key), data); err != nil {
		return err
	}
	s.updateIndex(key, vh.Path)
	return nil
}

// GetOrBuild returns the cached hash for key, building and storing it with
// build on a miss. For a given key at most one build runs in this process;
// concurrent callers block on its completion and share the result. A second
// process building the same key is serialized by the key's file lock, and
// its finished entry is picked up instead of rebuilding.
func (s *Store) GetOrBuild(ctx context.Context, key Key, build func() (*vhash.VideoHash, error)) (*vhash.VideoHash, bool, error) {
	type outcome struct {
		vh  *vhash.VideoHash
		hit bool
	}

	v, err, _ := s.group.Do(key.Hex(), func() (interface{}, error) {
		if vh, ok, err := s.Lookup(key); err != nil {
			return nil, err
		} else if ok {
			return outcome{vh, true}, nil
		}

		fl := flock.New(s.lockPath(key))
		if err := fl.Lock(); err != nil {
			return nil, fmt.Errorf("locking cache key: %w", err)
		}
		defer func() { _ = fl.Unlock() }()

		// Another process may have finished while we waited on the lock.
		if vh, ok, err := s.Lookup(key); err != nil {
			return nil, err
		} else if ok {
			return outcome{vh, true}, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vh, err := build()
		if err != nil {
			return nil, err
		}

		data, err := encodeEntry(key, vh)
		if err != nil {
			return nil, err
		}
		if err := s.writeAtomic(s.entryPath(key), data); err != nil {
			return nil, err
		}
		s.updateIndex(key, vh.Path)
		return outcome{vh, false}, nil
	})
	if err != nil {
		return nil, false, err
	}
	o := v.(outcome)
	return o.vh, o.hit, nil
}

// Purge removes every entry, lock, and the index. Returns the number of
// entries removed.
func (s *Store) Purge() (int, error) {
	names, err := os.ReadDir(s.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, de := range names {
		name := de.Name()
		switch {
		case strings.HasSuffix(name, ".vhash"):
			if err := os.Remove(filepath.Join(s.root, name)); err == nil {
				removed++
			}
		case strings.HasSuffix(name, ".lock"), name == indexName:
			_ = os.Remove(filepath.Join(s.root, name))
		}
	}

	s.mu.Lock()
	s.index = make(map[string]indexEntry)
	s.mu.Unlock()
	return removed, nil
}

// Stats reports the number of entries and their total size on disk.
func (s *Store) Stats() (int, int64, error) {
	names, err := os.ReadDir(s.root)
	if err != nil {
		return 0, 0, err
	}

	entries := 0
	var bytes int64
	for _, de := range names {
		if !strings.HasSuffix(de.Name(), ".vhash") {
			continue
		}
		entries++
		if info, err := de.Info(); err == nil {
			bytes += info.Size()
		}
	}
	return entries, bytes, nil
}

func (s *Store) writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, "tmp-*.vhash")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dest)
}

func (s *Store) updateIndex(key Key, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A path whose contents changed gets a fresh key; retire the old entry
	// so the directory does not accumulate orphans for rewritten files.
	for k, e := range s.index {
		if e.Path == path && k != key.Hex() {
			_ = os.Remove(filepath.Join(s.root, k+".vhash"))
			delete(s.index, k)
		}
	}

	mtime := int64(0)
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime().Unix()
	}
	s.index[key.Hex()] = indexEntry{Key: key.Hex(), Path: path, MTime: mtime}
	s.saveIndexLocked()
}

func (s *Store) dropIndex(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[key.Hex()]; ok {
		delete(s.index, key.Hex())
		s.saveIndexLocked()
	}
}

// saveIndexLocked persists the index hint. Failures are ignored: the entry
// files remain authoritative.
func (s *Store) saveIndexLocked() {
	entries := make([]indexEntry, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, e)
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	tmp, err := os.CreateTemp(s.root, "tmp-index-*")
	if err != nil {
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err == nil && tmp.Close() == nil {
		_ = os.Rename(tmpName, filepath.Join(s.root, indexName))
		return
	}
	_ = tmp.Close()
	_ = os.Remove(tmpName)
}
