package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"gagyebu/internal/storage"
)

// Store persists every key in a single JSON object on disk. The whole file is
// rewritten on each Set through a temp file + rename so a crash never leaves
// a half-written document behind.
//
// Several processes may share the file (server, worker, ledgerctl). Reads
// reload the document when its size or mtime changed, and Set reloads it
// under an exclusive flock on "<path>.lock" before writing.
type Store struct {
	path     string
	lockPath string

	mu      sync.Mutex
	items   map[string]string
	modTime time.Time
	size    int64
}

var _ storage.KV = (*Store)(nil)

// NewStore opens (or creates on first write) the JSON document at path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:     path,
		lockPath: path + ".lock",
		items:    make(map[string]string),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	unlock, err := s.lock(unix.LOCK_SH)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := s.load(true); err != nil {
		return nil, err
	}
	return s, nil
}

// lock takes an advisory flock of the given kind on the sidecar lock file.
// The data file itself is replaced by rename, so it cannot carry the lock.
func (s *Store) lock(how int) (func(), error) {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock ledger file: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// load rereads the document when force is set or the file changed on disk
// since the last read. Must be called with mu held.
func (s *Store) load(force bool) error {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		s.items = make(map[string]string)
		s.modTime, s.size = time.Time{}, 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat ledger file: %w", err)
	}
	if !force && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}
	items := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode ledger file %s: %w", s.path, err)
		}
	}
	s.items = items
	s.modTime, s.size = info.ModTime(), info.Size()
	return nil
}

func (s *Store) refresh() error {
	unlock, err := s.lock(unix.LOCK_SH)
	if err != nil {
		return err
	}
	defer unlock()
	return s.load(false)
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return "", false, err
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(unix.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.load(true); err != nil {
		return err
	}
	prev, existed := s.items[key]
	s.items[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flush must be called with mu and the exclusive file lock held.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger file: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime, s.size = info.ModTime(), info.Size()
	}
	return nil
}
