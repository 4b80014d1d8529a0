package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nextlevelbuilder/relaygram/internal/relay"
)

// PairStore persists the relay channel pair to a JSON file. The record
// is rewritten wholesale on every mutation and must hit disk before the
// in-memory value becomes authoritative. Reads are served from a cached
// copy that is invalidated on every write.
type PairStore struct {
	mu     sync.RWMutex
	path   string
	cached *relay.Pair
}

// NewPairStore opens (or initializes) the store at path and loads the
// current record. A missing file is an empty pair, not an error.
func NewPairStore(path string) (*PairStore, error) {
	s := &PairStore{path: path}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Pair returns the current channel pair, reloading from disk when the
// cache has been invalidated. A corrupt file is logged and read as an
// empty pair so forwarding stays gated rather than crashing.
func (s *PairStore) Pair() relay.Pair {
	s.mu.RLock()
	if s.cached != nil {
		p := *s.cached
		s.mu.RUnlock()
		return p
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadLocked()
	if err != nil {
		slog.Error("failed to reload relay pair", "path", s.path, "error", err)
		return relay.Pair{}
	}
	return p
}

// SetSource overwrites the source channel id.
func (s *PairStore) SetSource(id int64) error {
	return s.update(func(p *relay.Pair) { p.SourceID = &id })
}

// SetDestination overwrites the destination channel id.
func (s *PairStore) SetDestination(id int64) error {
	return s.update(func(p *relay.Pair) { p.DestinationID = &id })
}

// update applies mutate to the latest record and persists the result.
// The cache is refreshed only after the write succeeds; on a write
// failure it is dropped so the next read goes back to disk.
func (s *PairStore) update(mutate func(*relay.Pair)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadLocked()
	if err != nil {
		return err
	}
	mutate(&p)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.cached = nil
		return fmt.Errorf("save relay pair: %w", err)
	}
	s.cached = &p
	return nil
}

// loadLocked reads the file and refreshes the cache. Caller holds s.mu.
func (s *PairStore) loadLocked() (relay.Pair, error) {
	var p relay.Pair
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return relay.Pair{}, fmt.Errorf("read relay pair: %w", err)
		}
	} else if err := json.Unmarshal(data, &p); err != nil {
		return relay.Pair{}, fmt.Errorf("parse relay pair %s: %w", s.path, err)
	}
	s.cached = &p
	return p, nil
}

// invalidate drops the cached copy; the next read reloads from disk.
func (s *PairStore) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Watch invalidates the cache whenever the record changes on disk, so
// edits made outside the process are picked up on the next read.
// Blocks until ctx is done or the watcher fails.
func (s *PairStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and atomic writers replace the
	// file, which drops a watch placed on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.invalidate()
			slog.Debug("relay pair file changed on disk, cache invalidated", "path", s.path)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("relay pair watcher error", "error", werr)
		}
	}
}
