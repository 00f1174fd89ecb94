package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// ReaderIndex wraps a Bleve index of readers.
//
// All public methods are safe for concurrent use; Rebuild takes the write lock.
type ReaderIndex struct {
	index  bleve.Index
	path   string // Empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the reader index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Uses a discard logger if nil
}

// mappingVersion is bumped whenever buildIndexMapping or the indexed document
// changes so stale on-disk indexes are rebuilt at startup.
const mappingVersion = "2"

// NewReaderIndex opens the index under opts.DataPath, recreating it when it
// is missing, unreadable or built with an older mapping. The returned bool
// reports whether the index is new and needs a full reindex.
func NewReaderIndex(opts Options) (*ReaderIndex, bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create memory index: %w", err)
		}
		return &ReaderIndex{index: index, logger: logger}, true, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, false, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "readers.bleve")
	versionPath := filepath.Join(opts.DataPath, "readers.version")

	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		if readErr == nil && string(version) == mappingVersion {
			index, openErr := bleve.Open(indexPath)
			if openErr == nil {
				logger.Info("opened reader index", "path", indexPath)
				return &ReaderIndex{index: index, path: indexPath, logger: logger}, false, nil
			}
			logger.Warn("failed to open reader index, will recreate", "path", indexPath, "error", openErr)
		} else {
			logger.Info("reader index mapping changed, will rebuild",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, false, fmt.Errorf("remove old index: %w", err)
		}
	}

	index, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, false, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write reader index version", "error", err)
	}
	logger.Info("created reader index", "path", indexPath, "mapping_version", mappingVersion)

	return &ReaderIndex{index: index, path: indexPath, logger: logger}, true, nil
}

// Close closes the index.
func (s *ReaderIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexUser adds or replaces one reader. Soft-deleted users are removed.
func (s *ReaderIndex) IndexUser(u *domain.User) error {
	if u.IsDeleted() {
		return s.DeleteUser(u.ID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(u.ID, ReaderFromUser(u).ToMap())
}

// IndexUsers indexes readers in batches of 500.
func (s *ReaderIndex) IndexUsers(users []*domain.User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500
	for start := 0; start < len(users); start += batchSize {
		end := min(start+batchSize, len(users))

		batch := s.index.NewBatch()
		for _, u := range users[start:end] {
			if u.IsDeleted() {
				batch.Delete(u.ID)
				continue
			}
			if err := batch.Index(u.ID, ReaderFromUser(u).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", u.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteUser removes a reader.
func (s *ReaderIndex) DeleteUser(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Count returns the number of indexed readers.
func (s *ReaderIndex) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and reindexes users.
func (s *ReaderIndex) Rebuild(users []*domain.User) error {
	s.mu.Lock()
	if err := s.index.Close(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.mu.Unlock()

	if err := s.IndexUsers(users); err != nil {
		return err
	}
	s.logger.Info("rebuilt reader index", "readers", len(users))
	return nil
}
