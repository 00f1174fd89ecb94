package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storyspine/storyspine-server/internal/config"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/search"
)

// ReaderIndexHandle wraps the reader index with shutdown capability.
type ReaderIndexHandle struct {
	*search.ReaderIndex
	created bool
}

// Shutdown implements do.Shutdownable.
func (h *ReaderIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideReaderIndex provides the Bleve reader discovery index.
func ProvideReaderIndex(i do.Injector) (*ReaderIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, created, err := search.NewReaderIndex(search.Options{
		DataPath: cfg.Data.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.Count()
	log.Info("Reader index initialized", "documents", docCount, "created", created)

	return &ReaderIndexHandle{ReaderIndex: index, created: created}, nil
}

// TriggerReaderReindexIfNeeded rebuilds the reader index in the background
// when it was just created or its document count disagrees with the users
// table.
func TriggerReaderReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	users, err := storeHandle.ListUsers(context.Background())
	if err != nil {
		log.Warn("Could not list users for reader index check", "error", err)
		return
	}

	docCount, _ := indexHandle.Count()
	if !indexHandle.created && docCount == uint64(len(users)) {
		return
	}
	if len(users) == 0 {
		return
	}

	log.Info("Reader index out of date, triggering reindex",
		"documents", docCount,
		"users", len(users),
	)

	go func() {
		if err := indexHandle.Rebuild(users); err != nil {
			log.Error("Reader reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.Count()
		log.Info("Reader reindex completed", "documents", count)
	}()
}
