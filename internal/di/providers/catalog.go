package providers

import (
	"github.com/samber/do/v2"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/catalog/cache"
	"github.com/storyspine/storyspine-server/internal/catalog/googlebooks"
	"github.com/storyspine/storyspine-server/internal/config"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/media/covers"
)

// CatalogHandle is the book catalog the services use, cached when enabled.
type CatalogHandle struct {
	catalog.Catalog
	client *googlebooks.Client
	cache  *cache.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.client.Close()
	if h.cache != nil {
		return h.cache.Close()
	}
	return nil
}

// ProvideCatalog provides the Google Books client behind the volume cache.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := googlebooks.New(googlebooks.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		APIKey:     cfg.Catalog.APIKey,
		Timeout:    cfg.Catalog.Timeout,
		MaxResults: cfg.Catalog.MaxResults,
		RPS:        cfg.Catalog.RPS,
		Burst:      cfg.Catalog.Burst,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	if cfg.Catalog.CacheTTL == 0 {
		log.Info("Catalog cache disabled", "catalog_url", cfg.Catalog.BaseURL)
		return &CatalogHandle{Catalog: client, client: client}, nil
	}

	cached, err := cache.Open(cfg.Data.CatalogCachePath(), client, cfg.Catalog.CacheTTL, log.Logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	log.Info("Catalog ready",
		"catalog_url", cfg.Catalog.BaseURL,
		"cache_path", cfg.Data.CatalogCachePath(),
		"cache_ttl", cfg.Catalog.CacheTTL,
	)

	return &CatalogHandle{Catalog: cached, client: client, cache: cached}, nil
}

// ProvideCoverHasher provides the cover BlurHash encoder.
func ProvideCoverHasher(i do.Injector) (*covers.Hasher, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return covers.NewHasher(coverHashTimeout, log.Logger), nil
}
