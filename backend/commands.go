package backend

import (
	"context"
	"errors"
	"fmt"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/category"
	"vincit.fi/photo-frame/backend/internal/downloader"
	"vincit.fi/photo-frame/common/config"
	"vincit.fi/photo-frame/common/logger"
)

var ErrNotSqlBackend = errors.New("sync needs the sql backend")

// DownloadFeed runs one feed update outside of the slideshow.
func DownloadFeed(ctx context.Context, cfg *config.Config) (downloader.DownloadResult, error) {
	service, err := InitializeCategoryService(cfg)
	if err != nil {
		return downloader.DownloadResult{}, err
	}
	defer service.Shutdown()

	var tagger downloader.Tagger
	if labelService, err := InitializeLabels(ctx, cfg); err != nil {
		return downloader.DownloadResult{}, err
	} else if labelService != nil {
		tagger = labelService
	}
	return InitializeFeedDownloader(cfg, service, nil, tagger).Run(ctx)
}

// SyncLegacyCategories replays the legacy JSON categories into the
// database even when its tables already exist.
func SyncLegacyCategories(cfg *config.Config, dir string) (category.SyncResult, error) {
	if dir == "" {
		dir = cfg.Storage.LegacyCategoriesDir
	}
	service, err := InitializeCategoryService(cfg)
	if err != nil {
		return category.SyncResult{}, err
	}
	defer service.Shutdown()

	sqlService, ok := service.(*category.SqlService)
	if !ok {
		return category.SyncResult{}, fmt.Errorf("%w, configured: '%s'", ErrNotSqlBackend, cfg.Storage.Backend)
	}
	return sqlService.Sync(dir)
}

// TagWithLabels detects labels for each file and saves them as tags. A
// failing file doesn't stop the rest.
func TagWithLabels(ctx context.Context, cfg *config.Config, paths []string) (map[string][]string, error) {
	labelConfig := *cfg
	labelConfig.Labels.Enabled = true
	labelService, err := InitializeLabels(ctx, &labelConfig)
	if err != nil {
		return nil, err
	}
	service, err := InitializeCategoryService(cfg)
	if err != nil {
		return nil, err
	}
	defer service.Shutdown()

	result := map[string][]string{}
	var errs []error
	for _, path := range paths {
		tags, err := labelService.TagPhoto(ctx, service, path)
		if err != nil {
			logger.Error.Printf("Could not tag %s: %s", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		result[path] = tags
	}
	return result, errors.Join(errs...)
}

// ListPhotos returns the photos in the categories and all known categories.
func ListPhotos(cfg *config.Config, categories []string) ([]*apitype.Photo, []string, error) {
	service, err := InitializeCategoryService(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer service.Shutdown()

	photos, err := service.Load(categories...)
	if err != nil {
		return nil, nil, err
	}
	var tags []string
	if lister, ok := service.(api.CategoryLister); ok {
		if tags, err = lister.Categories(); err != nil {
			return nil, nil, err
		}
	}
	return photos, tags, nil
}
