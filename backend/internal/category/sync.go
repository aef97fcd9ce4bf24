package category

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
	"vincit.fi/photo-frame/common/util"
)

type legacyCategory struct {
	tag   string
	paths []string
}

// SyncResult counts the photo and tag pairs replayed from JSON files.
type SyncResult struct {
	Saved  int
	Failed int
}

// Sync replays every tag file in dir into the database. Pairs that can't
// be saved, for example because the photo is gone, are logged and skipped.
func (s *SqlService) Sync(dir string) (SyncResult, error) {
	result := SyncResult{}
	if !util.DoesFileExist(dir) {
		logger.Info.Printf("No legacy categories in '%s'", dir)
		return result, nil
	}

	categories, err := readLegacyCategories(dir)
	if err != nil {
		return result, err
	}

	logger.Info.Printf("Syncing %d categories from '%s'", len(categories), dir)
	for _, category := range categories {
		for _, path := range category.paths {
			if err := s.Save(path, category.tag); err != nil {
				logger.Warn.Printf("Could not sync '%s' with category %s: %s", path, category.tag, err)
				result.Failed++
			} else {
				result.Saved++
			}
		}
	}
	logger.Info.Printf("Synced %d photo categories (%d failed)", result.Saved, result.Failed)
	return result, nil
}

// readLegacyCategories reads the tag files in dir. The tag is the lower
// cased file name. The untagged index maps to the wildcard.
func readLegacyCategories(dir string) ([]legacyCategory, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var categories []legacyCategory
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), fileExtension) {
			continue
		}

		stem := util.FileStem(entry.Name())
		tag := strings.ToLower(stem)
		if stem == untaggedIndex {
			tag = apitype.AllCategory
		} else if strings.HasPrefix(stem, ".") {
			continue
		}

		paths, err := readEntries(filepath.Join(dir, entry.Name()))
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, err
		}
		categories = append(categories, legacyCategory{tag: tag, paths: paths})
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].tag < categories[j].tag
	})
	return categories, nil
}
