package backend

import (
	"context"
	"github.com/stretchr/testify/require"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeLegacyCategories(t *testing.T, dir string) []string {
	t.Helper()
	require.Nil(t, os.MkdirAll(dir, 0755))
	photosDir := t.TempDir()
	var paths []string
	for _, name := range []string{"beach.png", "city.png"} {
		path := filepath.Join(photosDir, name)
		file, err := os.Create(path)
		require.Nil(t, err)
		require.Nil(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, 4, 4))))
		require.Nil(t, file.Close())
		paths = append(paths, path)
	}
	require.Nil(t, os.WriteFile(filepath.Join(dir, "beach.json"), []byte(`["`+paths[0]+`"]`), 0644))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "city.json"), []byte(`["`+paths[1]+`", "/gone.png"]`), 0644))
	return paths
}

func TestSyncLegacyCategories(t *testing.T) {
	a := require.New(t)
	cfg := testConfig(t, "sql")
	paths := writeLegacyCategories(t, cfg.Storage.LegacyCategoriesDir)

	result, err := SyncLegacyCategories(cfg, "")
	a.Nil(err)
	a.Equal(2, result.Saved)
	a.Equal(1, result.Failed)

	photos, tags, err := ListPhotos(cfg, []string{"city"})
	a.Nil(err)
	a.Len(photos, 1)
	a.Equal(paths[1], photos[0].Path())
	a.Equal([]string{"beach", "city"}, tags)

	t.Run("JSON backend can't sync", func(t *testing.T) {
		_, err := SyncLegacyCategories(testConfig(t, "json"), "")
		a.ErrorIs(err, ErrNotSqlBackend)
	})
}

func TestListPhotos_Json(t *testing.T) {
	a := require.New(t)
	cfg := testConfig(t, "json")

	service, err := InitializeCategoryService(cfg)
	a.Nil(err)
	a.Nil(service.Save("/p/a.jpg", "beach"))
	a.Nil(service.Save("/p/b.jpg", "all"))

	photos, tags, err := ListPhotos(cfg, nil)
	a.Nil(err)
	a.Len(photos, 2)
	a.Equal([]string{"beach"}, tags)
}

func TestDownloadFeed_Unreachable(t *testing.T) {
	a := require.New(t)
	cfg := testConfig(t, "json")

	result, err := DownloadFeed(context.Background(), cfg)

	a.Nil(err)
	a.Equal(0, result.Downloaded)
}
