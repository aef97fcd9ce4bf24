package category

import (
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func TestNewService(t *testing.T) {
	a := require.New(t)
	dir := t.TempDir()
	options := Options{
		CategoriesDir: filepath.Join(dir, "categories"),
		Database:      filepath.Join(dir, "db", "tags.db"),
		Converter:     NewStubPhotoConverter(),
	}

	t.Run("json", func(t *testing.T) {
		service, err := NewService(" JSON ", options)
		a.Nil(err)
		a.IsType(&JsonService{}, service)
		a.DirExists(options.CategoriesDir)
	})

	t.Run("sql", func(t *testing.T) {
		service, err := NewService("Sql", options)
		a.Nil(err)
		a.IsType(&SqlService{}, service)
		a.FileExists(options.Database)
		a.Nil(service.Shutdown())
	})

	t.Run("Unknown", func(t *testing.T) {
		service, err := NewService("mongo", options)
		a.ErrorIs(err, ErrUnknownBackend)
		a.Nil(service)
	})
}
