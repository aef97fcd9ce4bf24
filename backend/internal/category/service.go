package category

import (
	"errors"
	"fmt"
	"strings"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/backend/internal/database"
	"vincit.fi/photo-frame/common/logger"
)

const (
	BackendJson = "json"
	BackendSql  = "sql"
)

var ErrUnknownBackend = errors.New("unknown category backend")

type Options struct {
	// CategoriesDir holds the tag files of the JSON backend.
	CategoriesDir string
	// Database is the SQLite file of the SQL backend.
	Database string
	// LegacyDir is replayed into a freshly created SQL schema.
	LegacyDir string
	// Converter defaults to reading photo info from the file system.
	Converter database.PhotoConverter
}

// NewService creates the backend named by kind, "json" or "sql".
func NewService(kind string, options Options) (api.CategoryService, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case BackendJson:
		logger.Info.Printf("Using JSON category service in '%s'", options.CategoriesDir)
		return NewJsonService(options.CategoriesDir)
	case BackendSql:
		logger.Info.Printf("Using SQL category service in '%s'", options.Database)
		converter := options.Converter
		if converter == nil {
			converter = database.NewFileSystemPhotoConverter()
		}

		db := database.NewDatabase()
		if err := db.Open(options.Database); err != nil {
			return nil, fmt.Errorf("could not open database: %w", err)
		}
		service, err := NewSqlService(db, converter, options.LegacyDir)
		if err != nil {
			db.Close()
			return nil, err
		}
		return service, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnknownBackend, kind)
}
