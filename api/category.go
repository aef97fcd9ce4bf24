package api

import (
	"vincit.fi/photo-frame/api/apitype"
)

// CategoryService stores which photos belong to which categories.
//
// Tags passed to Save and categories passed to Load may be single tags or
// comma separated lists. Loading with no categories or with the "all"
// wildcard returns every stored photo.
type CategoryService interface {
	Save(path string, tags ...string) error
	Load(categories ...string) ([]*apitype.Photo, error)
	Shutdown() error
}

// DisplayRecorder is implemented by services that keep display statistics.
type DisplayRecorder interface {
	RecordDisplay(photo *apitype.Photo) error
}

// CategoryLister is implemented by services that can list their categories.
type CategoryLister interface {
	Categories() ([]string, error)
}
