package api

import (
	"context"
	"vincit.fi/photo-frame/api/apitype"
)

// Display shows one photo at a time.
type Display interface {
	Show(ctx context.Context, photo *apitype.Photo) error
	Close() error
}

// Updater pulls new photos from a remote feed into local storage.
type Updater interface {
	Update(ctx context.Context) error
}
