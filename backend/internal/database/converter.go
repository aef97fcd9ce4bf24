package database

import (
	"database/sql"
	"os"
	"time"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/photoloader"
	"vincit.fi/photo-frame/common/logger"
)

const SubtitleDateFormat = "2 January 2006"

// PhotoConverter builds the row stored for a new photo.
type PhotoConverter interface {
	PathToPhoto(path string) (*Photo, error)
}

type FileSystemPhotoConverter struct {
	PhotoConverter
}

func NewFileSystemPhotoConverter() *FileSystemPhotoConverter {
	return &FileSystemPhotoConverter{}
}

func (s *FileSystemPhotoConverter) PathToPhoto(path string) (*Photo, error) {
	startTime := time.Now()
	fileStat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	width, height, err := photoloader.Dimensions(path)
	if err != nil {
		logger.Warn.Printf("Could not read dimensions of '%s'", path)
		return nil, err
	}

	photo := &Photo{
		Path:      path,
		Width:     width,
		Height:    height,
		DateAdded: fileStat.ModTime().Format(time.RFC3339),
		Title:     sql.NullString{String: apitype.CreateTitle(path), Valid: true},
	}
	if taken, ok := photoloader.CaptureTime(path); ok {
		photo.Subtitle = sql.NullString{String: taken.Format(SubtitleDateFormat), Valid: true}
	}

	logger.Trace.Printf(" - Read photo info for '%s' in %s", path, time.Since(startTime))
	return photo, nil
}

func toId(id interface{}) int64 {
	switch value := id.(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case uint64:
		return int64(value)
	}
	return 0
}

func toApiPhoto(photo *Photo) *apitype.Photo {
	apiPhoto := apitype.NewPersistedPhoto(apitype.PhotoId(photo.Id), photo.Path, photo.Title.String)
	if photo.Subtitle.Valid && photo.Subtitle.String != "" {
		return apiPhoto.WithSubtitle(photo.Subtitle.String)
	}
	return apiPhoto
}

func toApiPhotos(photos []Photo) []*apitype.Photo {
	apiPhotos := make([]*apitype.Photo, len(photos))
	for i := range photos {
		apiPhotos[i] = toApiPhoto(&photos[i])
	}
	return apiPhotos
}
