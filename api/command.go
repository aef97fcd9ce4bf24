package api

import (
	"vincit.fi/photo-frame/api/apitype"
)

type ErrorCommand struct {
	Message string
}

type PhotoDisplayedCommand struct {
	Photo *apitype.Photo
}

type PhotosDownloadedCommand struct {
	Downloaded int
	Skipped    int
	Failed     int
}

type FeedRefreshedCommand struct {
	OldCount int
	NewCount int
}
