package api

import (
	"image"
	"vincit.fi/photo-frame/api/apitype"
)

type PhotoLoader interface {
	Load(photo *apitype.Photo) (image.Image, error)
	LoadScaled(photo *apitype.Photo, size apitype.Size) (image.Image, error)
}
