package photoloader

import (
	"errors"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

const defaultCacheSize = 4

var (
	ErrInvalidPhoto      = errors.New("invalid photo")
	supportedFileEndings = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

func IsSupported(path string) bool {
	return supportedFileEndings[strings.ToLower(filepath.Ext(path))]
}

// Loader decodes photos and keeps the most recently used ones in memory.
type Loader struct {
	cacheSize int
	instances map[string]*Instance
	order     []string
	mux       sync.Mutex

	api.PhotoLoader
}

func NewLoader(cacheSize int) *Loader {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Loader{
		cacheSize: cacheSize,
		instances: map[string]*Instance{},
	}
}

func (s *Loader) Load(photo *apitype.Photo) (image.Image, error) {
	if photo.Path() == "" {
		return nil, ErrInvalidPhoto
	}
	return s.getInstance(photo.Path()).GetFull()
}

func (s *Loader) LoadScaled(photo *apitype.Photo, size apitype.Size) (image.Image, error) {
	if photo.Path() == "" {
		return nil, ErrInvalidPhoto
	}
	return s.getInstance(photo.Path()).GetScaled(size)
}

func (s *Loader) getInstance(path string) *Instance {
	s.mux.Lock()
	defer s.mux.Unlock()

	if instance, ok := s.instances[path]; ok {
		s.touch(path)
		return instance
	}

	instance := NewInstance(path)
	s.instances[path] = instance
	s.order = append(s.order, path)
	for len(s.order) > s.cacheSize {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.instances, evicted)
		logger.Trace.Printf("Evicted '%s' from photo cache", evicted)
	}
	return instance
}

func (s *Loader) touch(path string) {
	for i, p := range s.order {
		if p == path {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), path)
			return
		}
	}
}

// Decode opens the file and applies its EXIF orientation.
func Decode(path string) (image.Image, error) {
	startTime := time.Now()
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	logger.Trace.Printf("Decoded '%s' in %s", path, time.Since(startTime))
	return img, nil
}

// Dimensions reads the image size from the file header without decoding
// the pixels.
func Dimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return config.Width, config.Height, nil
}
