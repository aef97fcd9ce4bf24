package photoloader

import (
	"github.com/nfnt/resize"
	"image"
	"sync"
	"time"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

type Instance struct {
	path      string
	full      image.Image
	scaled    image.Image
	scaledFor apitype.Size
	mux       sync.Mutex
}

func NewInstance(path string) *Instance {
	return &Instance{
		path: path,
	}
}

func (s *Instance) GetFull() (image.Image, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.loadFull()
}

func (s *Instance) loadFull() (image.Image, error) {
	if s.full != nil {
		logger.Trace.Print("Use cached full image")
		return s.full, nil
	}

	full, err := Decode(s.path)
	if err != nil {
		logger.Error.Printf("Could not load image '%s': %s", s.path, err)
		return nil, err
	}
	s.full = full
	return s.full, nil
}

// GetScaled returns the image shrunk to fit inside size. Images that
// already fit are returned as is.
func (s *Instance) GetScaled(size apitype.Size) (image.Image, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	full, err := s.loadFull()
	if err != nil {
		return nil, err
	}

	bounds := full.Bounds()
	if bounds.Dx() <= size.Width() && bounds.Dy() <= size.Height() {
		return full, nil
	}

	if s.scaled != nil && s.scaledFor == size {
		logger.Trace.Print("Use cached scaled image")
		return s.scaled, nil
	}

	startTime := time.Now()
	s.scaled = resize.Thumbnail(uint(size.Width()), uint(size.Height()), full, resize.Lanczos3)
	s.scaledFor = size
	logger.Trace.Printf("Scaled '%s' in %s", s.path, time.Since(startTime))
	return s.scaled, nil
}
