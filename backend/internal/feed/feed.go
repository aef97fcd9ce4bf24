package feed

import (
	"errors"
	"math/rand"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

// ErrNoPhotos is returned by Next when the feed is empty. The slideshow
// treats it as the signal to skip the slide.
var ErrNoPhotos = errors.New("no photos in feed")

// PhotoFeed is the materialized list of photos in the selected categories.
type PhotoFeed struct {
	service    api.CategoryService
	categories []string
	sender     api.Sender
	photos     []*apitype.Photo
	mux        sync.RWMutex

	random    *rand.Rand
	randomMux sync.Mutex
}

func NewPhotoFeed(service api.CategoryService, categories []string, sender api.Sender) (*PhotoFeed, error) {
	return newPhotoFeed(service, categories, sender, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newPhotoFeed(service api.CategoryService, categories []string, sender api.Sender, random *rand.Rand) (*PhotoFeed, error) {
	feed := &PhotoFeed{
		service:    service,
		categories: apitype.ParseTags(categories...),
		sender:     sender,
		photos:     []*apitype.Photo{},
		random:     random,
	}
	if err := feed.Refresh(); err != nil {
		return nil, err
	}
	return feed, nil
}

func (s *PhotoFeed) Categories() []string {
	return append([]string{}, s.categories...)
}

// Refresh reloads the photos from the category service.
func (s *PhotoFeed) Refresh() error {
	photos, err := s.service.Load(s.categories...)
	if err != nil {
		return err
	}

	s.mux.Lock()
	oldCount := len(s.photos)
	s.photos = photos
	s.mux.Unlock()

	logger.Info.Printf("Feed refreshed: %d -> %d photos", oldCount, len(photos))
	if s.sender != nil {
		s.sender.SendCommandToTopic(api.FeedRefreshed, &api.FeedRefreshedCommand{
			OldCount: oldCount,
			NewCount: len(photos),
		})
	}
	return nil
}

func (s *PhotoFeed) HasPhotos() bool {
	return s.Count() > 0
}

func (s *PhotoFeed) Count() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.photos)
}

// Next picks a random photo and announces it as displayed.
func (s *PhotoFeed) Next() (*apitype.Photo, error) {
	s.mux.RLock()
	count := len(s.photos)
	if count == 0 {
		s.mux.RUnlock()
		return nil, ErrNoPhotos
	}
	photo := s.photos[s.intn(count)]
	s.mux.RUnlock()

	logger.Debug.Printf("Next photo: %s", photo)
	if s.sender != nil {
		s.sender.SendCommandToTopic(api.PhotoDisplayed, &api.PhotoDisplayedCommand{Photo: photo})
	}
	return photo, nil
}

// NextX returns up to count distinct photos in random order.
func (s *PhotoFeed) NextX(count int) []*apitype.Photo {
	if count <= 0 {
		return []*apitype.Photo{}
	}

	s.mux.RLock()
	defer s.mux.RUnlock()

	if count > len(s.photos) {
		count = len(s.photos)
	}
	result := make([]*apitype.Photo, count)
	for i, index := range s.perm(len(s.photos))[:count] {
		result[i] = s.photos[index]
	}
	return result
}

func (s *PhotoFeed) intn(n int) int {
	s.randomMux.Lock()
	defer s.randomMux.Unlock()
	return s.random.Intn(n)
}

func (s *PhotoFeed) perm(n int) []int {
	s.randomMux.Lock()
	defer s.randomMux.Unlock()
	return s.random.Perm(n)
}
