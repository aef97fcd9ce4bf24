package slideshow

import (
	"context"
	"errors"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/feed"
	"vincit.fi/photo-frame/common/logger"
)

// Feed is the part of the photo feed the slideshow needs.
type Feed interface {
	Next() (*apitype.Photo, error)
	Refresh() error
}

// Slideshow shows the next photo of the feed on every tick.
type Slideshow struct {
	feed    Feed
	display api.Display
	sender  api.Sender
	delay   time.Duration

	current *apitype.Photo
	mux     sync.RWMutex
}

func NewSlideshow(photoFeed Feed, display api.Display, sender api.Sender, delay time.Duration) *Slideshow {
	return &Slideshow{
		feed:    photoFeed,
		display: display,
		sender:  sender,
		delay:   delay,
	}
}

// Run shows the first photo immediately and then one per delay until the
// context is cancelled.
func (s *Slideshow) Run(ctx context.Context) {
	logger.Info.Printf("Starting slideshow with delay of %s", s.delay)
	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	s.ShowNext(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("Slideshow stopped")
			return
		case <-ticker.C:
			s.ShowNext(ctx)
		}
	}
}

// ShowNext shows the next photo. It returns false when nothing was shown.
func (s *Slideshow) ShowNext(ctx context.Context) bool {
	photo, err := s.feed.Next()
	if errors.Is(err, feed.ErrNoPhotos) {
		logger.Warn.Printf("No photos to show")
		return false
	} else if err != nil {
		logger.Error.Printf("Could not get next photo: %s", err)
		return false
	}

	if err := s.display.Show(ctx, photo); err != nil {
		if s.sender != nil {
			s.sender.SendError("Could not show "+photo.Path(), err)
		}
		return false
	}

	s.mux.Lock()
	s.current = photo
	s.mux.Unlock()
	if s.sender != nil {
		s.sender.SendCommandToTopic(api.SlideChanged, &api.PhotoDisplayedCommand{Photo: photo})
	}
	return true
}

func (s *Slideshow) Current() *apitype.Photo {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.current
}

// Refresher pulls new photos and reloads the feed on every tick.
type Refresher struct {
	updater  api.Updater
	feed     Feed
	interval time.Duration
}

func NewRefresher(updater api.Updater, photoFeed Feed, interval time.Duration) *Refresher {
	return &Refresher{
		updater:  updater,
		feed:     photoFeed,
		interval: interval,
	}
}

func (s *Refresher) Run(ctx context.Context) {
	if s.interval <= 0 {
		logger.Info.Printf("Feed refresh disabled")
		return
	}
	logger.Info.Printf("Refreshing feed every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("Refresher stopped")
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs the update and reloads the feed even when the update fails.
func (s *Refresher) Refresh(ctx context.Context) error {
	var updateErr error
	if s.updater != nil {
		if updateErr = s.updater.Update(ctx); updateErr != nil {
			logger.Error.Printf("Could not update photos: %s", updateErr)
		}
	}
	if err := s.feed.Refresh(); err != nil {
		logger.Error.Printf("Could not refresh feed: %s", err)
		return err
	}
	return updateErr
}

// LogDisplay only logs the photos it is given.
type LogDisplay struct {
	api.Display
}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

func (s *LogDisplay) Show(ctx context.Context, photo *apitype.Photo) error {
	if photo.Subtitle() != "" {
		logger.Info.Printf("Showing '%s' (%s): %s", photo.Title(), photo.Subtitle(), photo.Path())
	} else {
		logger.Info.Printf("Showing '%s': %s", photo.Title(), photo.Path())
	}
	return nil
}

func (s *LogDisplay) Close() error {
	return nil
}
