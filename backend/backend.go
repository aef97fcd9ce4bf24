package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/backend/internal/caster"
	"vincit.fi/photo-frame/backend/internal/category"
	"vincit.fi/photo-frame/backend/internal/downloader"
	"vincit.fi/photo-frame/backend/internal/feed"
	"vincit.fi/photo-frame/backend/internal/labels"
	"vincit.fi/photo-frame/backend/internal/monitor"
	"vincit.fi/photo-frame/backend/internal/photoloader"
	"vincit.fi/photo-frame/backend/internal/server"
	"vincit.fi/photo-frame/backend/internal/slideshow"
	"vincit.fi/photo-frame/common/config"
	"vincit.fi/photo-frame/common/event"
	"vincit.fi/photo-frame/common/logger"
)

const (
	DefaultEventBusQueueSize = 100

	photoLoaderCache = 4
	shutdownTimeout  = 10 * time.Second
)

type Brokers struct {
	Broker *event.Broker
}

func (s *Brokers) Close() {
	s.Broker.Close()
}

func InitializeEventBrokers(queueSize int) *Brokers {
	logger.Debug.Printf("Initialize event brokers...")
	brokers := &Brokers{
		Broker: event.InitBus(queueSize),
	}
	logger.Debug.Printf("Event brokers initialized")
	return brokers
}

// InitializeCategoryService opens the configured category backend.
func InitializeCategoryService(cfg *config.Config) (api.CategoryService, error) {
	return category.NewService(cfg.Storage.Backend, category.Options{
		CategoriesDir: cfg.Storage.CategoriesDir,
		Database:      cfg.Storage.Database,
		LegacyDir:     cfg.Storage.LegacyCategoriesDir,
	})
}

// InitializeLabels returns nil when label detection is disabled.
func InitializeLabels(ctx context.Context, cfg *config.Config) (*labels.Service, error) {
	if !cfg.Labels.Enabled {
		return nil, nil
	}
	detector, err := labels.NewRekognitionDetector(ctx, cfg.Labels.Region)
	if err != nil {
		return nil, err
	}
	return labels.NewService(detector, cfg.Labels.CacheDir, cfg.Labels.MinConfidence)
}

func InitializeFeedDownloader(cfg *config.Config, service api.CategoryService, sender api.Sender, tagger downloader.Tagger) *downloader.FeedDownloader {
	photoDownloader := downloader.NewDownloader(cfg.Storage.PhotosDir, service, sender, nil)
	if tagger != nil {
		photoDownloader.SetTagger(tagger)
	}
	return downloader.NewFeedDownloader(downloader.NewFeedClient(cfg.Feed, nil), photoDownloader)
}

type Services struct {
	CategoryService api.CategoryService
	PhotoLoader     *photoloader.Loader
	Feed            *feed.PhotoFeed
	Downloader      *downloader.FeedDownloader
	Display         api.Display
	Caster          *caster.Caster
	Slideshow       *slideshow.Slideshow
	Refresher       *slideshow.Refresher
	Server          *server.Server
	Monitor         *monitor.MemoryMonitor

	brokers *Brokers
}

// InitializeServices builds the frame from the config. The category
// service is owned by the returned services and closed by Close.
func InitializeServices(ctx context.Context, cfg *config.Config, brokers *Brokers) (*Services, error) {
	logger.Debug.Printf("Initialize services...")
	service, err := InitializeCategoryService(cfg)
	if err != nil {
		return nil, err
	}

	if recorder, ok := service.(api.DisplayRecorder); ok {
		err := brokers.Broker.Subscribe(api.PhotoDisplayed, func(command *api.PhotoDisplayedCommand) {
			if err := recorder.RecordDisplay(command.Photo); err != nil {
				logger.Warn.Printf("Could not record display of %s: %s", command.Photo, err)
			}
		})
		if err != nil {
			service.Shutdown()
			return nil, err
		}
	}

	var tagger downloader.Tagger
	if labelService, err := InitializeLabels(ctx, cfg); err != nil {
		logger.Warn.Printf("Label detection disabled: %s", err)
	} else if labelService != nil {
		tagger = labelService
	}

	photoFeed, err := feed.NewPhotoFeed(service, []string{cfg.Frame.Categories}, brokers.Broker)
	if err != nil {
		service.Shutdown()
		return nil, fmt.Errorf("could not load photos: %w", err)
	}

	loader := photoloader.NewLoader(photoLoaderCache)
	feedDownloader := InitializeFeedDownloader(cfg, service, brokers.Broker, tagger)
	services := &Services{
		CategoryService: service,
		PhotoLoader:     loader,
		Feed:            photoFeed,
		Downloader:      feedDownloader,
		Display:         slideshow.NewLogDisplay(),
		Refresher:       slideshow.NewRefresher(feedDownloader, photoFeed, cfg.Frame.UpdateInterval),
		brokers:         brokers,
	}

	if cfg.Cast.Enabled {
		renderer := caster.NewRenderer(loader, cfg.Cast.ShowBackground, cfg.Frame.ShowTitles)
		services.Caster = caster.NewCaster(cfg.Http.Secret, cfg.Http.Port, brokers.Broker, renderer)
		if err := services.connectCaster(ctx, cfg.Cast.Device); err != nil {
			brokers.Broker.SendError("Casting disabled", err)
		} else {
			services.Display = services.Caster
		}
	}
	services.Slideshow = slideshow.NewSlideshow(photoFeed, services.Display, brokers.Broker, cfg.Frame.Delay)

	if cfg.Http.Enabled || cfg.Cast.Enabled {
		options := server.Options{
			Port:           cfg.Http.Port,
			AllowedOrigins: cfg.Http.AllowedOrigins,
		}
		if services.Caster != nil {
			options.CastSecret = services.Caster.Secret()
			options.CastHandler = services.Caster.Handler()
		}
		services.Server = server.NewServer(options, server.Dependencies{
			Service:   service,
			Refresher: services.Refresher,
			Feed:      photoFeed,
			Slides:    services.Slideshow,
			Loader:    loader,
		})
	}

	if cfg.Frame.MonitorMemory {
		services.Monitor = monitor.NewMemoryMonitor(monitor.DefaultInterval)
	}

	logger.Debug.Printf("Services initialized")
	return services, nil
}

func (s *Services) connectCaster(ctx context.Context, device string) error {
	devices, err := s.Caster.FindDevices(ctx, caster.DefaultSearchTimeout)
	if err != nil {
		return err
	} else if len(devices) == 0 {
		return caster.ErrDeviceNotFound
	}
	return s.Caster.SelectDevice(device)
}

// Run blocks until the context is cancelled and then stops every timer
// before closing the services.
func (s *Services) Run(ctx context.Context) error {
	if s.Server != nil {
		s.Server.Start()
	}

	var wg sync.WaitGroup
	start := func(run func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}
	start(s.Slideshow.Run)
	start(s.Refresher.Run)
	if s.Monitor != nil {
		start(s.Monitor.Run)
	}

	<-ctx.Done()
	logger.Info.Printf("Shutting down")
	wg.Wait()
	return s.Close()
}

func (s *Services) Close() error {
	var errs []error
	if s.Server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, s.Server.Shutdown(shutdownCtx))
		cancel()
	}
	if s.Display != nil {
		errs = append(errs, s.Display.Close())
	}
	s.brokers.Close()
	errs = append(errs, s.CategoryService.Shutdown())
	return errors.Join(errs...)
}
