package category

import (
	"fmt"
	"github.com/upper/db/v4"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/database"
	"vincit.fi/photo-frame/common/logger"
)

// SqlService stores categories in the photos, categories and
// categories_photos tables. All calls are serialized by one lock.
type SqlService struct {
	database           *database.Database
	photoStore         *database.PhotoStore
	categoryStore      *database.CategoryStore
	categoryPhotoStore *database.CategoryPhotoStore
	now                func() time.Time
	mux                sync.Mutex

	api.CategoryService
}

// NewSqlService creates the missing tables. When any table had to be
// created, the JSON categories in legacyDir are copied in.
func NewSqlService(sqlDatabase *database.Database, converter database.PhotoConverter, legacyDir string) (*SqlService, error) {
	created, err := sqlDatabase.Setup()
	if err != nil {
		return nil, fmt.Errorf("could not set up tables: %w", err)
	}

	service := newSqlService(sqlDatabase, converter)
	if len(created) > 0 && legacyDir != "" {
		if _, err := service.Sync(legacyDir); err != nil {
			return nil, fmt.Errorf("could not sync legacy categories: %w", err)
		}
	}
	logger.Info.Printf("Setup complete")
	return service, nil
}

func newSqlService(sqlDatabase *database.Database, converter database.PhotoConverter) *SqlService {
	return &SqlService{
		database:           sqlDatabase,
		photoStore:         database.NewPhotoStore(sqlDatabase, converter),
		categoryStore:      database.NewCategoryStore(sqlDatabase),
		categoryPhotoStore: database.NewCategoryPhotoStore(sqlDatabase),
		now:                time.Now,
	}
}

// Save links the photo to every tag in one transaction. Nothing is stored
// if any step fails.
func (s *SqlService) Save(path string, tags ...string) error {
	parsed := apitype.ParseTags(tags...)
	if len(parsed) == 0 {
		logger.Debug.Printf("No tags given for '%s', nothing to save", path)
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	if s.database.IsClosed() {
		return database.ErrClosed
	}

	logger.Info.Printf("Saving %s with categories: %v", path, parsed)
	categories := apitype.WithoutAll(parsed)
	return s.database.DoInTransaction(func(session db.Session) error {
		if len(categories) == 0 {
			_, err := s.photoStore.FindOrAddPhoto(session, path)
			return err
		}

		for _, tag := range categories {
			logger.Debug.Printf("Saving %s with category: %s", path, tag)
			categoryId, err := s.categoryStore.FindOrAddCategory(session, tag)
			if err != nil {
				return err
			}
			photoId, err := s.photoStore.FindOrAddPhoto(session, path)
			if err != nil {
				return err
			}
			if _, err := s.categoryPhotoStore.AddPhotoToCategory(session, categoryId, photoId); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SqlService) Load(categories ...string) ([]*apitype.Photo, error) {
	parsed := apitype.ParseTags(categories...)

	s.mux.Lock()
	defer s.mux.Unlock()
	if s.database.IsClosed() {
		return nil, database.ErrClosed
	}

	if apitype.IsAll(parsed) {
		return s.photoStore.GetPhotos()
	}

	if missing, err := s.categoryStore.FindMissing(parsed); err != nil {
		return nil, err
	} else {
		for _, tag := range missing {
			logger.Info.Printf("Category not found: %s", tag)
		}
	}
	return s.photoStore.GetPhotosInCategories(parsed)
}

// RecordDisplay returns database.ErrClosed after Shutdown. Display events
// queued in the broker may still arrive then.
func (s *SqlService) RecordDisplay(photo *apitype.Photo) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.database.IsClosed() {
		return database.ErrClosed
	}

	updated, err := s.photoStore.MarkDisplayed(photo, s.now())
	if err != nil {
		return err
	} else if !updated {
		logger.Warn.Printf("Could not record display of '%s', photo not stored", photo.Path())
	}
	return nil
}

func (s *SqlService) Categories() ([]string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.database.IsClosed() {
		return nil, database.ErrClosed
	}
	return s.categoryStore.GetCategories()
}

func (s *SqlService) Shutdown() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.database.Close()
}
