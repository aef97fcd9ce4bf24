package database

import (
	"database/sql"
	"github.com/upper/db/v4"
	"sync"
	"vincit.fi/photo-frame/api/apitype"
)

// StubPhotoConverter builds rows without touching the file system.
type StubPhotoConverter struct {
	PhotoConverter

	mux       sync.Mutex
	converted []string
	failPaths map[string]error
}

func NewStubPhotoConverter() *StubPhotoConverter {
	return &StubPhotoConverter{failPaths: map[string]error{}}
}

func (s *StubPhotoConverter) PathToPhoto(path string) (*Photo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if err, ok := s.failPaths[path]; ok {
		return nil, err
	}
	s.converted = append(s.converted, path)
	return &Photo{
		Path:      path,
		Width:     1024,
		Height:    768,
		DateAdded: "2021-05-03T10:00:00Z",
		Title:     sql.NullString{String: apitype.CreateTitle(path), Valid: true},
	}, nil
}

func (s *StubPhotoConverter) FailFor(path string, err error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.failPaths[path] = err
}

func (s *StubPhotoConverter) Converted() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string{}, s.converted...)
}

func (s *PhotoStore) GetPhotoById(id apitype.PhotoId) (*Photo, error) {
	var photos []Photo
	if err := s.getCollection().Find(db.Cond{"id": id}).All(&photos); err != nil {
		return nil, err
	} else if len(photos) == 0 {
		return nil, nil
	}
	return &photos[0], nil
}

func (s *PhotoStore) GetPhotoCount() (int, error) {
	count, err := s.getCollection().Find().Count()
	return int(count), err
}

func (s *CategoryPhotoStore) GetPhotoCategories(photoId int64) ([]string, error) {
	var categories []Category
	err := s.database.Session().SQL().
		Select("categories.id", "categories.tag").
		From(CategoryTable).
		Join(CategoryPhotoTable).On("categories_photos.category_id = categories.id").
		Where("categories_photos.photo_id", photoId).
		OrderBy("categories.tag").
		All(&categories)
	if err != nil {
		return nil, err
	}

	tags := make([]string, len(categories))
	for i, category := range categories {
		tags[i] = category.Tag
	}
	return tags, nil
}

func (s *CategoryPhotoStore) CountLinks(tag string) (int, error) {
	var result struct {
		Count int `db:"c"`
	}
	err := s.database.Session().SQL().
		Select(db.Raw("count(1) AS c")).
		From(CategoryPhotoTable).
		Join(CategoryTable).On("categories_photos.category_id = categories.id").
		Where("categories.tag", tag).
		One(&result)
	return result.Count, err
}
