package database

import (
	"github.com/upper/db/v4"
	"time"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

type PhotoStore struct {
	database   *Database
	collection db.Collection
	converter  PhotoConverter
}

func NewPhotoStore(database *Database, converter PhotoConverter) *PhotoStore {
	return &PhotoStore{
		database:  database,
		converter: converter,
	}
}

func (s *PhotoStore) getCollection() db.Collection {
	if s.collection == nil {
		s.collection = s.database.Session().Collection(PhotoTable)
	}
	return s.collection
}

func (s *PhotoStore) getCollectionForSession(session db.Session) db.Collection {
	return session.Collection(s.getCollection().Name())
}

// FindOrAddPhoto returns the id of the photo stored with the path, adding a
// new row when there is none.
func (s *PhotoStore) FindOrAddPhoto(session db.Session, path string) (int64, error) {
	collection := s.getCollectionForSession(session)

	var existing []Photo
	if err := collection.Find(db.Cond{"img_path": path}).OrderBy("id").All(&existing); err != nil {
		return 0, err
	} else if len(existing) > 0 {
		logger.Debug.Printf("Photo %s is already in the database with id %d", path, existing[0].Id)
		return existing[0].Id, nil
	}

	photo, err := s.converter.PathToPhoto(path)
	if err != nil {
		return 0, err
	}
	result, err := collection.Insert(photo)
	if err != nil {
		return 0, err
	}

	id := toId(result.ID())
	logger.Info.Printf("Photo %s added to the database with id %d", path, id)
	return id, nil
}

func (s *PhotoStore) GetPhotoByPath(path string) (*Photo, error) {
	var photos []Photo
	if err := s.getCollection().Find(db.Cond{"img_path": path}).OrderBy("id").All(&photos); err != nil {
		return nil, err
	} else if len(photos) == 0 {
		return nil, nil
	}
	return &photos[0], nil
}

func (s *PhotoStore) GetPhotos() ([]*apitype.Photo, error) {
	var photos []Photo
	if err := s.getCollection().Find().OrderBy("id").All(&photos); err != nil {
		return nil, err
	}
	return toApiPhotos(photos), nil
}

// GetPhotosInCategories returns each photo that belongs to at least one of
// the tags. A photo in several of the tags is returned once.
func (s *PhotoStore) GetPhotosInCategories(tags []string) ([]*apitype.Photo, error) {
	if len(tags) == 0 {
		return []*apitype.Photo{}, nil
	}

	var photos []Photo
	err := s.database.Session().SQL().
		SelectFrom(PhotoTable).
		Where(`id IN (
			SELECT cp.photo_id FROM categories_photos cp
			WHERE cp.category_id IN (
				SELECT c.id FROM categories c WHERE c.tag IN ?
			)
		)`, tags).
		OrderBy("id").
		All(&photos)
	if err != nil {
		return nil, err
	}
	return toApiPhotos(photos), nil
}

// MarkDisplayed bumps the display counter of the photo. Photos without an
// id are matched by path.
func (s *PhotoStore) MarkDisplayed(photo *apitype.Photo, at time.Time) (bool, error) {
	query := `UPDATE photos
		SET times_displayed = COALESCE(times_displayed, 0) + 1, date_last_displayed = ?
		WHERE `
	var arg interface{}
	if photo.IsPersisted() {
		query += "id = ?"
		arg = int64(photo.Id())
	} else {
		query += "img_path = ?"
		arg = photo.Path()
	}

	result, err := s.database.Session().SQL().Exec(query, at.Format(time.RFC3339), arg)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
