package database

import (
	"github.com/upper/db/v4"
	"vincit.fi/photo-frame/common/logger"
)

type CategoryPhotoStore struct {
	database   *Database
	collection db.Collection
}

func NewCategoryPhotoStore(database *Database) *CategoryPhotoStore {
	return &CategoryPhotoStore{
		database: database,
	}
}

func (s *CategoryPhotoStore) getCollection() db.Collection {
	if s.collection == nil {
		s.collection = s.database.Session().Collection(CategoryPhotoTable)
	}
	return s.collection
}

func (s *CategoryPhotoStore) getCollectionForSession(session db.Session) db.Collection {
	return session.Collection(s.getCollection().Name())
}

// AddPhotoToCategory links the photo to the category unless the link
// exists already. Returns true when a new link was added.
func (s *CategoryPhotoStore) AddPhotoToCategory(session db.Session, categoryId int64, photoId int64) (bool, error) {
	collection := s.getCollectionForSession(session)
	cond := db.Cond{"category_id": categoryId, "photo_id": photoId}

	if exists, err := collection.Find(cond).Exists(); err != nil {
		return false, err
	} else if exists {
		logger.Debug.Printf("Category mapping for category %d and photo %d already exists", categoryId, photoId)
		return false, nil
	}

	if _, err := collection.Insert(CategoryPhoto{CategoryId: categoryId, PhotoId: photoId}); err != nil {
		return false, err
	}
	logger.Debug.Printf("Category mapping added for category %d and photo %d", categoryId, photoId)
	return true, nil
}
