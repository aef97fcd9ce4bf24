package database

import (
	"github.com/upper/db/v4"
	"vincit.fi/photo-frame/common/logger"
)

type CategoryStore struct {
	database   *Database
	collection db.Collection
}

func NewCategoryStore(database *Database) *CategoryStore {
	return &CategoryStore{
		database: database,
	}
}

func (s *CategoryStore) getCollection() db.Collection {
	if s.collection == nil {
		s.collection = s.database.Session().Collection(CategoryTable)
	}
	return s.collection
}

func (s *CategoryStore) getCollectionForSession(session db.Session) db.Collection {
	return session.Collection(s.getCollection().Name())
}

func (s *CategoryStore) FindOrAddCategory(session db.Session, tag string) (int64, error) {
	collection := s.getCollectionForSession(session)

	var existing []Category
	if err := collection.Find(db.Cond{"tag": tag}).All(&existing); err != nil {
		return 0, err
	} else if len(existing) > 0 {
		logger.Debug.Printf("Category %s already exists with id %d", tag, existing[0].Id)
		return existing[0].Id, nil
	}

	result, err := collection.Insert(Category{Tag: tag})
	if err != nil {
		return 0, err
	}

	id := toId(result.ID())
	logger.Info.Printf("Category %s added to the database with id %d", tag, id)
	return id, nil
}

func (s *CategoryStore) GetCategories() ([]string, error) {
	var categories []Category
	if err := s.getCollection().Find().OrderBy("tag").All(&categories); err != nil {
		return nil, err
	}

	tags := make([]string, len(categories))
	for i, category := range categories {
		tags[i] = category.Tag
	}
	return tags, nil
}

// FindMissing returns the tags that have no stored category.
func (s *CategoryStore) FindMissing(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return []string{}, nil
	}

	var categories []Category
	if err := s.getCollection().Find(db.Cond{"tag IN": tags}).All(&categories); err != nil {
		return nil, err
	}

	found := map[string]bool{}
	for _, category := range categories {
		found[category.Tag] = true
	}
	missing := []string{}
	for _, tag := range tags {
		if !found[tag] {
			missing = append(missing, tag)
		}
	}
	return missing, nil
}
