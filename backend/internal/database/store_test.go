package database

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upper/db/v4"
	"testing"
	"time"
	"vincit.fi/photo-frame/api/apitype"
)

type stores struct {
	database      *Database
	converter     *StubPhotoConverter
	photos        *PhotoStore
	categories    *CategoryStore
	categoryPhoto *CategoryPhotoStore
}

func initStores(t *testing.T) *stores {
	t.Helper()
	database, err := NewInMemoryDatabase()
	require.Nil(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.Setup()
	require.Nil(t, err)

	converter := NewStubPhotoConverter()
	return &stores{
		database:      database,
		converter:     converter,
		photos:        NewPhotoStore(database, converter),
		categories:    NewCategoryStore(database),
		categoryPhoto: NewCategoryPhotoStore(database),
	}
}

func (s *stores) link(t *testing.T, path string, tag string) {
	t.Helper()
	err := s.database.DoInTransaction(func(session db.Session) error {
		categoryId, err := s.categories.FindOrAddCategory(session, tag)
		if err != nil {
			return err
		}
		photoId, err := s.photos.FindOrAddPhoto(session, path)
		if err != nil {
			return err
		}
		_, err = s.categoryPhoto.AddPhotoToCategory(session, categoryId, photoId)
		return err
	})
	require.Nil(t, err)
}

func TestCategoryStore_FindOrAddCategory(t *testing.T) {
	a := require.New(t)
	sut := initStores(t)

	session := sut.database.Session()

	first, err := sut.categories.FindOrAddCategory(session, "beach")
	a.Nil(err)
	a.Equal(int64(1), first)

	second, err := sut.categories.FindOrAddCategory(session, "sunset")
	a.Nil(err)
	a.Equal(int64(2), second)

	duplicate, err := sut.categories.FindOrAddCategory(session, "beach")
	a.Nil(err)
	a.Equal(first, duplicate)

	tags, err := sut.categories.GetCategories()
	a.Nil(err)
	a.Equal([]string{"beach", "sunset"}, tags)

	missing, err := sut.categories.FindMissing([]string{"beach", "fog", "sunset", "rain"})
	a.Nil(err)
	a.Equal([]string{"fog", "rain"}, missing)
}

func TestPhotoStore_FindOrAddPhoto(t *testing.T) {
	a := require.New(t)
	sut := initStores(t)
	session := sut.database.Session()

	id, err := sut.photos.FindOrAddPhoto(session, "/photos/sunset-beach_1.jpg")
	a.Nil(err)
	a.Equal(int64(1), id)

	again, err := sut.photos.FindOrAddPhoto(session, "/photos/sunset-beach_1.jpg")
	a.Nil(err)
	a.Equal(id, again)
	a.Equal([]string{"/photos/sunset-beach_1.jpg"}, sut.converter.Converted())

	stored, err := sut.photos.GetPhotoByPath("/photos/sunset-beach_1.jpg")
	a.Nil(err)
	a.NotNil(stored)
	a.Equal(1024, stored.Width)
	a.Equal(768, stored.Height)
	a.Equal("Sunset Beach", stored.Title.String)
	a.False(stored.TimesDisplayed.Valid)

	missing, err := sut.photos.GetPhotoByPath("/photos/none.jpg")
	a.Nil(err)
	a.Nil(missing)

	t.Run("Converter error", func(t *testing.T) {
		sut.converter.FailFor("/photos/broken.jpg", errors.New("corrupt"))
		_, err := sut.photos.FindOrAddPhoto(session, "/photos/broken.jpg")
		a.NotNil(err)

		count, err := sut.photos.GetPhotoCount()
		a.Nil(err)
		a.Equal(1, count)
	})
}

func TestPhotoStore_GetPhotosInCategories(t *testing.T) {
	a := require.New(t)
	sut := initStores(t)

	sut.link(t, "/photos/a.jpg", "beach")
	sut.link(t, "/photos/a.jpg", "sunset")
	sut.link(t, "/photos/b.jpg", "sunset")
	sut.link(t, "/photos/c.jpg", "city")

	t.Run("Union without duplicates", func(t *testing.T) {
		photos, err := sut.photos.GetPhotosInCategories([]string{"beach", "sunset"})
		a.Nil(err)
		a.Len(photos, 2)
		a.Equal("/photos/a.jpg", photos[0].Path())
		a.Equal(apitype.PhotoId(1), photos[0].Id())
		a.Equal("/photos/b.jpg", photos[1].Path())
	})

	t.Run("Unknown tag", func(t *testing.T) {
		photos, err := sut.photos.GetPhotosInCategories([]string{"fog"})
		a.Nil(err)
		a.Empty(photos)
	})

	t.Run("No tags", func(t *testing.T) {
		photos, err := sut.photos.GetPhotosInCategories(nil)
		a.Nil(err)
		a.Empty(photos)
	})

	t.Run("All", func(t *testing.T) {
		photos, err := sut.photos.GetPhotos()
		a.Nil(err)
		a.Len(photos, 3)
	})
}

func TestCategoryPhotoStore_AddPhotoToCategory(t *testing.T) {
	a := require.New(t)
	sut := initStores(t)
	session := sut.database.Session()

	categoryId, err := sut.categories.FindOrAddCategory(session, "beach")
	a.Nil(err)
	photoId, err := sut.photos.FindOrAddPhoto(session, "/photos/a.jpg")
	a.Nil(err)

	added, err := sut.categoryPhoto.AddPhotoToCategory(session, categoryId, photoId)
	a.Nil(err)
	a.True(added)

	added, err = sut.categoryPhoto.AddPhotoToCategory(session, categoryId, photoId)
	a.Nil(err)
	a.False(added)

	count, err := sut.categoryPhoto.CountLinks("beach")
	a.Nil(err)
	a.Equal(1, count)

	tags, err := sut.categoryPhoto.GetPhotoCategories(photoId)
	a.Nil(err)
	a.Equal([]string{"beach"}, tags)
}

func TestPhotoStore_MarkDisplayed(t *testing.T) {
	a := assert.New(t)
	sut := initStores(t)
	sut.link(t, "/photos/a.jpg", "beach")

	at := time.Date(2021, 5, 3, 10, 0, 0, 0, time.UTC)

	t.Run("By id", func(t *testing.T) {
		updated, err := sut.photos.MarkDisplayed(apitype.NewPersistedPhoto(1, "/photos/a.jpg", ""), at)
		a.Nil(err)
		a.True(updated)
	})

	t.Run("By path", func(t *testing.T) {
		updated, err := sut.photos.MarkDisplayed(apitype.NewPhoto("/photos/a.jpg"), at.Add(time.Hour))
		a.Nil(err)
		a.True(updated)
	})

	t.Run("Unknown", func(t *testing.T) {
		updated, err := sut.photos.MarkDisplayed(apitype.NewPhoto("/photos/none.jpg"), at)
		a.Nil(err)
		a.False(updated)
	})

	stored, err := sut.photos.GetPhotoById(1)
	if a.Nil(err) && a.NotNil(stored) {
		a.Equal(int64(2), stored.TimesDisplayed.Int64)
		a.Equal("2021-05-03T11:00:00Z", stored.DateLastDisplayed.String)
	}
}
