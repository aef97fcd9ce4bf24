package category

import (
	"database/sql"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/database"
)

type StubPhotoConverter struct {
	database.PhotoConverter

	mux       sync.Mutex
	failPaths map[string]error
}

func NewStubPhotoConverter() *StubPhotoConverter {
	return &StubPhotoConverter{failPaths: map[string]error{}}
}

func (s *StubPhotoConverter) PathToPhoto(path string) (*database.Photo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if err, ok := s.failPaths[path]; ok {
		return nil, err
	}
	return &database.Photo{
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

func countRows(t *testing.T, sut *SqlService, table string) int {
	t.Helper()
	row, err := sut.database.Session().SQL().QueryRow("SELECT count(1) FROM " + table)
	require.Nil(t, err)
	count := 0
	require.Nil(t, row.Scan(&count))
	return count
}

func countLinks(t *testing.T, sut *SqlService, tag string) int {
	t.Helper()
	row, err := sut.database.Session().SQL().QueryRow(`
		SELECT count(1) FROM categories_photos cp
		JOIN categories c ON cp.category_id = c.id
		WHERE c.tag = ?`, tag)
	require.Nil(t, err)
	count := 0
	require.Nil(t, row.Scan(&count))
	return count
}

func photoCategories(t *testing.T, sut *SqlService, photoId int64) []string {
	t.Helper()
	rows, err := sut.database.Session().SQL().Query(`
		SELECT c.tag FROM categories c
		JOIN categories_photos cp ON cp.category_id = c.id
		WHERE cp.photo_id = ?
		ORDER BY c.tag`, photoId)
	require.Nil(t, err)
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		require.Nil(t, rows.Scan(&tag))
		tags = append(tags, tag)
	}
	require.Nil(t, rows.Err())
	return tags
}
