package apitype

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

type PhotoId int64

const NoPhoto = PhotoId(0)

// Photo is a file on disk and the title it is displayed with. The image
// itself is decoded on demand by the photo loader.
type Photo struct {
	id       PhotoId
	path     string
	title    string
	subtitle string
}

func NewPhoto(path string) *Photo {
	return NewPhotoWithTitle(path, "")
}

func NewPhotoWithTitle(path string, title string) *Photo {
	return NewPersistedPhoto(NoPhoto, path, title)
}

func NewPersistedPhoto(id PhotoId, path string, title string) *Photo {
	if strings.TrimSpace(title) == "" {
		title = CreateTitle(path)
	}
	return &Photo{
		id:    id,
		path:  path,
		title: title,
	}
}

func (s *Photo) WithSubtitle(subtitle string) *Photo {
	photo := *s
	photo.subtitle = subtitle
	return &photo
}

func (s *Photo) Id() PhotoId {
	if s != nil {
		return s.id
	}
	return NoPhoto
}

func (s *Photo) IsPersisted() bool {
	return s.Id() != NoPhoto
}

func (s *Photo) Path() string {
	if s != nil {
		return s.path
	}
	return ""
}

func (s *Photo) FileName() string {
	return filepath.Base(s.Path())
}

func (s *Photo) Title() string {
	if s != nil {
		return s.title
	}
	return ""
}

func (s *Photo) Subtitle() string {
	if s != nil {
		return s.subtitle
	}
	return ""
}

func (s *Photo) String() string {
	if s == nil {
		return "Photo{nil}"
	}
	return fmt.Sprintf("%s at %s", s.title, s.path)
}

// CreateTitle turns a file name like "old_town-square2019.jpg" into
// "Old Town Square".
func CreateTitle(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var builder strings.Builder
	var previous rune
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			continue
		case r == '_' || r == '-' || r == '.':
			builder.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(previous):
			builder.WriteRune(' ')
			builder.WriteRune(r)
		default:
			builder.WriteRune(r)
		}
		previous = r
	}

	words := strings.Fields(builder.String())
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
