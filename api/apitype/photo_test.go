package apitype

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCreateTitle(t *testing.T) {
	tests := []struct {
		path  string
		title string
	}{
		{path: "sunset-beach_123.jpg", title: "Sunset Beach"},
		{path: "/photos/old_town_square-2019.jpeg", title: "Old Town Square"},
		{path: "mountainLake.png", title: "Mountain Lake"},
		{path: "ROCKY_shore.JPG", title: "Rocky Shore"},
		{path: "12345.jpg", title: ""},
		{path: "river", title: "River"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.title, CreateTitle(tt.path))
		})
	}
}

func TestNewPhoto(t *testing.T) {
	a := assert.New(t)

	t.Run("Derived title", func(t *testing.T) {
		photo := NewPhoto("/photos/sunset-beach_1.jpg")
		a.Equal("Sunset Beach", photo.Title())
		a.Equal("/photos/sunset-beach_1.jpg", photo.Path())
		a.Equal("sunset-beach_1.jpg", photo.FileName())
		a.Equal(NoPhoto, photo.Id())
		a.False(photo.IsPersisted())
	})

	t.Run("Supplied title", func(t *testing.T) {
		photo := NewPhotoWithTitle("/photos/img_0001.jpg", "Grandma's Birthday")
		a.Equal("Grandma's Birthday", photo.Title())
	})

	t.Run("Blank title is derived", func(t *testing.T) {
		photo := NewPhotoWithTitle("/photos/lake.jpg", "  ")
		a.Equal("Lake", photo.Title())
	})

	t.Run("Persisted", func(t *testing.T) {
		photo := NewPersistedPhoto(12, "/photos/lake.jpg", "Lake")
		a.Equal(PhotoId(12), photo.Id())
		a.True(photo.IsPersisted())
	})

	t.Run("Subtitle copies", func(t *testing.T) {
		photo := NewPhoto("/photos/lake.jpg")
		withSubtitle := photo.WithSubtitle("3 May 2021")
		a.Equal("", photo.Subtitle())
		a.Equal("3 May 2021", withSubtitle.Subtitle())
		a.Equal(photo.Path(), withSubtitle.Path())
	})

	t.Run("Nil", func(t *testing.T) {
		var photo *Photo
		a.Equal("", photo.Path())
		a.Equal("", photo.Title())
		a.Equal(NoPhoto, photo.Id())
	})
}
