package apitype

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestValidateTag(t *testing.T) {
	a := assert.New(t)

	a.Nil(ValidateTag("beach"))
	a.Nil(ValidateTag("black and white"))
	a.ErrorIs(ValidateTag("black/white"), ErrInvalidTag)
	a.ErrorIs(ValidateTag(`c:\\photos`), ErrInvalidTag)
	a.ErrorIs(ValidateTag(".untagged"), ErrInvalidTag)
}

func TestParseTags(t *testing.T) {
	a := assert.New(t)

	a.Equal([]string{"beach", "sunset"}, ParseTags("beach, sunset"))
	a.Equal([]string{"beach", "sunset"}, ParseTags("Beach", " SUNSET "))
	a.Equal([]string{"beach", "sunset", "fog"}, ParseTags("beach,sunset", "fog, beach"))
	a.Equal([]string{}, ParseTags())
	a.Equal([]string{}, ParseTags("", " , "))
}

func TestIsAll(t *testing.T) {
	a := assert.New(t)

	a.True(IsAll(nil))
	a.True(IsAll([]string{}))
	a.True(IsAll([]string{"beach", "all"}))
	a.False(IsAll([]string{"beach"}))
}

func TestWithoutAll(t *testing.T) {
	a := assert.New(t)

	a.Equal([]string{"beach"}, WithoutAll([]string{"all", "beach"}))
	a.Equal([]string{}, WithoutAll([]string{"all"}))
}
