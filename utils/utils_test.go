package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"a", "b"}, "a"))
	assert.False(t, ContainsString([]string{}, "a"))
	assert.False(t, ContainsString([]string{"a", "b"}, "c"))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, -3, Min(-3, 0))
}

func TestRandomAlphabetString(t *testing.T) {
	s := RandomAlphabetString(8)
	assert.Len(t, s, 8)
	for _, r := range s {
		assert.True(t, r >= 'a' && r <= 'z')
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "city-walk", Slugify("City Walk"))
	assert.Equal(t, "go-101-for-gophers", Slugify("Go 101, for Gophers!"))
	assert.Equal(t, "trailing", Slugify("trailing---"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSlugifyKeepsUnicodeLetters(t *testing.T) {
	assert.Equal(t, "café-tour", Slugify("Café Tour"))
}
