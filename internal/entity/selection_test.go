package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionToggle(t *testing.T) {
	s := NewSelectionSet()

	s.Toggle("c1")
	s.Toggle("c2")
	assert.True(t, s.Has("c1"))
	assert.Equal(t, []string{"c1", "c2"}, s.IDs())

	s.Toggle("c1")
	assert.False(t, s.Has("c1"))
	assert.Equal(t, []string{"c2"}, s.IDs())
}

func TestToggleAllTwiceRestoresEmptySelection(t *testing.T) {
	s := NewSelectionSet()
	page := []string{"c1", "c2", "c3"}

	s.ToggleAll(page)
	assert.ElementsMatch(t, page, s.IDs())

	s.ToggleAll(page)
	assert.Empty(t, s.IDs())
}

func TestToggleAllWithPartialSelectionSelectsWholePage(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("c2")
	s.Toggle("other-page")

	s.ToggleAll([]string{"c1", "c2", "c3"})

	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, s.IDs())
	assert.False(t, s.Has("other-page"))
}

func TestToggleAllOnEmptyPage(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("c1")

	s.ToggleAll(nil)

	assert.Empty(t, s.IDs())
}

func TestIDsReturnsCopy(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("c1")

	ids := s.IDs()
	ids[0] = "mutated"

	assert.True(t, s.Has("c1"))
}
