package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertConsistent(t *testing.T, s *SelectionManager, ids []string) {
	t.Helper()
	count := 0
	for _, id := range ids {
		if s.IsSelected(id) {
			count++
		}
	}
	assert.Equal(t, count, s.SelectedCount())
	assert.Equal(t, count == len(ids) && len(ids) > 0, s.AllSelected())
}

func TestSelectionToggle(t *testing.T) {
	ids := []string{"a", "b", "c"}
	s := NewSelectionManager()
	s.Reset(ids)

	assert.Empty(t, s.SelectedIDs())
	assertConsistent(t, s, ids)

	assert.True(t, s.Toggle("c"))
	assert.True(t, s.Toggle("a"))
	assert.Equal(t, []string{"a", "c"}, s.SelectedIDs())
	assertConsistent(t, s, ids)

	assert.True(t, s.Toggle("a"))
	assert.Equal(t, []string{"c"}, s.SelectedIDs())
	assertConsistent(t, s, ids)

	assert.False(t, s.Toggle("missing"))
	assertConsistent(t, s, ids)
}

func TestSelectionToggleAll(t *testing.T) {
	ids := []string{"a", "b"}
	s := NewSelectionManager()
	s.Reset(ids)
	s.Toggle("a")

	s.ToggleAll()
	assert.True(t, s.AllSelected())
	assert.Equal(t, ids, s.SelectedIDs())

	s.ToggleAll()
	assert.False(t, s.AllSelected())
	assert.Empty(t, s.SelectedIDs())
	assertConsistent(t, s, ids)
}

func TestSelectionEmptyNeverAllSelected(t *testing.T) {
	s := NewSelectionManager()
	s.Reset(nil)
	s.ToggleAll()

	assert.False(t, s.AllSelected())
	assert.Equal(t, 0, s.SelectedCount())
}

func TestSelectionResetClears(t *testing.T) {
	s := NewSelectionManager()
	s.Reset([]string{"a", "b"})
	s.ToggleAll()

	s.Reset([]string{"b", "c", "b"})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.SelectedCount())
	assert.False(t, s.IsSelected("a"))
	assert.False(t, s.Toggle("a"))
}
