package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Mansoor88-6/activity-agent/internal/models"
)

type recordingGallery struct {
	removed [][]models.Screenshot
	cleared int
}

func (g *recordingGallery) Clear() { g.cleared++ }

func (g *recordingGallery) Remove(items []models.Screenshot) {
	g.removed = append(g.removed, items)
}

func TestGallerySyncRemovesScreenshotsOfDeletedSlots(t *testing.T) {
	original := []models.TimeSlot{
		slot("a", "e1", at(9, 0), 2),
		slot("b", "e2", at(9, 0), 0),
		slot("c", "e3", at(9, 10), 4),
	}
	gallery := &recordingGallery{}
	m := NewGallerySyncManager(gallery, zap.NewNop())

	removed := m.Sync([]string{"a", "b"}, original)

	require.Len(t, gallery.removed, 1)
	assert.Len(t, gallery.removed[0], 2)
	assert.Equal(t, original[0].Screenshots, removed)
}

func TestGallerySyncNothingToRemove(t *testing.T) {
	gallery := &recordingGallery{}
	m := NewGallerySyncManager(gallery, zap.NewNop())

	assert.Nil(t, m.Sync([]string{"b"}, []models.TimeSlot{slot("b", "e", at(9, 0), 0)}))
	assert.Empty(t, gallery.removed)
}

func TestGallerySyncClear(t *testing.T) {
	gallery := &recordingGallery{}
	NewGallerySyncManager(gallery, zap.NewNop()).Clear()
	assert.Equal(t, 1, gallery.cleared)
}

func TestMemoryGallery(t *testing.T) {
	a := slot("a", "e1", at(9, 0), 2)
	b := slot("b", "e2", at(9, 0), 1)

	g := NewMemoryGallery()
	g.Add(a.Screenshots...)
	g.Add(b.Screenshots...)
	g.Add(a.Screenshots[0])
	require.Len(t, g.Items(), 3)

	g.Remove(a.Screenshots)
	assert.Equal(t, b.Screenshots, g.Items())

	g.Clear()
	assert.Empty(t, g.Items())
}
