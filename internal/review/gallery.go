package review

import (
	"sync"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// Gallery is the screenshot viewer kept in step with deletions
type Gallery interface {
	Clear()
	Remove(items []models.Screenshot)
}

// MemoryGallery is an ordered in-process gallery keyed by thumb and full URL
type MemoryGallery struct {
	mu    sync.Mutex
	items []models.Screenshot
}

func NewMemoryGallery() *MemoryGallery {
	return &MemoryGallery{}
}

// Add appends items not already present
func (g *MemoryGallery) Add(items ...models.Screenshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	present := make(map[string]struct{}, len(g.items))
	for _, item := range g.items {
		present[item.Key()] = struct{}{}
	}
	for _, item := range items {
		if _, ok := present[item.Key()]; ok {
			continue
		}
		present[item.Key()] = struct{}{}
		g.items = append(g.items, item)
	}
}

func (g *MemoryGallery) Remove(items []models.Screenshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	drop := make(map[string]struct{}, len(items))
	for _, item := range items {
		drop[item.Key()] = struct{}{}
	}
	kept := g.items[:0]
	for _, item := range g.items {
		if _, ok := drop[item.Key()]; !ok {
			kept = append(kept, item)
		}
	}
	g.items = kept
}

func (g *MemoryGallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = nil
}

// Items returns a copy of the gallery contents
func (g *MemoryGallery) Items() []models.Screenshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Screenshot, len(g.items))
	copy(out, g.items)
	return out
}

// GallerySyncManager removes the screenshots of deleted time slots from
// the gallery
type GallerySyncManager struct {
	gallery Gallery
	logger  *zap.Logger
}

func NewGallerySyncManager(gallery Gallery, logger *zap.Logger) *GallerySyncManager {
	return &GallerySyncManager{gallery: gallery, logger: logger}
}

// Sync removes every screenshot of the deleted slots. original must be
// the unfiltered list loaded before bucketing, since collision resolution
// hides some slots from the buckets. It returns the removed items.
func (m *GallerySyncManager) Sync(deletedIDs []string, original []models.TimeSlot) []models.Screenshot {
	deleted := make(map[string]struct{}, len(deletedIDs))
	for _, id := range deletedIDs {
		deleted[id] = struct{}{}
	}

	var items []models.Screenshot
	for _, slot := range original {
		if _, ok := deleted[slot.ID]; ok {
			items = append(items, slot.Screenshots...)
		}
	}
	if len(items) == 0 {
		return nil
	}

	m.gallery.Remove(items)
	m.logger.Debug("Gallery items removed",
		zap.Int("slot_count", len(deletedIDs)),
		zap.Int("item_count", len(items)),
	)
	return items
}

// Clear empties the gallery when the reviewer navigates away
func (m *GallerySyncManager) Clear() {
	m.gallery.Clear()
}
