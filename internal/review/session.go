package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// TimeSlotStore is the backend holding time slots
type TimeSlotStore interface {
	FetchTimeSlots(ctx context.Context, q models.TimeSlotQuery) ([]models.TimeSlot, error)
	DeleteTimeSlots(ctx context.Context, ids []string, organizationID string) error
}

// Session is one review of a time range. It keeps the slots exactly as
// loaded next to the bucketed view, so deletions can reach slots that
// collision resolution hid.
type Session struct {
	store     TimeSlotStore
	bucketer  *Bucketer
	selection *SelectionManager
	gallery   *GallerySyncManager
	logger    *zap.Logger

	mu       sync.RWMutex
	loc      *time.Location
	query    models.TimeSlotQuery
	original []models.TimeSlot
	buckets  []models.HourBucket
	loading  bool
}

func NewSession(store TimeSlotStore, gallery Gallery, loc *time.Location, logger *zap.Logger) *Session {
	if loc == nil {
		loc = time.Local
	}
	return &Session{
		store:     store,
		bucketer:  NewBucketer(),
		selection: NewSelectionManager(),
		gallery:   NewGallerySyncManager(gallery, logger),
		logger:    logger,
		loc:       loc,
	}
}

// Load fetches the slots matching q and rebuilds the buckets. On failure
// the previous view is kept.
func (s *Session) Load(ctx context.Context, q models.TimeSlotQuery) error {
	s.setLoading(true)
	defer s.setLoading(false)

	slots, err := s.store.FetchTimeSlots(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to load time slots: %w", err)
	}

	s.mu.Lock()
	s.query = q
	s.original = slots
	s.rebucket()
	count := len(s.buckets)
	s.mu.Unlock()

	s.logger.Debug("Time slots loaded",
		zap.Int("slot_count", len(slots)),
		zap.Int("hour_count", count),
	)
	return nil
}

// SetTimezone rebuilds the buckets for loc from the already loaded slots
func (s *Session) SetTimezone(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
	s.rebucket()
}

// DeleteSelected deletes the selected slots through the store. When the
// store fails nothing local changes. On success the gallery is synced
// and the range reloaded; the deleted ids are returned either way.
func (s *Session) DeleteSelected(ctx context.Context) ([]string, error) {
	ids := s.selection.SelectedIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	query := s.query
	original := s.original
	s.mu.RUnlock()

	if err := s.store.DeleteTimeSlots(ctx, ids, query.OrganizationID); err != nil {
		s.logger.Error("Failed to delete time slots", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("failed to delete time slots: %w", err)
	}

	s.gallery.Sync(ids, original)
	s.logger.Info("Time slots deleted", zap.Int("count", len(ids)))

	if err := s.Load(ctx, query); err != nil {
		return ids, err
	}
	return ids, nil
}

// Leave clears the gallery
func (s *Session) Leave() {
	s.gallery.Clear()
}

func (s *Session) Buckets() []models.HourBucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HourBucket, len(s.buckets))
	copy(out, s.buckets)
	return out
}

// Slots returns the slots as loaded, before bucketing
func (s *Session) Slots() []models.TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TimeSlot, len(s.original))
	copy(out, s.original)
	return out
}

func (s *Session) Selection() *SelectionManager {
	return s.selection
}

func (s *Session) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// rebucket must be called with mu held
func (s *Session) rebucket() {
	ids := make([]string, len(s.original))
	for i, slot := range s.original {
		ids[i] = slot.ID
	}
	s.selection.Reset(ids)
	s.buckets = s.bucketer.Bucketize(s.original, s.loc)
}
