package review

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"Mansoor88-6/activity-agent/internal/models"
)

// CollisionPolicy picks the one slot shown when several slots share a
// minute key
type CollisionPolicy func(slots []models.TimeSlot) models.TimeSlot

// ResolveCollision keeps the slot with the most screenshots. Ties go to
// the slot that came last in the input. All other slots at the key are
// dropped from the bucketed view.
func ResolveCollision(slots []models.TimeSlot) models.TimeSlot {
	sorted := make([]models.TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Screenshots) < len(sorted[j].Screenshots)
	})
	return sorted[len(sorted)-1]
}

// Bucketer turns a flat time slot list into hour buckets of six fixed
// minute slots
type Bucketer struct {
	Resolve CollisionPolicy
}

// NewBucketer creates a bucketer with the default collision policy
func NewBucketer() *Bucketer {
	return &Bucketer{Resolve: ResolveCollision}
}

// Bucketize groups slots by the hour and minute of startedAt in loc.
// Minutes are matched literally against MinuteKeys, so a slot starting at
// a minute that is not a multiple of ten never reaches a bucket. An hour
// whose slots all miss the keys is still emitted, with six empty minute
// slots.
func (b *Bucketer) Bucketize(slots []models.TimeSlot, loc *time.Location) []models.HourBucket {
	if loc == nil {
		loc = time.Local
	}
	resolve := b.Resolve
	if resolve == nil {
		resolve = ResolveCollision
	}

	hours := make(map[string]map[string][]models.TimeSlot)
	for _, slot := range slots {
		local := slot.StartedAt.In(loc)
		hour := local.Format("15")
		minute := local.Format("04")

		minutes, ok := hours[hour]
		if !ok {
			minutes = make(map[string][]models.TimeSlot)
			hours[hour] = minutes
		}
		minutes[minute] = append(minutes[minute], slot)
	}

	buckets := make([]models.HourBucket, 0, len(hours))
	for hour, minutes := range hours {
		bucket := models.HourBucket{
			StartTime: hour + ":00",
			EndTime:   nextHour(hour) + ":00",
		}
		for i, key := range models.MinuteKeys {
			group, ok := minutes[key]
			if !ok {
				continue
			}
			bucket.MinuteSlots[i] = &models.MinuteSlot{
				TimeSlot:  resolve(group),
				Employees: Employees(group),
			}
		}
		buckets = append(buckets, bucket)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].StartTime < buckets[j].StartTime
	})
	return buckets
}

func nextHour(hour string) string {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return hour
	}
	return fmt.Sprintf("%02d", (h+1)%24)
}
