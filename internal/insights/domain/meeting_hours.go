package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	scheduling "github.com/svenhofer/timegrid/internal/scheduling/domain"
)

// UncategorizedName is the display bucket for items without a category.
const UncategorizedName = "Uncategorized"

// MeetingRecord is the read-model slice of a meeting that hour
// accounting needs. Query handlers map meeting aggregates into it.
type MeetingRecord struct {
	CategoryID *uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
}

// CategoryHours is one bucket of the hours-by-category report.
type CategoryHours struct {
	CategoryID   *uuid.UUID
	CategoryName string
	TotalMinutes int
	TotalHours   float64
	MeetingCount int
}

// FormattedHours renders the bucket total for display.
func (c CategoryHours) FormattedHours() string {
	return FormatHours(c.TotalHours)
}

// MeetingHoursByCategory groups in-range meetings by category and sums
// their durations. A meeting is in range when its start time falls
// inside the closed interval. Nil category IDs collapse into the
// Uncategorized bucket; category IDs missing from categoryNames keep
// their bucket but also render as Uncategorized. Buckets sort by total
// hours descending, ties by name ascending (case-sensitive).
//
// Minutes are conserved: the bucket totals sum to the total duration of
// the in-range meetings.
func MeetingHoursByCategory(
	meetings []MeetingRecord,
	categoryNames map[uuid.UUID]string,
	timeRange scheduling.TimeRange,
) []CategoryHours {
	type key struct {
		categorized bool
		id          uuid.UUID
	}

	buckets := make(map[key]*CategoryHours)
	for _, meeting := range meetings {
		if !timeRange.Contains(meeting.StartAt) {
			continue
		}

		k := key{}
		if meeting.CategoryID != nil {
			k = key{categorized: true, id: *meeting.CategoryID}
		}

		bucket, ok := buckets[k]
		if !ok {
			bucket = &CategoryHours{CategoryName: UncategorizedName}
			if meeting.CategoryID != nil {
				id := *meeting.CategoryID
				bucket.CategoryID = &id
				if name, ok := categoryNames[id]; ok {
					bucket.CategoryName = name
				}
			}
			buckets[k] = bucket
		}

		minutes := IntervalMinutes(meeting.StartAt, &meeting.EndAt)
		bucket.TotalMinutes += minutes
		bucket.MeetingCount++
	}

	result := make([]CategoryHours, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.TotalHours = float64(bucket.TotalMinutes) / 60
		result = append(result, *bucket)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalHours != result[j].TotalHours {
			return result[i].TotalHours > result[j].TotalHours
		}
		return strings.Compare(result[i].CategoryName, result[j].CategoryName) < 0
	})

	return result
}
