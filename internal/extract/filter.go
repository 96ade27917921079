package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/task-extractor/internal/clickup"
)

// Date filter names accepted by ExtractConfig.DateFilter.
const (
	DateFilterAllOpen  = "AllOpen"
	DateFilterThisWeek = "ThisWeek"
	DateFilterLastWeek = "LastWeek"
)

// closedStatus is the status type ClickUp gives to done tasks.
const closedStatus = "closed"

// DateRange returns the creation window for filter relative to now. Weeks
// run from Monday 00:00 through the end of Sunday in now's location. ok is
// false when the filter does not restrict dates.
func DateRange(filter string, now time.Time) (start, end time.Time, ok bool) {
	var offset int
	switch filter {
	case DateFilterThisWeek:
		offset = 0
	case DateFilterLastWeek:
		offset = -7
	default:
		return time.Time{}, time.Time{}, false
	}

	// time.Weekday counts from Sunday; shift so Monday is 0.
	sinceMonday := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	start = time.Date(y, m, d-sinceMonday+offset, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end, true
}

// parseMillis reads ClickUp's millisecond timestamp strings.
func parseMillis(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// taskFilter decides which fetched tasks become records.
type taskFilter struct {
	includeCompleted bool
	excluded         map[string]struct{}
	start, end       time.Time
	dated            bool
}

func newTaskFilter(includeCompleted bool, excludeStatuses []string, dateFilter string, now time.Time) taskFilter {
	f := taskFilter{
		includeCompleted: includeCompleted,
		excluded:         make(map[string]struct{}, len(excludeStatuses)),
	}
	for _, s := range excludeStatuses {
		f.excluded[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	f.start, f.end, f.dated = DateRange(dateFilter, now)
	return f
}

// keep reports whether t passes every filter, and the reason when it does not.
func (f taskFilter) keep(t clickup.Task) (bool, string) {
	status := strings.ToLower(t.Status.Status)

	if !f.includeCompleted && (t.Archived || status == closedStatus || t.Status.Type == closedStatus) {
		return false, "completed"
	}
	if _, ok := f.excluded[status]; ok {
		return false, "excluded_status"
	}
	if f.dated {
		created, ok := parseMillis(t.DateCreated)
		if !ok || created.Before(f.start) || created.After(f.end) {
			return false, "date"
		}
	}
	return true, ""
}
