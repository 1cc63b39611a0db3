package gmail

import (
	"strings"
	"time"
)

// BuildQuery builds the Gmail search query from the configured filters.
// Empty filters are omitted; the unread clause is always present. now is
// injected so the after: clause is deterministic in tests.
func BuildQuery(from, subject string, nDays int, now time.Time) string {
	var parts []string

	if from != "" {
		parts = append(parts, "from:"+from)
	}
	if subject != "" {
		parts = append(parts, "subject:"+subject)
	}
	if nDays > 0 {
		after := now.AddDate(0, 0, -nDays)
		parts = append(parts, "after:"+after.Format("2006/01/02"))
	}
	parts = append(parts, "is:unread")

	return strings.Join(parts, " ")
}
