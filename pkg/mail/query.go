package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

// Accepted input layouts for range bounds. HTML date inputs submit the first.
var dateLayouts = []string{"2006-01-02", "2006/01/02"}

const queryDateLayout = "2006/01/02"

// BuildQuery builds a Gmail search query for a date range. start is required,
// end may be empty. Both days are included; Gmail's before: is exclusive, so
// it is set to the day after end.
func BuildQuery(start, end string) (string, error) {
	from, err := parseDate(start)
	if err != nil {
		return "", fmt.Errorf("%w: start date: %v", types.ErrInvalidDateRange, err)
	}

	if strings.TrimSpace(end) == "" {
		return "after:" + from.Format(queryDateLayout), nil
	}

	to, err := parseDate(end)
	if err != nil {
		return "", fmt.Errorf("%w: end date: %v", types.ErrInvalidDateRange, err)
	}
	if to.Before(from) {
		return "", fmt.Errorf("%w: end %s is before start %s", types.ErrInvalidDateRange, end, start)
	}

	return fmt.Sprintf("after:%s before:%s", from.Format(queryDateLayout), to.AddDate(0, 0, 1).Format(queryDateLayout)), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
