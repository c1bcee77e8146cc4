// internal/domain/engagement/filters.go
package engagement

import (
	"fmt"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// Filters narrows an engagement report. All fields are optional; zero time
// values mean "no bound".
type Filters struct {
	ParishID  string
	CourseID  string
	StartDate time.Time
	EndDate   time.Time
}

// ParseFilters reads report filters from request query parameters. Dates must
// be ISO dates (YYYY-MM-DD) and, when both bounds are present, start must not
// be after end. A returned error is a client error, never fatal.
func ParseFilters(params url.Values) (Filters, error) {
	f := Filters{
		ParishID: params.Get("parishId"),
		CourseID: params.Get("courseId"),
	}

	if raw := params.Get("startDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Filters{}, fmt.Errorf("invalid startDate %q: expected YYYY-MM-DD", raw)
		}
		f.StartDate = t
	}
	if raw := params.Get("endDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return Filters{}, fmt.Errorf("invalid endDate %q: expected YYYY-MM-DD", raw)
		}
		f.EndDate = t
	}

	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.StartDate.After(f.EndDate) {
		return Filters{}, fmt.Errorf("startDate %s is after endDate %s",
			f.StartDate.Format(dateLayout), f.EndDate.Format(dateLayout))
	}
	return f, nil
}

// HasDateFilters reports whether either date bound is set. It gates trend
// computation: without a date filter the report skips the trend series
// entirely to avoid a full-range aggregation on "show everything" requests.
func (f Filters) HasDateFilters() bool {
	return !f.StartDate.IsZero() || !f.EndDate.IsZero()
}
