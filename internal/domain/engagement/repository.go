// internal/domain/engagement/repository.go
package engagement

import "context"

// Repository defines the read operations the report aggregator needs. All
// reads may legitimately return empty results; errors mean the store itself
// failed.
type Repository interface {
	// MetricRows returns one row per parish x course pair matching the filters.
	MetricRows(ctx context.Context, f Filters) ([]MetricRow, error)

	// TrendPoints returns the time-bucketed series for the filtered range.
	// Only called when f.HasDateFilters() is true.
	TrendPoints(ctx context.Context, f Filters) ([]TrendPoint, error)

	// ParishNames returns the parish id -> display name lookup.
	ParishNames(ctx context.Context) (map[string]string, error)

	// CourseTitles returns the course id -> title lookup.
	CourseTitles(ctx context.Context) (map[string]string, error)
}
