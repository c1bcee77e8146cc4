// internal/domain/engagement/report.go
package engagement

// MetricRow is one raw per-parish/per-course metric row as fetched from the
// store, before display names are joined in.
type MetricRow struct {
	ParishID          string `json:"parishId"`
	CourseID          string `json:"courseId"`
	LearnersStarted   int    `json:"learnersStarted"`
	LearnersCompleted int    `json:"learnersCompleted"`
}

// Row is a denormalized report row: a MetricRow enriched with human-readable
// parish and course names.
type Row struct {
	MetricRow
	ParishName  string `json:"parishName"`
	CourseTitle string `json:"courseTitle"`
}

// TrendPoint is one time-bucketed metric sample. Trend series are only
// computed when a date filter is active.
type TrendPoint struct {
	Bucket            string `json:"bucket"` // ISO date of the bucket start
	LearnersStarted   int    `json:"learnersStarted"`
	LearnersCompleted int    `json:"learnersCompleted"`
}

// Report is the full engagement report payload. Trends is nil (and omitted
// from JSON) unless the request carried a date filter.
type Report struct {
	Rows   []Row        `json:"rows"`
	Trends []TrendPoint `json:"trends,omitempty"`
}

// MergeSummary joins raw metric rows with the parish-name and course-title
// lookups. An id with no lookup entry falls back to the raw id string so that
// deleted or renamed entities degrade display quality instead of failing the
// merge.
func MergeSummary(metrics []MetricRow, parishNames, courseTitles map[string]string) []Row {
	rows := make([]Row, 0, len(metrics))
	for _, m := range metrics {
		name, ok := parishNames[m.ParishID]
		if !ok {
			name = m.ParishID
		}
		title, ok := courseTitles[m.CourseID]
		if !ok {
			title = m.CourseID
		}
		rows = append(rows, Row{MetricRow: m, ParishName: name, CourseTitle: title})
	}
	return rows
}
