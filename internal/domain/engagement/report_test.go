package engagement

import "testing"

func TestMergeSummary(t *testing.T) {
	metrics := []MetricRow{
		{ParishID: "p1", CourseID: "c1", LearnersStarted: 10, LearnersCompleted: 7},
		{ParishID: "p2", CourseID: "c1", LearnersStarted: 3, LearnersCompleted: 1},
	}
	parishes := map[string]string{"p1": "St Mary"}
	courses := map[string]string{"c1": "Alpha"}

	rows := MergeSummary(metrics, parishes, courses)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ParishName != "St Mary" || rows[0].CourseTitle != "Alpha" {
		t.Fatalf("expected enriched names, got %+v", rows[0])
	}
	if rows[0].LearnersStarted != 10 || rows[0].LearnersCompleted != 7 {
		t.Fatalf("metric counts lost in merge: %+v", rows[0])
	}
	// Missing parish lookup falls back to the raw id.
	if rows[1].ParishName != "p2" {
		t.Fatalf("expected fallback to raw parish id, got %q", rows[1].ParishName)
	}
}

func TestMergeSummaryNilLookups(t *testing.T) {
	metrics := []MetricRow{{ParishID: "p1", CourseID: "c1"}}
	rows := MergeSummary(metrics, nil, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ParishName != "p1" || rows[0].CourseTitle != "c1" {
		t.Fatalf("expected raw ids as display values, got %+v", rows[0])
	}
}

func TestMergeSummaryEmpty(t *testing.T) {
	rows := MergeSummary(nil, map[string]string{"p1": "St Mary"}, nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
