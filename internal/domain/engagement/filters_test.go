package engagement

import (
	"net/url"
	"testing"
	"time"
)

func TestParseFilters(t *testing.T) {
	params := url.Values{}
	params.Set("parishId", "p1")
	params.Set("courseId", "c1")
	params.Set("startDate", "2025-03-01")
	params.Set("endDate", "2025-03-31")

	f, err := ParseFilters(params)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if f.ParishID != "p1" || f.CourseID != "c1" {
		t.Fatalf("unexpected id filters: %+v", f)
	}
	if f.StartDate != time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start date: %v", f.StartDate)
	}
}

func TestParseFiltersEmpty(t *testing.T) {
	f, err := ParseFilters(url.Values{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if f.HasDateFilters() {
		t.Fatal("empty filters must not report date filters")
	}
}

func TestParseFiltersRejectsInvertedRange(t *testing.T) {
	params := url.Values{}
	params.Set("startDate", "2025-04-01")
	params.Set("endDate", "2025-03-01")

	if _, err := ParseFilters(params); err == nil {
		t.Fatal("expected error when start is after end")
	}
}

func TestParseFiltersRejectsMalformedDate(t *testing.T) {
	for _, key := range []string{"startDate", "endDate"} {
		params := url.Values{}
		params.Set(key, "03/01/2025")
		if _, err := ParseFilters(params); err == nil {
			t.Fatalf("expected error for malformed %s", key)
		}
	}
}

func TestHasDateFilters(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"none", Filters{}, false},
		{"ids only", Filters{ParishID: "p1", CourseID: "c1"}, false},
		{"start only", Filters{StartDate: day}, true},
		{"end only", Filters{EndDate: day}, true},
		{"both", Filters{StartDate: day, EndDate: day}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.HasDateFilters(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
