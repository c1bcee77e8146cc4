// internal/app/report_service.go
package app

import (
	"context"
	"fmt"

	"parish_lms/internal/domain/engagement"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ReportService builds engagement reports from the metrics store.
type ReportService struct {
	repo   engagement.Repository
	logger *logrus.Logger
}

func NewReportService(repo engagement.Repository, logger *logrus.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

// Report loads the filtered engagement report. The trend series is fetched
// only when a date filter is active; the two code paths are explicit so the
// contract stays self-documenting. Any fetch failure short-circuits the whole
// call — no partial results.
func (s *ReportService) Report(ctx context.Context, f engagement.Filters) (engagement.Report, error) {
	if !f.HasDateFilters() {
		rows, err := s.fetchRows(ctx, f)
		if err != nil {
			return engagement.Report{}, err
		}
		return engagement.Report{Rows: rows}, nil
	}

	var (
		rows   []engagement.Row
		trends []engagement.TrendPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.fetchRows(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		trends, err = s.repo.TrendPoints(gctx, f)
		if err != nil {
			return fmt.Errorf("fetching trend points: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return engagement.Report{}, err
	}
	if trends == nil {
		trends = []engagement.TrendPoint{}
	}
	return engagement.Report{Rows: rows, Trends: trends}, nil
}

// Summary loads the unfiltered engagement summary: metric rows merged with the
// parish and course lookups, fetched concurrently. The merge is a pure join;
// ordering between the three fetches is irrelevant.
func (s *ReportService) Summary(ctx context.Context) ([]engagement.Row, error) {
	return s.fetchRows(ctx, engagement.Filters{})
}

func (s *ReportService) fetchRows(ctx context.Context, f engagement.Filters) ([]engagement.Row, error) {
	var (
		metrics  []engagement.MetricRow
		parishes map[string]string
		courses  map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, err = s.repo.MetricRows(gctx, f)
		if err != nil {
			return fmt.Errorf("fetching metric rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		parishes, err = s.repo.ParishNames(gctx)
		if err != nil {
			return fmt.Errorf("fetching parish names: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		courses, err = s.repo.CourseTitles(gctx)
		if err != nil {
			return fmt.Errorf("fetching course titles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.WithField("rows", len(metrics)).Debug("engagement metrics fetched")
	return engagement.MergeSummary(metrics, parishes, courses), nil
}
