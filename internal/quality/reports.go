package quality

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// ReportRow is one line of the full quality report.
type ReportRow struct {
	TestID   uint
	Food     string
	Supplier string
	CFU      int
	Risk     safety.RiskLabel
	Result   safety.Verdict
	TestDate time.Time
}

// FullQualityReport lists every quality test with its risk class, ordered by
// CFU descending then test ID descending. A non-nil risk keeps only rows of
// that class.
func (s *Service) FullQualityReport(ctx context.Context, risk *safety.RiskLabel) ([]ReportRow, error) {
	rows, err := s.repos.Reports.QualityReport(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ReportRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		label := safety.ClassifyRisk(r.BacteriaCount)
		if risk != nil && label != *risk {
			continue
		}
		out = append(out, ReportRow{
			TestID:   r.ID,
			Food:     r.FoodName,
			Supplier: r.SupplierName,
			CFU:      r.BacteriaCount,
			Risk:     label,
			Result:   r.Result,
			TestDate: r.TestDate,
		})
	}
	return out, nil
}

// SupplierPerformance returns the reliability of every supplier, including
// suppliers without tests.
func (s *Service) SupplierPerformance(ctx context.Context) ([]safety.Reliability, error) {
	return cached(s, cacheKeyPerformance, func() ([]safety.Reliability, error) {
		suppliers, err := s.repos.Suppliers.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		verdicts, err := s.repos.Reports.SupplierVerdicts(ctx)
		if err != nil {
			return nil, err
		}

		refs := make([]safety.SupplierRef, 0, len(suppliers))
		for _, sup := range suppliers {
			refs = append(refs, safety.SupplierRef{ID: sup.ID, Name: sup.Name})
		}
		return safety.AggregateReliability(verdicts, refs...), nil
	})
}

// Overview holds the dashboard entity counts.
type Overview struct {
	FoodItems int64
	Suppliers int64
	Batches   int64
	Reports   int64
}

// DashboardOverview counts food items, suppliers, batches and quality tests.
func (s *Service) DashboardOverview(ctx context.Context) (Overview, error) {
	return cached(s, cacheKeyOverview, func() (Overview, error) {
		var out Overview
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			out.FoodItems, err = s.repos.FoodItems.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.Suppliers, err = s.repos.Suppliers.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.Batches, err = s.repos.Batches.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.Reports, err = s.repos.QualityTests.Count(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return Overview{}, err
		}
		return out, nil
	})
}

// Charts holds the dashboard verdict and risk distributions.
type Charts struct {
	Passed       int64
	Failed       int64
	Safe         int64
	ModerateRisk int64
	HighRisk     int64
}

// DashboardCharts counts tests per verdict and per risk class of their
// bacteria count.
func (s *Service) DashboardCharts(ctx context.Context) (Charts, error) {
	return cached(s, cacheKeyCharts, func() (Charts, error) {
		var (
			mu  sync.Mutex
			out Charts
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			counts, err := s.repos.Reports.VerdictCounts(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			out.Passed = counts[safety.Pass]
			out.Failed = counts[safety.Fail]
			return nil
		})
		g.Go(func() error {
			counts, err := s.repos.Reports.BacteriaCounts(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for cfu, n := range counts {
				switch safety.ClassifyRisk(cfu) {
				case safety.Safe:
					out.Safe += n
				case safety.ModerateRisk:
					out.ModerateRisk += n
				case safety.HighRisk:
					out.HighRisk += n
				}
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return Charts{}, err
		}
		return out, nil
	})
}
