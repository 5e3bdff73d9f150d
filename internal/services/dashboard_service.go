package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"farrier-backend/internal/cache"
	"farrier-backend/internal/models"
	"farrier-backend/pkg/money"
)

const (
	dashboardPageSize = 1000
	dashboardCacheTTL = 5 * time.Minute
	topProductCount   = 5
)

type shoeingLister interface {
	List(ctx context.Context, limit, offset int) ([]*models.Shoeing, int, error)
}

// DashboardService computes the revenue summary over the full record set.
// Aggregation happens in memory because legacy cost columns are free text the
// database cannot sum.
type DashboardService struct {
	shoeings shoeingLister
}

func NewDashboardService(shoeings shoeingLister) *DashboardService {
	return &DashboardService{shoeings: shoeings}
}

// Summary serves the cached summary when available, otherwise recomputes it
// from a full paged fetch.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if data, ok := cache.GetCached(ctx, cache.DashboardSummaryKey); ok {
		var summary models.DashboardSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return &summary, nil
		}
	}

	all, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := ComputeSummary(all, time.Now())

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.DashboardSummaryKey, data, dashboardCacheTTL)
	}
	return summary, nil
}

func (s *DashboardService) fetchAll(ctx context.Context) ([]*models.Shoeing, error) {
	var all []*models.Shoeing
	offset := 0
	for {
		page, _, err := s.shoeings.List(ctx, dashboardPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to load records: %w", err)
		}
		all = append(all, page...)
		if len(page) < dashboardPageSize {
			return all, nil
		}
		offset += dashboardPageSize
	}
}

// ComputeSummary aggregates every record into the three rolling windows and
// the product rankings. Window totals sum the parsed base and add-on component
// costs; the denormalized total column is display-only and may diverge for
// admin-edited records. Records without a service date or a parseable base
// cost are excluded and counted.
func ComputeSummary(shoeings []*models.Shoeing, now time.Time) *models.DashboardSummary {
	today := dateOnly(now)

	weekStart := today.AddDate(0, 0, -6)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	quarterMonth := time.Month(((int(today.Month())-1)/3)*3 + 1)
	quarterStart := time.Date(today.Year(), quarterMonth, 1, 0, 0, 0, 0, today.Location())

	summary := &models.DashboardSummary{
		Week:          models.RevenueWindow{Label: "last_7_days"},
		MonthToDate:   models.RevenueWindow{Label: "month_to_date"},
		QuarterToDate: models.RevenueWindow{Label: "quarter_to_date"},
	}

	services := make(map[string]*models.ProductRank)
	addOns := make(map[string]*models.ProductRank)
	var serviceOrder, addOnOrder []string

	for _, sh := range shoeings {
		if sh.DateOfService == nil {
			summary.SkippedNoDate++
			continue
		}
		total, err := money.Parse(sh.BaseServiceCost)
		if err != nil {
			summary.SkippedBadCost++
			continue
		}
		// Unparseable add-on costs are simply not added; only a bad base
		// cost excludes the record.
		if v, err := money.Parse(sh.FrontAddOnsCost); err == nil {
			total += v
		}
		if v, err := money.Parse(sh.HindAddOnsCost); err == nil {
			total += v
		}
		d := dateOnly(*sh.DateOfService)

		accumulate(&summary.Week, d, weekStart, today, weekStart.AddDate(0, 0, -7), weekStart.AddDate(0, 0, -1), total)
		accumulate(&summary.MonthToDate, d, monthStart, today, monthStart.AddDate(0, -1, 0), today.AddDate(0, -1, 0), total)
		accumulate(&summary.QuarterToDate, d, quarterStart, today, quarterStart.AddDate(0, -3, 0), today.AddDate(0, -3, 0), total)

		if sh.BaseService != "" {
			rankProduct(services, &serviceOrder, sh.BaseService, sh.BaseServiceCost)
		}
		if sh.FrontAddOns != "" {
			rankProduct(addOns, &addOnOrder, sh.FrontAddOns, sh.FrontAddOnsCost)
		}
		if sh.HindAddOns != "" {
			rankProduct(addOns, &addOnOrder, sh.HindAddOns, sh.HindAddOnsCost)
		}
	}

	finishWindow(&summary.Week)
	finishWindow(&summary.MonthToDate)
	finishWindow(&summary.QuarterToDate)

	summary.TopServices = topRanked(services, serviceOrder)
	summary.TopAddOns = topRanked(addOns, addOnOrder)
	return summary
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// inWindow compares at day granularity, both ends inclusive
func inWindow(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

func accumulate(w *models.RevenueWindow, d, start, end, prevStart, prevEnd time.Time, total float64) {
	if inWindow(d, start, end) {
		w.Total += total
		w.Count++
	} else if inWindow(d, prevStart, prevEnd) {
		w.PreviousTotal += total
	}
}

// finishWindow computes percent change, defined as zero when the previous
// window is empty
func finishWindow(w *models.RevenueWindow) {
	if w.PreviousTotal == 0 {
		w.PercentChange = 0
		return
	}
	w.PercentChange = (w.Total - w.PreviousTotal) / w.PreviousTotal * 100
}

func rankProduct(ranks map[string]*models.ProductRank, order *[]string, product, cost string) {
	r, ok := ranks[product]
	if !ok {
		r = &models.ProductRank{Product: product}
		ranks[product] = r
		*order = append(*order, product)
	}
	r.Count++
	if v, err := money.Parse(cost); err == nil {
		r.Revenue += v
	}
}

// topRanked sorts by count descending with first-seen order as the tie-break,
// then truncates to the top five.
func topRanked(ranks map[string]*models.ProductRank, order []string) []models.ProductRank {
	result := make([]models.ProductRank, 0, len(order))
	for _, product := range order {
		result = append(result, *ranks[product])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > topProductCount {
		result = result[:topProductCount]
	}
	return result
}
