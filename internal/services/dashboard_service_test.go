package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farrier-backend/internal/models"
)

func dated(daysAgo int, now time.Time, cost string) *models.Shoeing {
	d := now.AddDate(0, 0, -daysAgo)
	return &models.Shoeing{DateOfService: &d, BaseServiceCost: cost, BaseService: "Full Set"}
}

func TestComputeSummaryWeekWindow(t *testing.T) {
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

	shoeings := []*models.Shoeing{
		dated(0, now, "100.00"), // today, in window
		dated(6, now, "50.00"),  // oldest day still in window
		dated(7, now, "25.00"),  // previous window
		dated(13, now, "75.00"), // previous window
		dated(14, now, "999.00"), // outside both
	}

	summary := ComputeSummary(shoeings, now)
	assert.Equal(t, 150.0, summary.Week.Total)
	assert.Equal(t, 2, summary.Week.Count)
	assert.Equal(t, 100.0, summary.Week.PreviousTotal)
	assert.InDelta(t, 50.0, summary.Week.PercentChange, 0.001)
}

func TestComputeSummaryPercentChangeZeroWhenNoPrevious(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	summary := ComputeSummary([]*models.Shoeing{dated(1, now, "100.00")}, now)

	assert.Equal(t, 100.0, summary.Week.Total)
	assert.Zero(t, summary.Week.PercentChange)
}

func TestComputeSummarySkipsUnusableRecords(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	shoeings := []*models.Shoeing{
		dated(1, now, "100.00"),
		dated(2, now, "call for pricing"),
		{DateOfService: nil, BaseServiceCost: "50.00"},
	}

	summary := ComputeSummary(shoeings, now)
	assert.Equal(t, 100.0, summary.Week.Total)
	assert.Equal(t, 1, summary.SkippedBadCost)
	assert.Equal(t, 1, summary.SkippedNoDate)
}

func TestComputeSummaryParsesLegacyMoneyStrings(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	summary := ComputeSummary([]*models.Shoeing{dated(1, now, "$1,250.50")}, now)
	assert.Equal(t, 1250.50, summary.Week.Total)
}

func TestComputeSummarySumsComponentCosts(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	sh := dated(1, now, "100.00")
	sh.FrontAddOnsCost = "20.00"
	// A stale denormalized total must not feed the windows
	sh.TotalCost = "150.00"

	summary := ComputeSummary([]*models.Shoeing{sh}, now)
	assert.Equal(t, 120.0, summary.Week.Total)
	assert.Zero(t, summary.SkippedBadCost)
}

func TestComputeSummaryIgnoresUnparseableAddOnCost(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	sh := dated(1, now, "100.00")
	sh.HindAddOnsCost = "included"

	summary := ComputeSummary([]*models.Shoeing{sh}, now)
	assert.Equal(t, 100.0, summary.Week.Total)
	assert.Zero(t, summary.SkippedBadCost)
}

func TestComputeSummaryTopProducts(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	var shoeings []*models.Shoeing
	for i := 0; i < 3; i++ {
		sh := dated(1, now, "100.00")
		sh.BaseService = "Full Set"
		sh.BaseServiceCost = "80.00"
		shoeings = append(shoeings, sh)
	}
	trim := dated(1, now, "40.00")
	trim.BaseService = "Trim"
	trim.BaseServiceCost = "40.00"
	trim.FrontAddOns = "Pads"
	trim.FrontAddOnsCost = "20.00"
	shoeings = append(shoeings, trim)

	summary := ComputeSummary(shoeings, now)
	require.NotEmpty(t, summary.TopServices)
	assert.Equal(t, "Full Set", summary.TopServices[0].Product)
	assert.Equal(t, 3, summary.TopServices[0].Count)
	assert.Equal(t, 240.0, summary.TopServices[0].Revenue)

	require.Len(t, summary.TopAddOns, 1)
	assert.Equal(t, "Pads", summary.TopAddOns[0].Product)
}

func TestComputeSummaryMonthToDate(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	aug5 := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	jul5 := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
	jul25 := time.Date(2026, 7, 25, 0, 0, 0, 0, time.UTC)

	shoeings := []*models.Shoeing{
		{DateOfService: &aug5, BaseServiceCost: "100.00"},
		{DateOfService: &jul5, BaseServiceCost: "60.00"},
		// July 25 is outside the previous month-to-date range (Jul 1-20)
		{DateOfService: &jul25, BaseServiceCost: "500.00"},
	}

	summary := ComputeSummary(shoeings, now)
	assert.Equal(t, 100.0, summary.MonthToDate.Total)
	assert.Equal(t, 60.0, summary.MonthToDate.PreviousTotal)
}
