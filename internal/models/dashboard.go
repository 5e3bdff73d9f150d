package models

// RevenueWindow is one rolling revenue window on the dashboard
type RevenueWindow struct {
	Label         string  `json:"label"`
	Total         float64 `json:"total"`
	PreviousTotal float64 `json:"previous_total"`
	PercentChange float64 `json:"percent_change"`
	Count         int     `json:"count"`
}

// ProductRank is one entry in the top-products table
type ProductRank struct {
	Product string  `json:"product"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DashboardSummary aggregates revenue windows and product rankings over the
// full shoeing set. Records missing a date or a parseable base cost are
// excluded and counted for diagnostics.
type DashboardSummary struct {
	Week           RevenueWindow `json:"week"`
	MonthToDate    RevenueWindow `json:"month_to_date"`
	QuarterToDate  RevenueWindow `json:"quarter_to_date"`
	TopServices    []ProductRank `json:"top_services"`
	TopAddOns      []ProductRank `json:"top_add_ons"`
	SkippedNoDate  int           `json:"skipped_no_date"`
	SkippedBadCost int           `json:"skipped_bad_cost"`
}
