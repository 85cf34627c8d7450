package ledger

import (
	"sort"

	"shortearn/model"
)

// Default display windows. Values are configurable; these mirror what the
// dashboard has always shown.
const (
	DefaultTableWindow = 120
	DefaultChartWindow = 10
	DefaultPageSize    = 15
)

// ChartPoint is one day of the earnings chart, in ascending date order.
type ChartPoint struct {
	Date        string  `json:"date"`
	Earnings    float64 `json:"earnings"`
	Impressions int64   `json:"impressions"`
	CPM         float64 `json:"cpm"`
}

// DashboardView is the derived read model over a dashboard record. It is
// recomputed wholesale on every change; nothing is patched incrementally.
type DashboardView struct {
	TotalEarnings    float64                    `json:"totalEarnings"`
	TodayEarnings    float64                    `json:"todayEarnings"`
	TotalImpressions int64                      `json:"totalImpressions"`
	TodayImpressions int64                      `json:"todayImpressions"`
	CurrentCPM       float64                    `json:"currentCPM"`
	Dates            []string                   `json:"dates"`
	DailyStats       map[string]model.DailyStat `json:"dailyStats"`
	Chart            []ChartPoint               `json:"chart"`
	ChartTotal       float64                    `json:"chartTotal"`
	TotalPages       int                        `json:"totalPages"`
}

// SortDatesDesc returns the stat dates newest first, capped at window.
// ISO date keys order chronologically when compared as strings.
func SortDatesDesc(stats map[string]model.DailyStat, window int) []string {
	dates := make([]string, 0, len(stats))
	for date := range stats {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if window > 0 && len(dates) > window {
		dates = dates[:window]
	}
	return dates
}

// ChartSeries takes the newest-first date list, keeps the chart window and
// reverses it to ascending order for rendering.
func ChartSeries(dates []string, stats map[string]model.DailyStat, window int) []ChartPoint {
	if window > len(dates) {
		window = len(dates)
	}
	points := make([]ChartPoint, 0, window)
	for i := window - 1; i >= 0; i-- {
		date := dates[i]
		stat := stats[date]
		points = append(points, ChartPoint{
			Date:        date,
			Earnings:    stat.Earnings,
			Impressions: stat.Impressions,
			CPM:         stat.CPM,
		})
	}
	return points
}

// RollingSum is the earnings total over the chart window.
func RollingSum(points []ChartPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Earnings
	}
	return sum
}

// BuildDashboardView derives the full read model from a stored dashboard.
func BuildDashboardView(d *model.Dashboard, tableWindow, chartWindow, pageSize int) *DashboardView {
	dates := SortDatesDesc(d.DailyStats, tableWindow)
	chart := ChartSeries(dates, d.DailyStats, chartWindow)

	visible := make(map[string]model.DailyStat, len(dates))
	for _, date := range dates {
		visible[date] = d.DailyStats[date]
	}

	return &DashboardView{
		TotalEarnings:    d.TotalEarnings,
		TodayEarnings:    d.TodayEarnings,
		TotalImpressions: d.TotalImpressions,
		TodayImpressions: d.TodayImpressions,
		CurrentCPM:       d.CurrentCPM,
		Dates:            dates,
		DailyStats:       visible,
		Chart:            chart,
		ChartTotal:       RollingSum(chart),
		TotalPages:       NewPaginator(len(dates), pageSize).TotalPages,
	}
}

// WithdrawalsView is the derived read model over the withdrawal record.
type WithdrawalsView struct {
	TotalAvailable float64                            `json:"totalavailable"`
	TotalWithdrawn float64                            `json:"totalWithdrawn"`
	History        map[string]model.WithdrawalRequest `json:"history"`
	PendingCount   int                                `json:"pendingCount"`
	CompletedCount int                                `json:"completedCount"`
	RejectedCount  int                                `json:"rejectedCount"`
}

// BuildWithdrawalsView counts history entries by status. An unset status
// counts as pending; Completed and Approved both count as completed.
func BuildWithdrawalsView(w *model.Withdrawals, history map[string]model.WithdrawalRequest) *WithdrawalsView {
	view := &WithdrawalsView{
		TotalAvailable: w.TotalAvailable,
		TotalWithdrawn: w.TotalWithdrawn,
		History:        history,
	}
	for _, entry := range history {
		switch entry.Status {
		case model.StatusCompleted, model.StatusApproved:
			view.CompletedCount++
		case model.StatusRejected:
			view.RejectedCount++
		default:
			view.PendingCount++
		}
	}
	return view
}
