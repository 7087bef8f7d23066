// Package analytics fetches dashboard reports through the TTL cache so
// switching between graph types does not re-hit the backend within the
// freshness window.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/refbridge/crms/internal/cache"
	"github.com/refbridge/crms/internal/errs"
	"github.com/refbridge/crms/internal/model"
)

// Graph types exposed by the dashboard.
const (
	GraphBar   = "bar"
	GraphPie   = "pie"
	GraphLine  = "line"
	GraphStats = "stats"
)

// FetchFunc retrieves one raw report by graph type.
type FetchFunc func(ctx context.Context, graphType string) (model.AnalyticsReport, error)

// Fetcher resolves reports cache-first and holds the display state for the
// currently selected graph type.
type Fetcher struct {
	fetch FetchFunc
	cache *cache.Cache[model.AnalyticsReport]

	graphType string
	stats     *model.GraphStats
	chartData json.RawMessage
	layout    json.RawMessage
	lastErr   string
}

// New constructs a Fetcher starting on the bar graph.
func New(fetch FetchFunc, c *cache.Cache[model.AnalyticsReport]) *Fetcher {
	if c == nil {
		c = cache.New[model.AnalyticsReport](cache.DefaultTTL)
	}
	return &Fetcher{fetch: fetch, cache: c, graphType: GraphBar}
}

// SetGraphType switches the selected graph. Data for the new type is loaded
// on the next FetchData call.
func (f *Fetcher) SetGraphType(graphType string) { f.graphType = graphType }

// GraphType returns the currently selected graph type.
func (f *Fetcher) GraphType() string { return f.graphType }

// FetchData resolves the current graph type, cache-first. Display state is
// reset up front and populated only from a well-formed response; a malformed
// one counts as a fetch failure and leaves the state empty.
func (f *Fetcher) FetchData(ctx context.Context) error {
	f.stats = nil
	f.chartData = nil
	f.layout = nil

	report, ok := f.cache.Get(f.graphType)
	if !ok {
		var err error
		report, err = f.fetch(ctx, f.graphType)
		if err != nil {
			f.lastErr = err.Error()
			return err
		}
		f.cache.Set(f.graphType, report)
	}

	if err := f.apply(report); err != nil {
		// a cached entry that fails validation must not be served again
		f.cache.Invalidate(f.graphType)
		f.lastErr = err.Error()
		return err
	}
	f.lastErr = ""
	return nil
}

// Refresh drops the cache entry for the current graph type and refetches,
// forcing a remote round-trip regardless of freshness.
func (f *Fetcher) Refresh(ctx context.Context) error {
	f.cache.Invalidate(f.graphType)
	return f.FetchData(ctx)
}

// Stats returns the stats payload when the current report is of type stats.
func (f *Fetcher) Stats() *model.GraphStats { return f.stats }

// Chart returns the opaque series and layout for chart-typed reports.
func (f *Fetcher) Chart() (data, layout json.RawMessage) { return f.chartData, f.layout }

// Err returns the last fetch error message, empty when none.
func (f *Fetcher) Err() string { return f.lastErr }

// apply validates the discriminated payload and installs display state.
func (f *Fetcher) apply(report model.AnalyticsReport) error {
	if report.Type == "" {
		return fmt.Errorf("analytics: missing type tag: %w", errs.ErrBadResponse)
	}
	if report.Type == GraphStats {
		stats, err := parseStats(report)
		if err != nil {
			return err
		}
		f.stats = stats
		return nil
	}
	if len(report.Data) == 0 || len(report.Layout) == 0 {
		return fmt.Errorf("analytics: %s report missing data or layout: %w", report.Type, errs.ErrBadResponse)
	}
	f.chartData = report.Data
	f.layout = report.Layout
	return nil
}

// parseStats decodes the stats payload, requiring the counts sub-field.
func parseStats(report model.AnalyticsReport) (*model.GraphStats, error) {
	if report.Stats != nil {
		return report.Stats, nil
	}
	if len(report.Data) == 0 {
		return nil, fmt.Errorf("analytics: stats report missing data: %w", errs.ErrBadResponse)
	}
	var raw struct {
		Counts          *model.StatusCounts `json:"counts"`
		RecentReferrals []model.Candidate   `json:"recentReferrals"`
	}
	if err := json.Unmarshal(report.Data, &raw); err != nil {
		return nil, fmt.Errorf("analytics: %v: %w", err, errs.ErrBadResponse)
	}
	if raw.Counts == nil {
		return nil, fmt.Errorf("analytics: stats report missing counts: %w", errs.ErrBadResponse)
	}
	return &model.GraphStats{Counts: *raw.Counts, RecentReferrals: raw.RecentReferrals}, nil
}
