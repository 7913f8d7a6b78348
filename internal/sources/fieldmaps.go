// Package sources carries the per-provider knowledge the engine itself stays
// free of: which keys each marketing API uses for dates and metrics, how far
// back one request may reach, and how to page through results over HTTP.
package sources

import (
	specs "github.com/growthops/rollup/specs"
)

// Limits are a provider's fetch constraints.
type Limits struct {
	// Widest date range one request may cover, in days.
	MaxSpanDays int

	// Page cap per window, bounding pagination against the provider.
	MaxPagesPerWindow int
}

// RDStationLimits reflect the RD Station Analytics API: at most 40 days per
// query, paged.
var RDStationLimits = Limits{MaxSpanDays: 40, MaxPagesPerWindow: 10}

// GA4Limits and MetaLimits carry no hard span cap; the large span keeps a
// year-long report in a single window.
var (
	GA4Limits  = Limits{MaxSpanDays: 366, MaxPagesPerWindow: 50}
	MetaLimits = Limits{MaxSpanDays: 366, MaxPagesPerWindow: 50}
)

// GA4FieldMap maps Google Analytics 4 Data API rows onto internal fields.
// GA4 reports dates compactly ("20240115") and has renamed its user metrics
// across property versions, hence the candidate lists.
func GA4FieldMap() specs.NormalizeConfigSpec {
	return specs.NormalizeConfigSpec{
		DateKeys: []string{"date", "dateHour"},
		Fields: []specs.FieldMappingSpec{
			{Field: "sessions", SourceKeys: []string{"sessions"}},
			{Field: "users", SourceKeys: []string{"totalUsers", "activeUsers"}},
			{Field: "bounceRate", SourceKeys: []string{"bounceRate"}},
			{Field: "engagementTime", SourceKeys: []string{"averageSessionDuration", "userEngagementDuration"}},
			{Field: "conversions", SourceKeys: []string{"keyEvents", "conversions"}},
		},
	}
}

// MetaAdsFieldMap maps Meta Graph API Insights rows onto internal fields.
func MetaAdsFieldMap() specs.NormalizeConfigSpec {
	return specs.NormalizeConfigSpec{
		DateKeys: []string{"date_start", "date"},
		Fields: []specs.FieldMappingSpec{
			{Field: "spend", SourceKeys: []string{"spend"}},
			{Field: "clicks", SourceKeys: []string{"inline_link_clicks", "clicks"}},
			{Field: "impressions", SourceKeys: []string{"impressions"}},
			{Field: "reach", SourceKeys: []string{"reach"}},
		},
	}
}

// RDStationEmailFieldMap maps RD Station email campaign rows onto internal
// fields. RD Station has shifted between *_count and unique_* key names
// across endpoint versions.
func RDStationEmailFieldMap() specs.NormalizeConfigSpec {
	return specs.NormalizeConfigSpec{
		DateKeys: []string{"send_at", "sent_at", "date"},
		Fields: []specs.FieldMappingSpec{
			{Field: "sent", SourceKeys: []string{"contacts_count", "sent"}},
			{Field: "delivered", SourceKeys: []string{"delivered_count", "delivered"}},
			{Field: "opened", SourceKeys: []string{"unique_opens", "opened"}},
			{Field: "clicked", SourceKeys: []string{"unique_clicks", "clicked"}},
		},
	}
}

// LeadFunnelFieldMap maps manually entered daily lead rows (local store) onto
// internal fields.
func LeadFunnelFieldMap() specs.NormalizeConfigSpec {
	return specs.NormalizeConfigSpec{
		DateKeys: []string{"date", "createdAt"},
		Fields: []specs.FieldMappingSpec{
			{Field: "visitors", SourceKeys: []string{"visitors"}},
			{Field: "mql", SourceKeys: []string{"mql", "mqls"}},
			{Field: "sql", SourceKeys: []string{"sql", "sqls"}},
			{Field: "customers", SourceKeys: []string{"customers", "wins"}},
			{Field: "mrr", SourceKeys: []string{"mrr", "revenue"}},
		},
	}
}
