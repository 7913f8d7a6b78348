package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthops/rollup/internal"
	specs "github.com/growthops/rollup/specs"
)

func TestGA4FieldMap(t *testing.T) {
	t.Run("maps a GA4 data api row", func(t *testing.T) {
		result, err := internal.Normalize([]specs.RawRowSpec{
			{
				"date":       "20240115",
				"sessions":   "340",
				"totalUsers": "280",
				"bounceRate": "0.42",
				"keyEvents":  "12",
			},
		}, GA4FieldMap())

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), record.Timestamp)
		assert.Equal(t, "340", record.Fields["sessions"])
		assert.Equal(t, "280", record.Fields["users"])
		assert.Equal(t, "0.42", record.Fields["bounceRate"])
		assert.Equal(t, "12", record.Fields["conversions"])
	})

	t.Run("falls back to activeUsers and conversions keys", func(t *testing.T) {
		result, err := internal.Normalize([]specs.RawRowSpec{
			{"date": "20240115", "activeUsers": "150", "conversions": "9"},
		}, GA4FieldMap())

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "150", result.Records[0].Fields["users"])
		assert.Equal(t, "9", result.Records[0].Fields["conversions"])
	})
}

func TestMetaAdsFieldMap(t *testing.T) {
	t.Run("maps a meta insights row", func(t *testing.T) {
		result, err := internal.Normalize([]specs.RawRowSpec{
			{
				"date_start":         "2024-01-15",
				"date_stop":          "2024-01-15",
				"spend":              "230.50",
				"inline_link_clicks": "87",
				"clicks":             "120",
				"impressions":        "15200",
				"reach":              "9100",
			},
		}, MetaAdsFieldMap())

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, "230.50", record.Fields["spend"])
		assert.Equal(t, "87", record.Fields["clicks"], "link clicks preferred over all clicks")
		assert.Equal(t, "15200", record.Fields["impressions"])
	})
}

func TestRDStationEmailFieldMap(t *testing.T) {
	t.Run("maps an email campaign row with timestamp date", func(t *testing.T) {
		result, err := internal.Normalize([]specs.RawRowSpec{
			{
				"send_at":         "2024-03-05T09:00:00Z",
				"contacts_count":  "5000",
				"delivered_count": "4880",
				"unique_opens":    "1220",
				"unique_clicks":   "305",
			},
		}, RDStationEmailFieldMap())

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), record.Timestamp)
		assert.Equal(t, "5000", record.Fields["sent"])
		assert.Equal(t, "4880", record.Fields["delivered"])
		assert.Equal(t, "1220", record.Fields["opened"])
		assert.Equal(t, "305", record.Fields["clicked"])
	})
}

func TestLeadFunnelFieldMap(t *testing.T) {
	t.Run("maps a manually entered funnel row", func(t *testing.T) {
		result, err := internal.Normalize([]specs.RawRowSpec{
			{"date": "2024-01-15", "visitors": "900", "mqls": "40", "sqls": "12", "wins": "3", "mrr": "1500"},
		}, LeadFunnelFieldMap())

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, "900", record.Fields["visitors"])
		assert.Equal(t, "40", record.Fields["mql"])
		assert.Equal(t, "12", record.Fields["sql"])
		assert.Equal(t, "3", record.Fields["customers"])
		assert.Equal(t, "1500", record.Fields["mrr"])
	})
}

func TestLimits(t *testing.T) {
	t.Run("rd station caps the query span at forty days", func(t *testing.T) {
		assert.Equal(t, 40, RDStationLimits.MaxSpanDays)
		assert.Equal(t, 10, RDStationLimits.MaxPagesPerWindow)
	})
}
