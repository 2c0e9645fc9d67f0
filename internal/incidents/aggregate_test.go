package incidents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusdeck/statusdeck/internal/domain"
)

func incident(service string, state domain.IncidentState, stage domain.IncidentStage, createdAt string) domain.IncidentRecord {
	t, err := time.Parse(domain.TimestampLayout, createdAt)
	if err != nil {
		panic(err)
	}
	return domain.IncidentRecord{
		Service:        service,
		State:          state,
		Stage:          stage,
		CreatedAt:      t,
		LastReportedAt: t,
	}
}

func sampleRecords() []domain.IncidentRecord {
	return []domain.IncidentRecord{
		incident("payments-api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-01T10:00:00.000Z"),
		incident("payments-api", domain.IncidentStateClosed, domain.StageStaging, "2024-03-02T08:30:00.000Z"),
		incident("auth-service", domain.IncidentStateInProgress, domain.StageProduction, "2024-03-05T23:59:59.999Z"),
		incident("search", domain.IncidentStateClosed, domain.StageProduction, "2024-03-10T00:00:00.000Z"),
	}
}

func TestFilter_DateRangeRoundTrip(t *testing.T) {
	records := []domain.IncidentRecord{
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-01T10:00:00.000Z"),
	}

	t.Run("containing day matches", func(t *testing.T) {
		got, err := Filter(records, Query{
			From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 1, 23, 59, 59, 999000000, time.UTC),
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("later range excludes", func(t *testing.T) {
		got, err := Filter(records, Query{
			From: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 31, 23, 59, 59, 999000000, time.UTC),
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFilter_PredicatesANDTogether(t *testing.T) {
	got, err := Filter(sampleRecords(), Query{
		Service: "payments-api",
		Stage:   domain.StageProduction,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.IncidentStateOpen, got[0].State)
}

func TestFilter_SearchTextCaseInsensitive(t *testing.T) {
	tests := []struct {
		search   string
		expected int
	}{
		{"PAYMENTS", 2},
		{"payments", 2},
		{"Auth", 1},
		{"api", 2},
		{"nothing-matches", 0},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := Filter(sampleRecords(), Query{SearchText: tt.search})
			require.NoError(t, err)
			assert.Len(t, got, tt.expected)
		})
	}
}

func TestFilter_MalformedRangeRejected(t *testing.T) {
	_, err := Filter(sampleRecords(), Query{
		From: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestComputeKPIs(t *testing.T) {
	k := ComputeKPIs(sampleRecords())

	assert.Equal(t, 4, k.Total)
	// In-progress counts as open: open + closed == total.
	assert.Equal(t, 2, k.Open)
	assert.Equal(t, 2, k.Closed)
	assert.Equal(t, k.Total, k.Open+k.Closed)
	assert.Equal(t, 3, k.ProdCount)
	assert.Equal(t, 1, k.StagingCount)
	assert.Equal(t, k.Total, k.ProdCount+k.StagingCount)
}

func TestComputeKPIs_EmptySet(t *testing.T) {
	k := ComputeKPIs(nil)
	assert.Equal(t, KPIs{}, k)
}

func TestBucketTrend_DailyZeroFill(t *testing.T) {
	// Incidents only on day 1 and day 5 of a 5-day range.
	records := []domain.IncidentRecord{
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-01T10:00:00.000Z"),
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-05T09:00:00.000Z"),
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC)

	buckets, err := BucketTrend(records, domain.GranularityDaily, from, to)
	require.NoError(t, err)

	require.Len(t, buckets, 5)
	counts := make([]int, len(buckets))
	for i, b := range buckets {
		counts[i] = b.Count
		assert.Equal(t, domain.GranularityDaily, b.Key.Granularity)
		assert.Equal(t, from.AddDate(0, 0, i), b.Key.PeriodStart)
	}
	assert.Equal(t, []int{1, 0, 0, 0, 1}, counts)
}

func TestBucketTrend_WeeklyStartsMonday(t *testing.T) {
	// 2024-03-01 is a Friday; its week starts Monday 2024-02-26.
	records := []domain.IncidentRecord{
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-01T10:00:00.000Z"),
	}

	buckets, err := BucketTrend(records, domain.GranularityWeekly, time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), buckets[0].Key.PeriodStart)
	assert.Equal(t, time.Monday, buckets[0].Key.PeriodStart.Weekday())
}

func TestBucketTrend_Monthly(t *testing.T) {
	records := []domain.IncidentRecord{
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-01-15T10:00:00.000Z"),
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-20T10:00:00.000Z"),
	}

	buckets, err := BucketTrend(records, domain.GranularityMonthly, time.Time{}, time.Time{})
	require.NoError(t, err)

	// January through March, February zero-filled.
	require.Len(t, buckets, 3)
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 0, buckets[1].Count)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), buckets[1].Key.PeriodStart)
	assert.Equal(t, 1, buckets[2].Count)
}

func TestBucketTrend_EmptySet(t *testing.T) {
	t.Run("no range derivable", func(t *testing.T) {
		buckets, err := BucketTrend(nil, domain.GranularityDaily, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, buckets)
	})

	t.Run("explicit range still zero-filled", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
		buckets, err := BucketTrend(nil, domain.GranularityDaily, from, to)
		require.NoError(t, err)
		require.Len(t, buckets, 3)
		for _, b := range buckets {
			assert.Zero(t, b.Count)
		}
	})
}

func TestBucketTrend_InvalidInput(t *testing.T) {
	_, err := BucketTrend(nil, "hourly", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = BucketTrend(nil, domain.GranularityDaily,
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSparkline_ExactWindowLength(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	records := []domain.IncidentRecord{
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-10T10:00:00.000Z"),
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-10T11:00:00.000Z"),
		incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-03-05T10:00:00.000Z"),
		incident("other", domain.IncidentStateOpen, domain.StageProduction, "2024-03-10T10:00:00.000Z"),
	}

	points := Sparkline(records, "api", 7, now)

	require.Len(t, points, 7, "length contract holds regardless of sparsity")
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), points[0].Day)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), points[6].Day)

	counts := make([]int, len(points))
	for i, p := range points {
		counts[i] = p.Count
	}
	assert.Equal(t, []int{0, 1, 0, 0, 0, 0, 2}, counts)
}

func TestSparkline_EmptyAndEdgeCases(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no records still full length", func(t *testing.T) {
		points := Sparkline(nil, "api", 30, now)
		require.Len(t, points, 30)
		for _, p := range points {
			assert.Zero(t, p.Count)
		}
	})

	t.Run("records outside window ignored", func(t *testing.T) {
		records := []domain.IncidentRecord{
			incident("api", domain.IncidentStateOpen, domain.StageProduction, "2024-01-01T10:00:00.000Z"),
		}
		points := Sparkline(records, "api", 7, now)
		require.Len(t, points, 7)
		for _, p := range points {
			assert.Zero(t, p.Count)
		}
	})

	t.Run("non-positive window", func(t *testing.T) {
		assert.Empty(t, Sparkline(nil, "api", 0, now))
	})
}
