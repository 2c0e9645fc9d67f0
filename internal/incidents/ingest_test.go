package incidents

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusdeck/statusdeck/internal/domain"
)

func validRow(service string) RawRow {
	return RawRow{
		Service:   service,
		State:     "open",
		Stage:     "production",
		CreatedAt: "2024-03-01T10:00:00.000Z",
		Title:     "Something broke",
	}
}

func TestParseIngestTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{
			name:     "canonical millisecond format",
			raw:      "2024-03-01T10:00:00.123Z",
			expected: time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC),
		},
		{
			name:     "rfc3339 with offset normalized to utc",
			raw:      "2024-03-01T11:00:00+01:00",
			expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "naive datetime interpreted as utc",
			raw:      "2024-03-01T10:00:00",
			expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "space-separated datetime",
			raw:      "2024-03-01 10:00:00",
			expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "bare date",
			raw:      "2024-03-01",
			expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "sub-millisecond precision truncated",
			raw:      "2024-03-01T10:00:00.123456789Z",
			expected: time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIngestTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseIngestTimestamp("yesterday-ish")
		assert.Error(t, err)
	})
}

func TestNormalizeRows_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		row   RawRow
		field string
	}{
		{"missing service", RawRow{State: "open", Stage: "production", CreatedAt: "2024-03-01"}, "service"},
		{"missing state", RawRow{Service: "api", Stage: "production", CreatedAt: "2024-03-01"}, "state"},
		{"missing stage", RawRow{Service: "api", State: "open", CreatedAt: "2024-03-01"}, "stage"},
		{"missing created_at", RawRow{Service: "api", State: "open", Stage: "production"}, "created_at"},
		{"bad state", RawRow{Service: "api", State: "pending", Stage: "production", CreatedAt: "2024-03-01"}, "state"},
		{"bad stage", RawRow{Service: "api", State: "open", Stage: "qa", CreatedAt: "2024-03-01"}, "stage"},
		{"bad created_at", RawRow{Service: "api", State: "open", Stage: "production", CreatedAt: "not a date"}, "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, rowErrs := NormalizeRows([]RawRow{tt.row})
			assert.Empty(t, records)
			require.Len(t, rowErrs, 1)
			assert.Equal(t, tt.field, rowErrs[0].Field)
			assert.Equal(t, 0, rowErrs[0].Row)
		})
	}
}

func TestNormalizeRows_StateAndStageAliases(t *testing.T) {
	rows := []RawRow{
		{Service: "api", State: "In Progress", Stage: "PROD", CreatedAt: "2024-03-01"},
		{Service: "api", State: "in_progress", Stage: "staging", CreatedAt: "2024-03-01"},
		{Service: "api", State: "CLOSED", Stage: "production", CreatedAt: "2024-03-01"},
	}

	records, rowErrs := NormalizeRows(rows)
	require.Empty(t, rowErrs)
	require.Len(t, records, 3)

	assert.Equal(t, domain.IncidentStateInProgress, records[0].State)
	assert.Equal(t, domain.StageProduction, records[0].Stage)
	assert.Equal(t, domain.IncidentStateInProgress, records[1].State)
	assert.Equal(t, domain.StageStaging, records[1].Stage)
	assert.Equal(t, domain.IncidentStateClosed, records[2].State)
}

func TestNormalizeRows_LastReportedNeverPrecedesCreated(t *testing.T) {
	t.Run("defaults to created_at", func(t *testing.T) {
		records, rowErrs := NormalizeRows([]RawRow{validRow("api")})
		require.Empty(t, rowErrs)
		require.Len(t, records, 1)
		assert.Equal(t, records[0].CreatedAt, records[0].LastReportedAt)
	})

	t.Run("earlier value clamped to created_at", func(t *testing.T) {
		row := validRow("api")
		row.LastReportedAt = "2024-02-01T00:00:00.000Z"
		records, rowErrs := NormalizeRows([]RawRow{row})
		require.Empty(t, rowErrs)
		assert.Equal(t, records[0].CreatedAt, records[0].LastReportedAt)
	})

	t.Run("later value kept", func(t *testing.T) {
		row := validRow("api")
		row.LastReportedAt = "2024-03-02T12:00:00.000Z"
		records, rowErrs := NormalizeRows([]RawRow{row})
		require.Empty(t, rowErrs)
		assert.True(t, records[0].LastReportedAt.After(records[0].CreatedAt))
	})
}

func TestIngest_BadRowsDoNotBlockGoodOnes(t *testing.T) {
	repo := NewRepository()

	// 100 rows, 3 with a missing state.
	rows := make([]RawRow, 0, 100)
	for i := 0; i < 100; i++ {
		row := validRow(fmt.Sprintf("service-%d", i))
		if i == 10 || i == 50 || i == 99 {
			row.State = ""
		}
		rows = append(rows, row)
	}

	report := Ingest(repo, rows)

	assert.Equal(t, 97, report.Accepted)
	require.Len(t, report.Rejected, 3)
	assert.Equal(t, uint64(1), report.Generation)
	assert.NotEmpty(t, report.ID)

	for _, rowErr := range report.Rejected {
		assert.Equal(t, "state", rowErr.Field)
	}
	assert.Equal(t, []int{10, 50, 99}, []int{
		report.Rejected[0].Row, report.Rejected[1].Row, report.Rejected[2].Row,
	})

	records, gen := repo.Snapshot()
	assert.Len(t, records, 97)
	assert.Equal(t, uint64(1), gen)
}

func TestIngest_ReplacesPreviousGenerationWholesale(t *testing.T) {
	repo := NewRepository()

	Ingest(repo, []RawRow{validRow("old-a"), validRow("old-b")})
	report := Ingest(repo, []RawRow{validRow("new")})

	assert.Equal(t, uint64(2), report.Generation)

	records, _ := repo.Snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].Service)
}
