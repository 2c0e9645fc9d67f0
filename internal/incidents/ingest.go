package incidents

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// RawRow is one tabular row handed over by the ingestion collaborator,
// already parsed out of the uploaded file but not yet validated.
type RawRow struct {
	Service        string `json:"service"`
	State          string `json:"state"`
	Stage          string `json:"stage"`
	CreatedAt      string `json:"created_at"`
	LastReportedAt string `json:"last_reported_at"`
	Title          string `json:"title"`
	Description    string `json:"description"`
}

// RowError is a per-row ingestion diagnostic. Bad rows are reported and
// skipped; they never abort ingestion of the remaining rows.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Message)
}

// Report summarizes one bulk ingestion.
type Report struct {
	ID         string     `json:"id"`
	Accepted   int        `json:"accepted"`
	Rejected   []RowError `json:"rejected"`
	Generation uint64     `json:"generation"`
}

// timestamp layouts accepted at the ingestion boundary, most specific
// first. Layouts without timezone information parse as UTC, which is the
// contract for naive values.
var ingestLayouts = []string{
	domain.TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseIngestTimestamp parses a raw timestamp and normalizes it to UTC with
// millisecond precision. This normalization is the hard boundary contract:
// nothing past this point re-parses or re-rounds timestamps.
func parseIngestTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range ingestLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return t.UTC().Truncate(time.Millisecond), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

var stateAliases = map[string]domain.IncidentState{
	"open":        domain.IncidentStateOpen,
	"inprogress":  domain.IncidentStateInProgress,
	"in_progress": domain.IncidentStateInProgress,
	"in progress": domain.IncidentStateInProgress,
	"closed":      domain.IncidentStateClosed,
}

var stageAliases = map[string]domain.IncidentStage{
	"staging":    domain.StageStaging,
	"production": domain.StageProduction,
	"prod":       domain.StageProduction,
}

// NormalizeRows maps raw rows to IncidentRecords, validating required
// fields per row. Valid rows are returned alongside diagnostics for the
// rejected ones; row numbers in diagnostics are zero-based input indices.
func NormalizeRows(rows []RawRow) ([]domain.IncidentRecord, []RowError) {
	records := make([]domain.IncidentRecord, 0, len(rows))
	var rowErrs []RowError

	for i, row := range rows {
		record, err := normalizeRow(i, row)
		if err != nil {
			rowErrs = append(rowErrs, *err)
			continue
		}
		records = append(records, record)
	}

	return records, rowErrs
}

func normalizeRow(idx int, row RawRow) (domain.IncidentRecord, *RowError) {
	service := strings.TrimSpace(row.Service)
	if service == "" {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "service", Message: "required"}
	}

	stateRaw := strings.TrimSpace(row.State)
	if stateRaw == "" {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "state", Message: "required"}
	}
	state, ok := stateAliases[strings.ToLower(stateRaw)]
	if !ok {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "state", Message: fmt.Sprintf("unrecognized value %q", row.State)}
	}

	stageRaw := strings.TrimSpace(row.Stage)
	if stageRaw == "" {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "stage", Message: "required"}
	}
	stage, ok := stageAliases[strings.ToLower(stageRaw)]
	if !ok {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "stage", Message: fmt.Sprintf("unrecognized value %q", row.Stage)}
	}

	if strings.TrimSpace(row.CreatedAt) == "" {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "created_at", Message: "required"}
	}
	createdAt, err := parseIngestTimestamp(row.CreatedAt)
	if err != nil {
		return domain.IncidentRecord{}, &RowError{Row: idx, Field: "created_at", Message: err.Error()}
	}

	// lastReportedAt defaults to createdAt and may never precede it.
	lastReportedAt := createdAt
	if strings.TrimSpace(row.LastReportedAt) != "" {
		lastReportedAt, err = parseIngestTimestamp(row.LastReportedAt)
		if err != nil {
			return domain.IncidentRecord{}, &RowError{Row: idx, Field: "last_reported_at", Message: err.Error()}
		}
		if lastReportedAt.Before(createdAt) {
			lastReportedAt = createdAt
		}
	}

	return domain.IncidentRecord{
		Service:        service,
		State:          state,
		Stage:          stage,
		CreatedAt:      createdAt,
		LastReportedAt: lastReportedAt,
		Title:          strings.TrimSpace(row.Title),
		Description:    strings.TrimSpace(row.Description),
	}, nil
}

// Ingest normalizes rows, swaps the repository generation and returns the
// ingestion report. Rejected rows never block the accepted ones.
func Ingest(repo *Repository, rows []RawRow) Report {
	records, rowErrs := NormalizeRows(rows)
	generation := repo.ReplaceAll(records)

	recordIngestion(len(records), len(rowErrs), generation)

	if rowErrs == nil {
		rowErrs = []RowError{}
	}
	return Report{
		ID:         uuid.NewString(),
		Accepted:   len(records),
		Rejected:   rowErrs,
		Generation: generation,
	}
}
