package domain

import "time"

// IncidentState is the lifecycle state of an incident record.
type IncidentState string

// Incident states.
const (
	IncidentStateOpen       IncidentState = "open"
	IncidentStateInProgress IncidentState = "inProgress"
	IncidentStateClosed     IncidentState = "closed"
)

// IsValid checks if the incident state is valid.
func (s IncidentState) IsValid() bool {
	switch s {
	case IncidentStateOpen, IncidentStateInProgress, IncidentStateClosed:
		return true
	}
	return false
}

// IncidentStage is the deployment stage an incident occurred in.
type IncidentStage string

// Incident stages.
const (
	StageStaging    IncidentStage = "staging"
	StageProduction IncidentStage = "production"
)

// IsValid checks if the incident stage is valid.
func (s IncidentStage) IsValid() bool {
	return s == StageStaging || s == StageProduction
}

// IncidentRecord is one normalized incident log entry. All timestamps are
// UTC with millisecond precision before the record enters the repository;
// LastReportedAt is never earlier than CreatedAt.
type IncidentRecord struct {
	Service        string        `json:"service"`
	State          IncidentState `json:"state"`
	Stage          IncidentStage `json:"stage"`
	CreatedAt      time.Time     `json:"created_at"`
	LastReportedAt time.Time     `json:"last_reported_at"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
}

// Granularity selects the bucket width for trend aggregation.
type Granularity string

// Trend granularities.
const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// IsValid checks if the granularity is valid.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// TimeBucketKey identifies one aggregation bucket. It is a grouping key
// only and is never persisted.
type TimeBucketKey struct {
	PeriodStart time.Time   `json:"period_start"`
	Granularity Granularity `json:"granularity"`
}
