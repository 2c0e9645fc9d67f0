package domain

import "time"

// TimestampLayout is the wire format for every timestamp crossing the API
// boundary: UTC ISO-8601 with millisecond precision. Consumers persist these
// values verbatim, so the format is bit-exact and never relaxed.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the canonical wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// StatusSource indicates whether a ServiceStatus came from a live probe or
// was synthesized because the probe failed or timed out.
type StatusSource string

// Status sources.
const (
	SourceLive     StatusSource = "live"
	SourceFallback StatusSource = "fallback"
)

// SubServiceStatus is one named component of a provider's status breakdown.
type SubServiceStatus struct {
	Name  string      `json:"name"`
	Grade StatusGrade `json:"grade"`
}

// ServiceStatus is the normalized health of one provider at one instant.
// Values are immutable once constructed; a fresh one is built on every poll.
type ServiceStatus struct {
	ServiceID     string             `json:"service_id"`
	DisplayName   string             `json:"display_name"`
	Grade         StatusGrade        `json:"grade"`
	SubServices   []SubServiceStatus `json:"sub_services,omitempty"`
	LastCheckedAt time.Time          `json:"last_checked_at"`
	Source        StatusSource       `json:"source"`
}

// NewServiceStatus builds a ServiceStatus, deriving the top-level grade from
// the sub-service breakdown when one is present. The own grade is used only
// when there are no sub-services.
func NewServiceStatus(serviceID, displayName string, own StatusGrade, subs []SubServiceStatus, checkedAt time.Time, source StatusSource) ServiceStatus {
	grade := own
	if len(subs) > 0 {
		grades := make([]StatusGrade, len(subs))
		for i, s := range subs {
			grades[i] = s.Grade
		}
		grade = WorstGrade(grades...)
	}
	return ServiceStatus{
		ServiceID:     serviceID,
		DisplayName:   displayName,
		Grade:         grade,
		SubServices:   subs,
		LastCheckedAt: checkedAt.UTC(),
		Source:        source,
	}
}

// DashboardSnapshot is one point-in-time capture of all services' statuses.
// Service order matches probe registration order, not completion order.
type DashboardSnapshot struct {
	TakenAt      time.Time       `json:"taken_at"`
	Services     []ServiceStatus `json:"services"`
	OverallGrade StatusGrade     `json:"overall_grade"`
}

// NewDashboardSnapshot builds a snapshot with the overall grade reduced as
// the worst grade across all services.
func NewDashboardSnapshot(takenAt time.Time, services []ServiceStatus) DashboardSnapshot {
	grades := make([]StatusGrade, len(services))
	for i, s := range services {
		grades[i] = s.Grade
	}
	overall := GradeOperational
	if len(services) > 0 {
		overall = WorstGrade(grades...)
	}
	return DashboardSnapshot{
		TakenAt:      takenAt.UTC(),
		Services:     services,
		OverallGrade: overall,
	}
}
