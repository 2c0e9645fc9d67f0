package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusGrade is the ordered severity of a service's health. Higher values
// are worse; Unknown sorts above every known grade so that an unreachable
// provider is never reported as healthier than a degraded one.
type StatusGrade int

// Status grades, from best to worst.
const (
	GradeOperational StatusGrade = iota
	GradeDegradedPerformance
	GradePartialOutage
	GradeMajorOutage
	GradeUnknown
)

var gradeNames = map[StatusGrade]string{
	GradeOperational:         "operational",
	GradeDegradedPerformance: "degraded_performance",
	GradePartialOutage:       "partial_outage",
	GradeMajorOutage:         "major_outage",
	GradeUnknown:             "unknown",
}

// gradeLabels maps raw provider labels to grades. Providers disagree on
// vocabulary (StatusPage indicators, Slack incident types, page phrases), so
// the mapping is a single explicit table rather than per-probe guesswork.
var gradeLabels = map[string]StatusGrade{
	"operational":          GradeOperational,
	"none":                 GradeOperational,
	"ok":                   GradeOperational,
	"available":            GradeOperational,
	"maintenance":          GradeDegradedPerformance,
	"degraded":             GradeDegradedPerformance,
	"degraded_performance": GradeDegradedPerformance,
	"degraded performance": GradeDegradedPerformance,
	"minor":                GradeDegradedPerformance,
	"partial_outage":       GradePartialOutage,
	"partial outage":       GradePartialOutage,
	"incident":             GradePartialOutage,
	"major":                GradePartialOutage,
	"major_outage":         GradeMajorOutage,
	"major outage":         GradeMajorOutage,
	"critical":             GradeMajorOutage,
	"outage":               GradeMajorOutage,
	"unavailable":          GradeUnknown,
}

// GradeFromLabel maps a raw provider label to a StatusGrade.
// Unrecognized labels map to GradeUnknown.
func GradeFromLabel(label string) StatusGrade {
	if g, ok := gradeLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return g
	}
	return GradeUnknown
}

// String returns the canonical wire name of the grade.
func (g StatusGrade) String() string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return "unknown"
}

// IsValid checks if the grade is one of the five defined values.
func (g StatusGrade) IsValid() bool {
	return g >= GradeOperational && g <= GradeUnknown
}

// WorseThan reports whether g is strictly worse than other.
func (g StatusGrade) WorseThan(other StatusGrade) bool {
	return g > other
}

// WorstGrade returns the worst grade among the given grades.
// An empty input yields GradeUnknown.
func WorstGrade(grades ...StatusGrade) StatusGrade {
	if len(grades) == 0 {
		return GradeUnknown
	}
	worst := grades[0]
	for _, g := range grades[1:] {
		if g.WorseThan(worst) {
			worst = g
		}
	}
	return worst
}

// MarshalJSON encodes the grade as its canonical wire name.
func (g StatusGrade) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a grade from its canonical wire name.
func (g *StatusGrade) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for grade, n := range gradeNames {
		if n == name {
			*g = grade
			return nil
		}
	}
	return fmt.Errorf("unknown status grade %q", name)
}
