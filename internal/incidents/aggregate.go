package incidents

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Query holds the optional filter predicates. Absent predicates (zero
// values) impose no restriction; present ones AND together.
type Query struct {
	From       time.Time
	To         time.Time
	Service    string
	Stage      domain.IncidentStage
	State      domain.IncidentState
	SearchText string
}

// caseFolder performs Unicode case folding for the case-insensitive
// searchText match.
var caseFolder = cases.Fold()

// Filter applies q to records and returns the matching subset in input
// order. A malformed query is rejected up front; no partial result is
// returned.
func Filter(records []domain.IncidentRecord, q Query) ([]domain.IncidentRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	search := caseFolder.String(q.SearchText)

	out := make([]domain.IncidentRecord, 0, len(records))
	for _, rec := range records {
		if !q.From.IsZero() && rec.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && rec.CreatedAt.After(q.To) {
			continue
		}
		if q.Service != "" && rec.Service != q.Service {
			continue
		}
		if q.Stage != "" && rec.Stage != q.Stage {
			continue
		}
		if q.State != "" && rec.State != q.State {
			continue
		}
		if search != "" && !strings.Contains(caseFolder.String(rec.Service), search) {
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}

func (q Query) validate() error {
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			domain.FormatTimestamp(q.From), domain.FormatTimestamp(q.To))
	}
	if q.State != "" && !q.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, q.State)
	}
	if q.Stage != "" && !q.Stage.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, q.Stage)
	}
	return nil
}

// KPIs are plain counts over a filtered record set. ProdCount plus
// StagingCount always equals Total; in-progress incidents count as open.
type KPIs struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	Closed       int `json:"closed"`
	ProdCount    int `json:"prod_count"`
	StagingCount int `json:"staging_count"`
}

// ComputeKPIs counts the record set. The empty set yields all zeros.
func ComputeKPIs(records []domain.IncidentRecord) KPIs {
	k := KPIs{Total: len(records)}
	for _, rec := range records {
		if rec.State == domain.IncidentStateClosed {
			k.Closed++
		} else {
			k.Open++
		}
		if rec.Stage == domain.StageProduction {
			k.ProdCount++
		} else {
			k.StagingCount++
		}
	}
	return k
}

// TrendBucket is one time bucket with its incident count.
type TrendBucket struct {
	Key   domain.TimeBucketKey `json:"key"`
	Count int                  `json:"count"`
}

// BucketTrend groups records by createdAt truncated to the bucket boundary
// and emits one entry per bucket across the full [from, to] range, zero
// counts included, so chart axes stay continuous. When from or to is zero
// the range is derived from the records; an empty set with no explicit
// range yields no buckets.
func BucketTrend(records []domain.IncidentRecord, granularity domain.Granularity, from, to time.Time) ([]TrendBucket, error) {
	if !granularity.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGranularity, granularity)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			domain.FormatTimestamp(from), domain.FormatTimestamp(to))
	}

	if from.IsZero() || to.IsZero() {
		lo, hi, ok := recordBounds(records)
		if !ok {
			return []TrendBucket{}, nil
		}
		if from.IsZero() {
			from = lo
		}
		if to.IsZero() {
			to = hi
		}
	}

	counts := make(map[time.Time]int)
	for _, rec := range records {
		if rec.CreatedAt.Before(from) || rec.CreatedAt.After(to) {
			continue
		}
		counts[truncateToBucket(rec.CreatedAt, granularity)]++
	}

	var buckets []TrendBucket
	end := truncateToBucket(to, granularity)
	for cur := truncateToBucket(from, granularity); !cur.After(end); cur = nextBucket(cur, granularity) {
		buckets = append(buckets, TrendBucket{
			Key:   domain.TimeBucketKey{PeriodStart: cur, Granularity: granularity},
			Count: counts[cur],
		})
	}

	return buckets, nil
}

func recordBounds(records []domain.IncidentRecord) (lo, hi time.Time, ok bool) {
	for _, rec := range records {
		if !ok || rec.CreatedAt.Before(lo) {
			lo = rec.CreatedAt
		}
		if !ok || rec.CreatedAt.After(hi) {
			hi = rec.CreatedAt
		}
		ok = true
	}
	return lo, hi, ok
}

// truncateToBucket truncates t to its bucket boundary in UTC.
// Weeks start on Monday.
func truncateToBucket(t time.Time, granularity domain.Granularity) time.Time {
	t = t.UTC()
	switch granularity {
	case domain.GranularityWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

func nextBucket(t time.Time, granularity domain.Granularity) time.Time {
	switch granularity {
	case domain.GranularityWeekly:
		return t.AddDate(0, 0, 7)
	case domain.GranularityMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// SparklinePoint is one calendar day of a per-service sparkline.
type SparklinePoint struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Sparkline returns exactly windowDays daily entries for one service,
// ending at now's UTC date, zero-filled where no incidents exist. The
// length contract holds regardless of data sparsity.
func Sparkline(records []domain.IncidentRecord, service string, windowDays int, now time.Time) []SparklinePoint {
	if windowDays <= 0 {
		return []SparklinePoint{}
	}

	today := truncateToBucket(now, domain.GranularityDaily)
	start := today.AddDate(0, 0, -(windowDays - 1))

	counts := make(map[time.Time]int)
	for _, rec := range records {
		if service != "" && rec.Service != service {
			continue
		}
		day := truncateToBucket(rec.CreatedAt, domain.GranularityDaily)
		if day.Before(start) || day.After(today) {
			continue
		}
		counts[day]++
	}

	points := make([]SparklinePoint, windowDays)
	for i := range points {
		day := start.AddDate(0, 0, i)
		points[i] = SparklinePoint{Day: day, Count: counts[day]}
	}

	return points
}
