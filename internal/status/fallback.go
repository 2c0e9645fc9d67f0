package status

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Fallback grades are drawn from this set, weighted toward healthy. A
// fallback is a stand-in for a provider we could not reach, so it never
// claims anything worse than degraded performance; the worst observed live
// grade therefore always wins the snapshot reduction.
var fallbackGrades = []domain.StatusGrade{
	domain.GradeOperational,
	domain.GradeOperational,
	domain.GradeOperational,
	domain.GradeDegradedPerformance,
}

var fallbackSubServiceNames = []string{"API", "Dashboard", "Webhooks", "CDN", "Authentication"}

// SynthesizeFallback builds a plausible mocked ServiceStatus for a provider
// whose probe failed or timed out. Output is deterministic for a given
// (provider, seed) pair: the provider id is folded into the seed so distinct
// providers get distinct but reproducible content.
func SynthesizeFallback(p Provider, now time.Time, seed uint64) domain.ServiceStatus {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.ID))
	rng := rand.New(rand.NewPCG(seed, h.Sum64()))

	subCount := 2 + rng.IntN(len(fallbackSubServiceNames)-1)
	subs := make([]domain.SubServiceStatus, subCount)
	for i := range subs {
		subs[i] = domain.SubServiceStatus{
			Name:  fallbackSubServiceNames[i],
			Grade: fallbackGrades[rng.IntN(len(fallbackGrades))],
		}
	}

	return domain.NewServiceStatus(p.ID, p.DisplayName, domain.GradeUnknown, subs, now, domain.SourceFallback)
}
