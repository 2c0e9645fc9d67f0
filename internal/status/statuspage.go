package status

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// StatusPageProbe checks providers hosted on Atlassian StatusPage via its
// v2 JSON API: /api/v2/status.json gives the page-level indicator, and
// /api/v2/components.json gives the per-component breakdown used for
// sub-service statuses.
type StatusPageProbe struct {
	provider Provider
	baseURL  string
	client   *Client
	clock    Clock
	seed     uint64
}

// NewStatusPageProbe creates a probe for a StatusPage-hosted provider.
// baseURL is the status page root, e.g. "https://www.githubstatus.com".
func NewStatusPageProbe(provider Provider, baseURL string, client *Client, clock Clock, seed uint64) *StatusPageProbe {
	return &StatusPageProbe{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		clock:    clock,
		seed:     seed,
	}
}

// Provider returns the provider descriptor.
func (p *StatusPageProbe) Provider() Provider { return p.provider }

type statusPageStatus struct {
	Status struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
}

type statusPageComponents struct {
	Components []struct {
		Name     string `json:"name"`
		Status   string `json:"status"`
		Group    bool   `json:"group"`
		Position int    `json:"position"`
	} `json:"components"`
}

// Check queries the provider's StatusPage API. Any failure yields a
// fallback status rather than an error. Some pages omit the status.json
// indicator; the grade is then derived from the component breakdown, so a
// real outage visible in components is never papered over by a fallback.
func (p *StatusPageProbe) Check(ctx context.Context) domain.ServiceStatus {
	grade, hasIndicator, err := p.pageIndicator(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("status page probe failed",
			"provider", p.provider.ID,
			"error", err,
		)
		return SynthesizeFallback(p.provider, p.clock(), p.seed)
	}

	subs, err := p.components(ctx)
	if err != nil {
		if !hasIndicator {
			ctxlog.FromContext(ctx).Warn("status page probe failed",
				"provider", p.provider.ID,
				"error", err,
			)
			return SynthesizeFallback(p.provider, p.clock(), p.seed)
		}
		// The breakdown is best-effort once an indicator exists: a
		// page-level grade without sub-services is still a live result.
		ctxlog.FromContext(ctx).Debug("status page components unavailable",
			"provider", p.provider.ID,
			"error", err,
		)
		subs = nil
	}

	if !hasIndicator && len(subs) == 0 {
		ctxlog.FromContext(ctx).Warn("status page probe failed",
			"provider", p.provider.ID,
			"error", fmt.Errorf("no indicator and no components"),
		)
		return SynthesizeFallback(p.provider, p.clock(), p.seed)
	}

	return domain.NewServiceStatus(p.provider.ID, p.provider.DisplayName, grade, subs, p.clock(), domain.SourceLive)
}

func (p *StatusPageProbe) pageIndicator(ctx context.Context) (domain.StatusGrade, bool, error) {
	body, err := p.client.Get(ctx, p.baseURL+"/api/v2/status.json")
	if err != nil {
		return domain.GradeUnknown, false, err
	}

	var payload statusPageStatus
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.GradeUnknown, false, fmt.Errorf("decode status.json: %w", err)
	}
	if payload.Status.Indicator == "" {
		return domain.GradeUnknown, false, nil
	}

	return domain.GradeFromLabel(payload.Status.Indicator), true, nil
}

func (p *StatusPageProbe) components(ctx context.Context) ([]domain.SubServiceStatus, error) {
	body, err := p.client.Get(ctx, p.baseURL+"/api/v2/components.json")
	if err != nil {
		return nil, err
	}

	var payload statusPageComponents
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode components.json: %w", err)
	}

	subs := make([]domain.SubServiceStatus, 0, len(payload.Components))
	for _, c := range payload.Components {
		if c.Group {
			continue
		}
		subs = append(subs, domain.SubServiceStatus{
			Name:  c.Name,
			Grade: domain.GradeFromLabel(c.Status),
		})
	}

	return subs, nil
}
