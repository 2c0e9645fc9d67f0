package status

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// SlackProbe checks Slack via its status API v2.0.0, which reports a global
// status plus a list of active incidents typed incident/maintenance/notice.
type SlackProbe struct {
	provider Provider
	apiURL   string
	client   *Client
	clock    Clock
	seed     uint64
}

// NewSlackProbe creates a probe for the Slack status API.
// apiURL is typically "https://slack-status.com/api/v2.0.0/current".
func NewSlackProbe(provider Provider, apiURL string, client *Client, clock Clock, seed uint64) *SlackProbe {
	return &SlackProbe{
		provider: provider,
		apiURL:   apiURL,
		client:   client,
		clock:    clock,
		seed:     seed,
	}
}

// Provider returns the provider descriptor.
func (p *SlackProbe) Provider() Provider { return p.provider }

type slackCurrent struct {
	Status          string `json:"status"`
	ActiveIncidents []struct {
		Type     string   `json:"type"`
		Title    string   `json:"title"`
		Services []string `json:"services"`
	} `json:"active_incidents"`
}

// Check queries the Slack status API and reduces active incidents to a
// grade: a confirmed incident outranks maintenance, which outranks notices.
func (p *SlackProbe) Check(ctx context.Context) domain.ServiceStatus {
	body, err := p.client.Get(ctx, p.apiURL)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("slack probe failed",
			"provider", p.provider.ID,
			"error", err,
		)
		return SynthesizeFallback(p.provider, p.clock(), p.seed)
	}

	var payload slackCurrent
	if err := json.Unmarshal(body, &payload); err != nil {
		ctxlog.FromContext(ctx).Warn("slack probe returned malformed response",
			"provider", p.provider.ID,
			"error", err,
		)
		return SynthesizeFallback(p.provider, p.clock(), p.seed)
	}

	grade := domain.GradeOperational
	if !strings.EqualFold(payload.Status, "ok") {
		grade = p.reduceIncidents(payload)
	}

	return domain.NewServiceStatus(p.provider.ID, p.provider.DisplayName, grade, nil, p.clock(), domain.SourceLive)
}

func (p *SlackProbe) reduceIncidents(payload slackCurrent) domain.StatusGrade {
	// Status not ok but nothing listed: the incident likely just cleared.
	if len(payload.ActiveIncidents) == 0 {
		return domain.GradeOperational
	}

	for _, inc := range payload.ActiveIncidents {
		if strings.EqualFold(inc.Type, "incident") {
			return domain.GradePartialOutage
		}
	}

	// Only maintenance windows or untyped notices remain.
	return domain.GradeDegradedPerformance
}
