package status

import (
	"context"
	"strings"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
)

// PhraseRule maps a phrase found in a status page body to a grade.
// Rules are evaluated in order; the first match wins.
type PhraseRule struct {
	Phrase string
	Grade  domain.StatusGrade
}

// KeywordProbe classifies a provider by scanning its status page body for
// known phrases. Providers without a structured status API (AWS, Azure,
// Google Cloud) publish human-readable pages whose wording is stable enough
// to match on.
type KeywordProbe struct {
	provider Provider
	url      string
	rules    []PhraseRule
	fallback domain.StatusGrade
	client   *Client
	clock    Clock
	seed     uint64
}

// NewKeywordProbe creates a phrase-matching probe. fallbackGrade is used
// when the page is reachable but no rule matches.
func NewKeywordProbe(provider Provider, url string, rules []PhraseRule, fallbackGrade domain.StatusGrade, client *Client, clock Clock, seed uint64) *KeywordProbe {
	return &KeywordProbe{
		provider: provider,
		url:      url,
		rules:    rules,
		fallback: fallbackGrade,
		client:   client,
		clock:    clock,
		seed:     seed,
	}
}

// Provider returns the provider descriptor.
func (p *KeywordProbe) Provider() Provider { return p.provider }

// Check fetches the status page and applies the phrase rules.
func (p *KeywordProbe) Check(ctx context.Context) domain.ServiceStatus {
	body, err := p.client.Get(ctx, p.url)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("keyword probe failed",
			"provider", p.provider.ID,
			"error", err,
		)
		return SynthesizeFallback(p.provider, p.clock(), p.seed)
	}

	text := strings.ToLower(string(body))
	grade := p.fallback
	for _, rule := range p.rules {
		if strings.Contains(text, strings.ToLower(rule.Phrase)) {
			grade = rule.Grade
			break
		}
	}

	return domain.NewServiceStatus(p.provider.ID, p.provider.DisplayName, grade, nil, p.clock(), domain.SourceLive)
}
