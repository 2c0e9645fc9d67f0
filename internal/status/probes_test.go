package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusdeck/statusdeck/internal/domain"
)

var testClock = func() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func testClient() *Client {
	return NewClient(ClientConfig{
		UserAgent:         "statusdeck-test",
		RequestsPerSecond: 1000,
		Timeout:           2 * time.Second,
	})
}

func TestStatusPageProbe_IndicatorAndComponents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/status.json":
			_, _ = w.Write([]byte(`{"status":{"indicator":"minor","description":"Minor outage"}}`))
		case "/api/v2/components.json":
			_, _ = w.Write([]byte(`{"components":[
				{"name":"API Requests","status":"degraded_performance","group":false},
				{"name":"Webhooks","status":"operational","group":false},
				{"name":"Everything","status":"operational","group":true}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "github", DisplayName: "GitHub"}, server.URL, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceLive, result.Source)
	assert.Equal(t, domain.GradeDegradedPerformance, result.Grade)
	require.Len(t, result.SubServices, 2, "component groups must be skipped")
	assert.Equal(t, "API Requests", result.SubServices[0].Name)
	assert.Equal(t, testClock(), result.LastCheckedAt)
}

func TestStatusPageProbe_IndicatorWithoutComponents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/status.json" {
			_, _ = w.Write([]byte(`{"status":{"indicator":"none"}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "cloudflare", DisplayName: "Cloudflare"}, server.URL, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	// A page-level grade without a component breakdown is still live.
	assert.Equal(t, domain.SourceLive, result.Source)
	assert.Equal(t, domain.GradeOperational, result.Grade)
	assert.Empty(t, result.SubServices)
}

func TestStatusPageProbe_EmptyIndicatorUsesComponents(t *testing.T) {
	// Some StatusPage instances serve an empty indicator while the
	// component breakdown still reports the outage.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/status.json":
			_, _ = w.Write([]byte(`{"status":{"indicator":""}}`))
		case "/api/v2/components.json":
			_, _ = w.Write([]byte(`{"components":[
				{"name":"API","status":"major_outage","group":false},
				{"name":"CDN","status":"operational","group":false}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "docker", DisplayName: "Docker"}, server.URL, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceLive, result.Source, "an outage visible in components must not be replaced by a fallback")
	assert.Equal(t, domain.GradeMajorOutage, result.Grade)
	require.Len(t, result.SubServices, 2)
}

func TestStatusPageProbe_EmptyIndicatorWithoutComponentsYieldsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/status.json" {
			_, _ = w.Write([]byte(`{"status":{"indicator":""}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "docker", DisplayName: "Docker"}, server.URL, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceFallback, result.Source)
}

func TestStatusPageProbe_FailureYieldsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "github", DisplayName: "GitHub"}, server.URL, testClient(), testClock, 7)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.Equal(t, SynthesizeFallback(Provider{ID: "github", DisplayName: "GitHub"}, testClock(), 7), result)
}

func TestStatusPageProbe_MalformedResponseYieldsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	probe := NewStatusPageProbe(Provider{ID: "docker", DisplayName: "Docker"}, server.URL, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceFallback, result.Source)
}

func TestKeywordProbe_FirstMatchWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>Service degradation reported. All services are healthy elsewhere.</html>`))
	}))
	defer server.Close()

	rules := []PhraseRule{
		{Phrase: "outage", Grade: domain.GradeMajorOutage},
		{Phrase: "degradation", Grade: domain.GradeDegradedPerformance},
		{Phrase: "all services are healthy", Grade: domain.GradeOperational},
	}

	probe := NewKeywordProbe(Provider{ID: "azure", DisplayName: "Azure"}, server.URL, rules, domain.GradeOperational, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceLive, result.Source)
	assert.Equal(t, domain.GradeDegradedPerformance, result.Grade)
}

func TestKeywordProbe_NoMatchUsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>nothing recognizable</html>`))
	}))
	defer server.Close()

	probe := NewKeywordProbe(Provider{ID: "aws", DisplayName: "AWS"}, server.URL, awsRules, domain.GradeOperational, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.GradeOperational, result.Grade)
}

func TestKeywordProbe_UnreachableYieldsFallback(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close() // probe hits a dead server

	probe := NewKeywordProbe(Provider{ID: "aws", DisplayName: "AWS"}, server.URL, awsRules, domain.GradeOperational, testClient(), testClock, 1)
	result := probe.Check(context.Background())

	assert.Equal(t, domain.SourceFallback, result.Source)
}

func TestSlackProbe(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected domain.StatusGrade
	}{
		{
			name:     "global ok",
			body:     `{"status":"ok","active_incidents":[]}`,
			expected: domain.GradeOperational,
		},
		{
			name:     "active incident",
			body:     `{"status":"active","active_incidents":[{"type":"incident","title":"Trouble"}]}`,
			expected: domain.GradePartialOutage,
		},
		{
			name:     "maintenance only",
			body:     `{"status":"active","active_incidents":[{"type":"maintenance","title":"Planned work"}]}`,
			expected: domain.GradeDegradedPerformance,
		},
		{
			name:     "not ok but nothing listed",
			body:     `{"status":"active","active_incidents":[]}`,
			expected: domain.GradeOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			probe := NewSlackProbe(Provider{ID: "slack", DisplayName: "Slack"}, server.URL, testClient(), testClock, 1)
			result := probe.Check(context.Background())

			assert.Equal(t, domain.SourceLive, result.Source)
			assert.Equal(t, tt.expected, result.Grade)
		})
	}
}

func TestClient_SendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{UserAgent: "statusdeck-test", RequestsPerSecond: 1000})
	_, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "statusdeck-test", gotAgent)
}

func TestClient_RateLimitIsPerHost(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	servers := make([]*httptest.Server, 5)
	for i := range servers {
		servers[i] = httptest.NewServer(handler)
		defer servers[i].Close()
	}

	// Default rate: with one shared limiter (burst 2) the third request
	// would be pushed past this deadline; per-host limiters admit one
	// request per provider immediately.
	client := NewClient(ClientConfig{UserAgent: "statusdeck-test"})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	for _, server := range servers {
		_, err := client.Get(ctx, server.URL)
		require.NoError(t, err, "a probe must not queue behind another provider's limiter")
	}
}

func TestClient_BurstCoversStatusPageRequestPair(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{UserAgent: "statusdeck-test"})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL+"/api/v2/status.json")
	require.NoError(t, err)
	_, err = client.Get(ctx, server.URL+"/api/v2/components.json")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestDefaultRegistry_FixedProviderSet(t *testing.T) {
	probes := DefaultRegistry(testClient(), testClock, 1)

	require.Len(t, probes, 9)

	ids := make([]string, len(probes))
	for i, p := range probes {
		ids[i] = p.Provider().ID
	}
	assert.Equal(t, []string{
		"aws", "gcloud", "azure", "atlassian-jira", "cloudflare",
		"slack", "docker", "github", "confluence",
	}, ids)
}
