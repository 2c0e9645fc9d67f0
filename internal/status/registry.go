package status

import "github.com/statusdeck/statusdeck/internal/domain"

// awsRules classify the AWS health page. Ordered: outage phrases must be
// checked before the healthy defaults.
var awsRules = []PhraseRule{
	{Phrase: "status3.gif", Grade: domain.GradeMajorOutage},
	{Phrase: "status2.gif", Grade: domain.GradeDegradedPerformance},
	{Phrase: "Service is operating normally", Grade: domain.GradeOperational},
	{Phrase: "No recent issues", Grade: domain.GradeOperational},
}

var azureRules = []PhraseRule{
	{Phrase: "outage", Grade: domain.GradeMajorOutage},
	{Phrase: "unavailable", Grade: domain.GradeMajorOutage},
	{Phrase: "degradation", Grade: domain.GradeDegradedPerformance},
	{Phrase: "service advisory", Grade: domain.GradeDegradedPerformance},
	{Phrase: "all services are healthy", Grade: domain.GradeOperational},
	{Phrase: "no active events", Grade: domain.GradeOperational},
}

var gcloudRules = []PhraseRule{
	{Phrase: "open-incident-bar-high", Grade: domain.GradeMajorOutage},
	{Phrase: "open-incident-bar-medium", Grade: domain.GradePartialOutage},
	{Phrase: "No incidents", Grade: domain.GradeOperational},
	{Phrase: "Available", Grade: domain.GradeOperational},
}

// DefaultRegistry returns the fixed probe set, one per monitored provider.
// Registration order here is the display and snapshot order everywhere.
func DefaultRegistry(client *Client, clock Clock, seed uint64) []Probe {
	return []Probe{
		NewKeywordProbe(Provider{
			ID:          "aws",
			DisplayName: "Amazon Web Services",
			StatusURL:   "https://status.aws.amazon.com/",
			HomeURL:     "https://status.aws.amazon.com/",
			Icon:        "fab fa-aws",
		}, "https://status.aws.amazon.com/", awsRules, domain.GradeOperational, client, clock, seed),

		NewKeywordProbe(Provider{
			ID:          "gcloud",
			DisplayName: "Google Cloud",
			StatusURL:   "https://status.cloud.google.com/",
			HomeURL:     "https://status.cloud.google.com/",
			Icon:        "fab fa-google",
		}, "https://status.cloud.google.com/", gcloudRules, domain.GradeOperational, client, clock, seed),

		NewKeywordProbe(Provider{
			ID:          "azure",
			DisplayName: "Microsoft Azure",
			StatusURL:   "https://azure.status.microsoft/en-us/status",
			HomeURL:     "https://azure.status.microsoft/en-us/status",
			Icon:        "fab fa-microsoft",
		}, "https://azure.status.microsoft/en-us/status", azureRules, domain.GradeOperational, client, clock, seed),

		NewStatusPageProbe(Provider{
			ID:          "atlassian-jira",
			DisplayName: "Atlassian Jira",
			StatusURL:   "https://jira-software.status.atlassian.com/",
			HomeURL:     "https://jira-software.status.atlassian.com/",
			Icon:        "fab fa-jira",
		}, "https://jira-software.status.atlassian.com", client, clock, seed),

		NewStatusPageProbe(Provider{
			ID:          "cloudflare",
			DisplayName: "Cloudflare",
			StatusURL:   "https://www.cloudflarestatus.com/",
			HomeURL:     "https://www.cloudflarestatus.com/",
			Icon:        "fab fa-cloudflare",
		}, "https://www.cloudflarestatus.com", client, clock, seed),

		NewSlackProbe(Provider{
			ID:          "slack",
			DisplayName: "Slack",
			StatusURL:   "https://status.slack.com/",
			HomeURL:     "https://status.slack.com/",
			Icon:        "fab fa-slack",
		}, "https://slack-status.com/api/v2.0.0/current", client, clock, seed),

		NewStatusPageProbe(Provider{
			ID:          "docker",
			DisplayName: "Docker",
			StatusURL:   "https://status.docker.com/",
			HomeURL:     "https://status.docker.com/",
			Icon:        "fab fa-docker",
		}, "https://status.docker.com", client, clock, seed),

		NewStatusPageProbe(Provider{
			ID:          "github",
			DisplayName: "GitHub",
			StatusURL:   "https://www.githubstatus.com/",
			HomeURL:     "https://www.githubstatus.com/",
			Icon:        "fab fa-github",
		}, "https://www.githubstatus.com", client, clock, seed),

		NewStatusPageProbe(Provider{
			ID:          "confluence",
			DisplayName: "Atlassian Confluence",
			StatusURL:   "https://confluence.status.atlassian.com/",
			HomeURL:     "https://confluence.status.atlassian.com/",
			Icon:        "fab fa-confluence",
		}, "https://confluence.status.atlassian.com", client, clock, seed),
	}
}
