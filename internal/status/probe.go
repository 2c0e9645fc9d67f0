// Package status implements provider health probes and the concurrent
// fan-out that reduces them into dashboard snapshots.
package status

import (
	"context"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Provider describes one monitored cloud provider. The set of providers is
// fixed for process lifetime.
type Provider struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	StatusURL   string `json:"status_url"`
	HomeURL     string `json:"home_url"`
	Icon        string `json:"icon"`
}

// Probe performs a single bounded health query for one provider.
//
// Check must honor ctx and must never fail: network errors, malformed
// responses and deadline expiry all produce a fallback ServiceStatus with
// Source set to SourceFallback. The fan-out controller additionally times
// out probes that ignore their context.
type Probe interface {
	Provider() Provider
	Check(ctx context.Context) domain.ServiceStatus
}

// Clock abstracts time.Now so tests can pin timestamps.
type Clock func() time.Time
