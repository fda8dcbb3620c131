package providers

import (
	"github.com/samber/do/v2"

	"github.com/sproutme/sprout-server/internal/config"
	"github.com/sproutme/sprout-server/internal/logger"
	"github.com/sproutme/sprout-server/internal/upstream"
)

// UpstreamHandle wraps the upstream client with shutdown capability.
type UpstreamHandle struct {
	*upstream.Client
}

// Shutdown implements do.Shutdownable.
func (h *UpstreamHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideUpstreamClient provides the rate-limited SproutMe backend client.
func ProvideUpstreamClient(i do.Injector) (*UpstreamHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := upstream.New(upstream.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
	}, log.Logger)

	log.Info("Upstream client ready",
		"base_url", cfg.Upstream.BaseURL,
		"timeout", cfg.Upstream.Timeout,
	)

	return &UpstreamHandle{Client: client}, nil
}
