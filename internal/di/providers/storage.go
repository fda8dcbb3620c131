package providers

import (
	"github.com/samber/do/v2"

	"github.com/sproutme/sprout-server/internal/audit"
	"github.com/sproutme/sprout-server/internal/config"
	"github.com/sproutme/sprout-server/internal/logger"
	"github.com/sproutme/sprout-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Storage.BadgerPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Storage.BadgerPath)

	return &StoreHandle{Store: db}, nil
}

// AuditTrailHandle wraps the audit trail with shutdown capability.
type AuditTrailHandle struct {
	*audit.Trail
}

// Shutdown implements do.Shutdownable.
func (h *AuditTrailHandle) Shutdown() error {
	return h.Close()
}

// ProvideAuditTrail provides the SQLite audit trail.
func ProvideAuditTrail(i do.Injector) (*AuditTrailHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	trail, err := audit.Open(cfg.Storage.AuditPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Audit trail opened", "path", cfg.Storage.AuditPath)

	return &AuditTrailHandle{Trail: trail}, nil
}
