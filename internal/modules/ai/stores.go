package ai

import (
	"context"
	"time"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// RunStore persists AI run records. Lookups that feed admission gates are
// always tenant-scoped; a global aggregate would leak one tenant's usage
// into another's limits.
type RunStore interface {
	Create(ctx context.Context, run *models.AiRunModel) error
	Get(ctx context.Context, id string) (*models.AiRunModel, error)
	Update(ctx context.Context, run *models.AiRunModel) error

	// CountActiveToday counts the tenant's runs of the given task created on
	// the calendar day of `day` whose status is queued, running or success,
	// excluding excludeRunID.
	CountActiveToday(ctx context.Context, tenantID string, task models.AiTask, day time.Time, excludeRunID string) (int64, error)

	// SumMonthlyCost sums cost_cents of the tenant's successful runs of the
	// given task created in the calendar month of `month`, excluding
	// excludeRunID.
	SumMonthlyCost(ctx context.Context, tenantID string, task models.AiTask, month time.Time, excludeRunID string) (int64, error)

	// FindReusable returns a prior successful run of the same tenant,
	// document version, task, input hash and prompt version, or nil.
	FindReusable(ctx context.Context, tenantID, versionID string, task models.AiTask, inputHash, promptVersion, excludeRunID string) (*models.AiRunModel, error)
}

// OutputStore persists structured run outputs, one per successful run.
type OutputStore interface {
	Upsert(ctx context.Context, out *models.AiOutputModel) error
	ByRunID(ctx context.Context, runID string) (*models.AiOutputModel, error)
}

// DocumentStore is the read-only view of the document source the pipeline
// consumes. Missing rows return (nil, nil).
type DocumentStore interface {
	Version(ctx context.Context, id string) (*models.DocumentVersionModel, error)
	Document(ctx context.Context, id string) (*models.DocumentModel, error)
}

// SettingsStore reads per-tenant governance configuration. Absence is a
// valid state and returns (nil, nil).
type SettingsStore interface {
	ByTenant(ctx context.Context, tenantID string) (*models.TenantAiSettingModel, error)
}

// BreakerStore is the atomic counter store behind the circuit breaker. Incr
// must increment and refresh the TTL as one atomic operation.
type BreakerStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}
