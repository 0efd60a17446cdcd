package ai

import (
	"context"
	"fmt"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// SettingsResolver produces the effective governance settings for a tenant.
// A tenant with no stored row gets the disabled default rather than an
// error, so admission can fail the run with a reason instead of crashing.
type SettingsResolver struct {
	store SettingsStore
}

func NewSettingsResolver(store SettingsStore) *SettingsResolver {
	return &SettingsResolver{store: store}
}

func (r *SettingsResolver) Resolve(ctx context.Context, tenantID string) (*models.TenantAiSettingModel, error) {
	setting, err := r.store.ByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve ai settings for tenant %s: %w", tenantID, err)
	}
	if setting == nil {
		return models.DefaultTenantAiSetting(tenantID), nil
	}
	return setting, nil
}
