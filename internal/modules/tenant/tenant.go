package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/secret"
)

var errTenantNotFound = errors.New("tenant not found")

// Service manages tenants and their AI governance settings. Provider
// credentials are sealed before they touch the database and are never
// returned to clients.
type Service struct {
	db  *gorm.DB
	box *secret.Box
}

func NewService(db *gorm.DB, box *secret.Box) *Service {
	return &Service{db: db, box: box}
}

func (s *Service) Get(ctx context.Context, id string) (*models.TenantModel, error) {
	var t models.TenantModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type aiSettingsInput struct {
	Provider           models.AiProvider `json:"provider"`
	Enabled            *bool             `json:"enabled"`
	APICredential      *string           `json:"api_credential"`
	Endpoint           *string           `json:"endpoint"`
	DailyDocLimit      *int              `json:"daily_doc_limit"`
	MaxPagesPerDoc     *int              `json:"max_pages_per_doc"`
	MonthlyBudgetCents *int              `json:"monthly_budget_cents"`
	StoreOutputs       *bool             `json:"store_outputs"`
	RedactPII          *bool             `json:"redact_pii"`
}

// aiSettingsView is the client-facing projection. The credential is
// reduced to a presence flag.
type aiSettingsView struct {
	TenantID           string            `json:"tenant_id"`
	Provider           models.AiProvider `json:"provider"`
	Enabled            bool              `json:"enabled"`
	HasCredential      bool              `json:"has_credential"`
	Endpoint           string            `json:"endpoint,omitempty"`
	DailyDocLimit      int               `json:"daily_doc_limit"`
	MaxPagesPerDoc     int               `json:"max_pages_per_doc"`
	MonthlyBudgetCents *int              `json:"monthly_budget_cents,omitempty"`
	StoreOutputs       bool              `json:"store_outputs"`
	RedactPII          bool              `json:"redact_pii"`
}

func viewOf(m *models.TenantAiSettingModel) aiSettingsView {
	return aiSettingsView{
		TenantID:           m.TenantID,
		Provider:           m.Provider,
		Enabled:            m.Enabled,
		HasCredential:      m.APICredential != "",
		Endpoint:           m.Endpoint,
		DailyDocLimit:      m.DailyDocLimit,
		MaxPagesPerDoc:     m.MaxPagesPerDoc,
		MonthlyBudgetCents: m.MonthlyBudgetCents,
		StoreOutputs:       m.StoreOutputs,
		RedactPII:          m.RedactPII,
	}
}

// AiSettings returns the tenant's effective settings view, falling back to
// the disabled default when no row exists.
func (s *Service) AiSettings(ctx context.Context, tenantID string) (aiSettingsView, error) {
	var setting models.TenantAiSettingModel
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return viewOf(models.DefaultTenantAiSetting(tenantID)), nil
	}
	if err != nil {
		return aiSettingsView{}, err
	}
	return viewOf(&setting), nil
}

// UpsertAiSettings applies a partial update, creating the row on first use.
// Only fields present in the input change; a non-empty credential is sealed,
// an empty-string credential clears the stored one.
func (s *Service) UpsertAiSettings(ctx context.Context, tenantID string, in aiSettingsInput) (aiSettingsView, error) {
	var setting models.TenantAiSettingModel
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = *models.DefaultTenantAiSetting(tenantID)
		setting.StoreOutputs = true
	} else if err != nil {
		return aiSettingsView{}, err
	}

	if in.Provider != "" {
		setting.Provider = in.Provider
	}
	if in.Enabled != nil {
		setting.Enabled = *in.Enabled
	}
	if in.APICredential != nil {
		if *in.APICredential == "" {
			setting.APICredential = ""
		} else {
			sealed, err := s.box.Seal(*in.APICredential)
			if err != nil {
				return aiSettingsView{}, err
			}
			setting.APICredential = sealed
		}
	}
	if in.Endpoint != nil {
		setting.Endpoint = *in.Endpoint
	}
	if in.DailyDocLimit != nil {
		setting.DailyDocLimit = *in.DailyDocLimit
	}
	if in.MaxPagesPerDoc != nil {
		setting.MaxPagesPerDoc = *in.MaxPagesPerDoc
	}
	if in.MonthlyBudgetCents != nil {
		if *in.MonthlyBudgetCents < 0 {
			setting.MonthlyBudgetCents = nil
		} else {
			setting.MonthlyBudgetCents = in.MonthlyBudgetCents
		}
	}
	if in.StoreOutputs != nil {
		setting.StoreOutputs = *in.StoreOutputs
	}
	if in.RedactPII != nil {
		setting.RedactPII = *in.RedactPII
	}

	if err := s.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return aiSettingsView{}, err
	}
	return viewOf(&setting), nil
}
