package models

// TenantAiSettingModel is the per-tenant AI governance configuration.
// At most one active row exists per tenant. Every admission decision reads it.
type TenantAiSettingModel struct {
	Base
	TenantID string     `json:"tenant_id" gorm:"type:char(36);uniqueIndex;not null"`
	Provider AiProvider `json:"provider"  gorm:"type:varchar(32);default:'none'"`
	Enabled  bool       `json:"enabled"   gorm:"default:false"`
	// APICredential is sealed with the process secret key; never exposed raw.
	APICredential      string `json:"-" gorm:"type:text"`
	Endpoint           string `json:"endpoint,omitempty" gorm:"type:varchar(255)"`
	DailyDocLimit      int    `json:"daily_doc_limit"   gorm:"default:0"` // 0 = unlimited
	MaxPagesPerDoc     int    `json:"max_pages_per_doc" gorm:"default:0"` // 0 = unlimited
	MonthlyBudgetCents *int   `json:"monthly_budget_cents,omitempty"`     // nil = unlimited
	StoreOutputs       bool   `json:"store_outputs" gorm:"default:true"`
	RedactPII          bool   `json:"redact_pii"    gorm:"default:false"`
}

func (TenantAiSettingModel) TableName() string { return "tenant_ai_settings" }

// DefaultTenantAiSetting is the conservative fallback used when a tenant has
// no settings row: AI disabled, no provider.
func DefaultTenantAiSetting(tenantID string) *TenantAiSettingModel {
	return &TenantAiSettingModel{
		TenantID: tenantID,
		Provider: ProviderNone,
		Enabled:  false,
	}
}
