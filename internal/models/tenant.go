package models

// TenantModel is an organization whose documents and AI usage are isolated
// from every other tenant.
type TenantModel struct {
	Base
	Name   string `json:"name"   gorm:"not null"`
	Slug   string `json:"slug"   gorm:"uniqueIndex;not null"`
	Active bool   `json:"active" gorm:"default:true"`
}

func (TenantModel) TableName() string { return "tenants" }
