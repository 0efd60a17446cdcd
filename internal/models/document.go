package models

// DocumentModel is an archived document. Content lives on versions; the
// document row carries the descriptive metadata shared by all versions.
type DocumentModel struct {
	Base
	TenantID    string  `json:"tenant_id"   gorm:"type:char(36);index;not null"`
	Title       string  `json:"title"       gorm:"not null"`
	Description string  `json:"description" gorm:"type:text"`
	CategoryID  *string `json:"category_id,omitempty" gorm:"type:char(36)"`
	Metadata    JSONMap `json:"metadata"    gorm:"type:longtext;serializer:json"`
}

func (DocumentModel) TableName() string { return "documents" }

// DocumentVersionModel is one immutable revision of a document's content.
type DocumentVersionModel struct {
	Base
	TenantID   string  `json:"tenant_id"   gorm:"type:char(36);index;not null"`
	DocumentID string  `json:"document_id" gorm:"type:char(36);index;not null"`
	Number     int     `json:"number"      gorm:"not null"`
	Content    string  `json:"content"     gorm:"type:longtext"`
	Metadata   JSONMap `json:"metadata"    gorm:"type:longtext;serializer:json"`
}

func (DocumentVersionModel) TableName() string { return "document_versions" }

const pageCountKey = "page_count"

// PageCount resolves the page count for a version: version metadata first,
// then the parent document's metadata, defaulting to 1 so documents with
// missing metadata are never blocked by the page gate.
func PageCount(version *DocumentVersionModel, doc *DocumentModel) int {
	if version != nil {
		if n, ok := version.Metadata.Int(pageCountKey); ok && n > 0 {
			return n
		}
	}
	if doc != nil {
		if n, ok := doc.Metadata.Int(pageCountKey); ok && n > 0 {
			return n
		}
	}
	return 1
}
