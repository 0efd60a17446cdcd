package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"gorm.io/gorm"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/pagination"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

var errDocumentNotFound = errors.New("document not found")

// Service manages documents and their immutable content versions.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type createDocumentInput struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	CategoryID  *string                `json:"category_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (s *Service) Create(ctx context.Context, tenantID string, in createDocumentInput) (*models.DocumentModel, error) {
	doc := &models.DocumentModel{
		TenantID:    tenantID,
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Metadata:    in.Metadata,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.DocumentModel, error) {
	var doc models.DocumentModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) List(ctx context.Context, tenantID string, q pagination.Query) ([]models.DocumentModel, response.Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	var docs []models.DocumentModel
	meta, err := pagination.Paginate(query, q, &docs)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return docs, meta, nil
}

// AddVersion appends a new content version. Version numbers are dense per
// document, assigned from the current maximum.
func (s *Service) AddVersion(ctx context.Context, tenantID, documentID, content string, metadata map[string]interface{}) (*models.DocumentVersionModel, error) {
	if _, err := s.Get(ctx, tenantID, documentID); err != nil {
		return nil, err
	}

	var max int
	err := s.db.WithContext(ctx).Model(&models.DocumentVersionModel{}).
		Where("document_id = ?", documentID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	if err != nil {
		return nil, err
	}

	version := &models.DocumentVersionModel{
		TenantID:   tenantID,
		DocumentID: documentID,
		Number:     max + 1,
		Content:    content,
		Metadata:   metadata,
	}
	if err := s.db.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

// AddVersionFromPDF stores a version whose page count is read from the
// uploaded PDF itself instead of trusting the client. The extracted text
// passed in contentText becomes the version content.
func (s *Service) AddVersionFromPDF(ctx context.Context, tenantID, documentID, contentText string, file *multipart.FileHeader) (*models.DocumentVersionModel, error) {
	pages, err := countPDFPages(file)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	return s.AddVersion(ctx, tenantID, documentID, contentText, map[string]interface{}{
		"page_count":     pages,
		"original_name":  file.Filename,
		"original_bytes": file.Size,
	})
}

func (s *Service) Versions(ctx context.Context, tenantID, documentID string) ([]models.DocumentVersionModel, error) {
	if _, err := s.Get(ctx, tenantID, documentID); err != nil {
		return nil, err
	}
	var versions []models.DocumentVersionModel
	err := s.db.WithContext(ctx).
		Where("document_id = ? AND tenant_id = ?", documentID, tenantID).
		Order("number DESC").
		Find(&versions).Error
	return versions, err
}

// countPDFPages copies the upload to a temp file so pdfcpu can inspect it.
func countPDFPages(file *multipart.FileHeader) (int, error) {
	src, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tmp := filepath.Join(os.TempDir(), "am-upload-"+uuid.NewString()+".pdf")
	dst, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return 0, err
	}
	if err := dst.Close(); err != nil {
		return 0, err
	}

	return api.PageCountFile(tmp)
}
