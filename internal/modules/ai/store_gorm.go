package ai

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

type gormRunStore struct {
	db *gorm.DB
}

// NewRunStore returns the MySQL-backed RunStore.
func NewRunStore(db *gorm.DB) RunStore {
	return &gormRunStore{db: db}
}

func (s *gormRunStore) Create(ctx context.Context, run *models.AiRunModel) error {
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *gormRunStore) Get(ctx context.Context, id string) (*models.AiRunModel, error) {
	var run models.AiRunModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *gormRunStore) Update(ctx context.Context, run *models.AiRunModel) error {
	return s.db.WithContext(ctx).Save(run).Error
}

func dayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func monthRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (s *gormRunStore) CountActiveToday(ctx context.Context, tenantID string, task models.AiTask, day time.Time, excludeRunID string) (int64, error) {
	start, end := dayRange(day)
	var n int64
	err := s.db.WithContext(ctx).Model(&models.AiRunModel{}).
		Where("tenant_id = ? AND task = ?", tenantID, task).
		Where("status IN ?", []models.AiRunStatus{models.RunQueued, models.RunRunning, models.RunSuccess}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("id <> ?", excludeRunID).
		Count(&n).Error
	return n, err
}

func (s *gormRunStore) SumMonthlyCost(ctx context.Context, tenantID string, task models.AiTask, month time.Time, excludeRunID string) (int64, error) {
	start, end := monthRange(month)
	var total sql.NullInt64
	err := s.db.WithContext(ctx).Model(&models.AiRunModel{}).
		Select("SUM(cost_cents)").
		Where("tenant_id = ? AND task = ? AND status = ?", tenantID, task, models.RunSuccess).
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("id <> ?", excludeRunID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (s *gormRunStore) FindReusable(ctx context.Context, tenantID, versionID string, task models.AiTask, inputHash, promptVersion, excludeRunID string) (*models.AiRunModel, error) {
	var run models.AiRunModel
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND document_version_id = ? AND task = ?", tenantID, versionID, task).
		Where("input_hash = ? AND prompt_version = ?", inputHash, promptVersion).
		Where("status = ?", models.RunSuccess).
		Where("id <> ?", excludeRunID).
		Order("created_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type gormOutputStore struct {
	db *gorm.DB
}

// NewOutputStore returns the MySQL-backed OutputStore.
func NewOutputStore(db *gorm.DB) OutputStore {
	return &gormOutputStore{db: db}
}

func (s *gormOutputStore) Upsert(ctx context.Context, out *models.AiOutputModel) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		UpdateAll: true,
	}).Create(out).Error
}

func (s *gormOutputStore) ByRunID(ctx context.Context, runID string) (*models.AiOutputModel, error) {
	var out models.AiOutputModel
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type gormDocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore returns the MySQL-backed DocumentStore.
func NewDocumentStore(db *gorm.DB) DocumentStore {
	return &gormDocumentStore{db: db}
}

func (s *gormDocumentStore) Version(ctx context.Context, id string) (*models.DocumentVersionModel, error) {
	var v models.DocumentVersionModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *gormDocumentStore) Document(ctx context.Context, id string) (*models.DocumentModel, error) {
	var d models.DocumentModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type gormSettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore returns the MySQL-backed SettingsStore.
func NewSettingsStore(db *gorm.DB) SettingsStore {
	return &gormSettingsStore{db: db}
}

func (s *gormSettingsStore) ByTenant(ctx context.Context, tenantID string) (*models.TenantAiSettingModel, error) {
	var setting models.TenantAiSettingModel
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
