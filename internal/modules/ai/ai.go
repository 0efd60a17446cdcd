package ai

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/korozcolt/archive-master-app-sub004/internal/config"
	"github.com/korozcolt/archive-master-app-sub004/internal/models"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/pagination"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/taskqueue"
)

var (
	errVersionNotFound = errors.New("document version not found")
	errRunNotFound     = errors.New("run not found")
	errRunNotRetryable = errors.New("only failed or skipped runs can be retried")
	errUnknownTask     = errors.New("unknown task")
	errOutputNotFound  = errors.New("no output for run")
)

// Service is the request-side surface of the AI pipeline: it creates and
// queries run records and hands run ids to the queue. Execution itself
// happens in the worker through the Executor.
type Service struct {
	db       *gorm.DB
	runs     RunStore
	outputs  OutputStore
	settings *SettingsResolver
	gateways GatewayResolver
	queue    *taskqueue.Queue
	cfg      config.AIConfig
}

func NewService(
	db *gorm.DB,
	runs RunStore,
	outputs OutputStore,
	settings *SettingsResolver,
	gateways GatewayResolver,
	queue *taskqueue.Queue,
	cfg config.AIConfig,
) *Service {
	return &Service{
		db:       db,
		runs:     runs,
		outputs:  outputs,
		settings: settings,
		gateways: gateways,
		queue:    queue,
		cfg:      cfg,
	}
}

// CreateRun records a queued run for a document version owned by the
// tenant and enqueues it.
func (s *Service) CreateRun(ctx context.Context, tenantID, userID, versionID string, task models.AiTask) (*models.AiRunModel, error) {
	if task == "" {
		task = models.TaskSummarize
	}
	if !task.Valid() {
		return nil, fmt.Errorf("%w %q", errUnknownTask, task)
	}

	var version models.DocumentVersionModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", versionID, tenantID).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errVersionNotFound
	}
	if err != nil {
		return nil, err
	}

	run := &models.AiRunModel{
		TenantID:          tenantID,
		DocumentID:        version.DocumentID,
		DocumentVersionID: version.ID,
		Task:              task,
		Status:            models.RunQueued,
	}
	if userID != "" {
		run.TriggeredByID = &userID
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("enqueue run %s: %w", run.ID, err)
	}
	return run, nil
}

// RetryRun creates a fresh queued run for the same version and task as a
// terminal run. The original record is left untouched for audit.
func (s *Service) RetryRun(ctx context.Context, tenantID, userID, runID string) (*models.AiRunModel, error) {
	prior, err := s.tenantRun(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	if prior.Status != models.RunFailed && prior.Status != models.RunSkipped {
		return nil, errRunNotRetryable
	}
	return s.CreateRun(ctx, tenantID, userID, prior.DocumentVersionID, prior.Task)
}

// ListRuns returns the tenant's runs, newest first, optionally filtered by
// status, task or document.
func (s *Service) ListRuns(ctx context.Context, tenantID string, status, task, documentID string, q pagination.Query) ([]models.AiRunModel, response.Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.AiRunModel{}).
		Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if task != "" {
		query = query.Where("task = ?", task)
	}
	if documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}
	query = query.Order("created_at DESC")

	var runs []models.AiRunModel
	meta, err := pagination.Paginate(query, q, &runs)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return runs, meta, nil
}

// GetRun returns one run, tenant-scoped.
func (s *Service) GetRun(ctx context.Context, tenantID, runID string) (*models.AiRunModel, error) {
	return s.tenantRun(ctx, tenantID, runID)
}

// OutputByRun returns the stored output of a successful run.
func (s *Service) OutputByRun(ctx context.Context, tenantID, runID string) (*models.AiOutputModel, error) {
	if _, err := s.tenantRun(ctx, tenantID, runID); err != nil {
		return nil, err
	}
	out, err := s.outputs.ByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if out == nil || out.TenantID != tenantID {
		return nil, errOutputNotFound
	}
	return out, nil
}

// TestProvider exercises the tenant's configured provider against sample
// text. It shares the gateway call path but bypasses gates, dedup and run
// records entirely.
func (s *Service) TestProvider(ctx context.Context, tenantID, sampleText string) (*SummarizeResult, error) {
	setting, err := s.settings.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !setting.Enabled || setting.Provider == models.ProviderNone {
		if !s.cfg.MockMode {
			return nil, errors.New(ReasonDisabled)
		}
	}
	gateway, err := s.gateways.ForSetting(ctx, setting)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()
	result, err := gateway.Summarize(callCtx, SummarizeRequest{
		Content:       sampleText,
		Title:         "Connectivity test",
		PromptVersion: s.cfg.PromptVersion(string(models.TaskSummarize)),
	})
	if err != nil {
		return nil, err
	}
	result.CostCents = costCents(gateway.Model(), result.TokensIn, result.TokensOut)
	return result, nil
}

func (s *Service) tenantRun(ctx context.Context, tenantID, runID string) (*models.AiRunModel, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil || run.TenantID != tenantID {
		return nil, errRunNotFound
	}
	return run, nil
}
