package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

type fakeRunStore struct {
	mu   sync.Mutex
	runs map[string]*models.AiRunModel
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]*models.AiRunModel)}
}

func (s *fakeRunStore) add(run *models.AiRunModel) *models.AiRunModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	cp := *run
	s.runs[run.ID] = &cp
	return run
}

func (s *fakeRunStore) Create(_ context.Context, run *models.AiRunModel) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.add(run)
	return nil
}

func (s *fakeRunStore) Get(_ context.Context, id string) (*models.AiRunModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (s *fakeRunStore) Update(_ context.Context, run *models.AiRunModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return errors.New("run not found")
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *fakeRunStore) CountActiveToday(_ context.Context, tenantID string, task models.AiTask, day time.Time, excludeRunID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	y, m, d := day.UTC().Date()
	for _, run := range s.runs {
		ry, rm, rd := run.CreatedAt.UTC().Date()
		if run.TenantID != tenantID || run.Task != task || run.ID == excludeRunID {
			continue
		}
		if ry != y || rm != m || rd != d {
			continue
		}
		switch run.Status {
		case models.RunQueued, models.RunRunning, models.RunSuccess:
			n++
		}
	}
	return n, nil
}

func (s *fakeRunStore) SumMonthlyCost(_ context.Context, tenantID string, task models.AiTask, month time.Time, excludeRunID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	y, m, _ := month.UTC().Date()
	for _, run := range s.runs {
		ry, rm, _ := run.CreatedAt.UTC().Date()
		if run.TenantID != tenantID || run.Task != task || run.ID == excludeRunID {
			continue
		}
		if ry != y || rm != m || run.Status != models.RunSuccess || run.CostCents == nil {
			continue
		}
		total += int64(*run.CostCents)
	}
	return total, nil
}

func (s *fakeRunStore) FindReusable(_ context.Context, tenantID, versionID string, task models.AiTask, inputHash, promptVersion, excludeRunID string) (*models.AiRunModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range s.runs {
		if run.ID == excludeRunID || run.TenantID != tenantID {
			continue
		}
		if run.DocumentVersionID != versionID || run.Task != task || run.Status != models.RunSuccess {
			continue
		}
		if run.InputHash == nil || *run.InputHash != inputHash || run.PromptVersion != promptVersion {
			continue
		}
		cp := *run
		return &cp, nil
	}
	return nil, nil
}

type fakeOutputStore struct {
	mu      sync.Mutex
	outputs map[string]*models.AiOutputModel
}

func newFakeOutputStore() *fakeOutputStore {
	return &fakeOutputStore{outputs: make(map[string]*models.AiOutputModel)}
}

func (s *fakeOutputStore) Upsert(_ context.Context, out *models.AiOutputModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *out
	s.outputs[out.RunID] = &cp
	return nil
}

func (s *fakeOutputStore) ByRunID(_ context.Context, runID string) (*models.AiOutputModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.outputs[runID]
	if !ok {
		return nil, nil
	}
	cp := *out
	return &cp, nil
}

type fakeDocumentStore struct {
	versions  map[string]*models.DocumentVersionModel
	documents map[string]*models.DocumentModel
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		versions:  make(map[string]*models.DocumentVersionModel),
		documents: make(map[string]*models.DocumentModel),
	}
}

func (s *fakeDocumentStore) Version(_ context.Context, id string) (*models.DocumentVersionModel, error) {
	return s.versions[id], nil
}

func (s *fakeDocumentStore) Document(_ context.Context, id string) (*models.DocumentModel, error) {
	return s.documents[id], nil
}

type fakeSettingsStore struct {
	settings map[string]*models.TenantAiSettingModel
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{settings: make(map[string]*models.TenantAiSettingModel)}
}

func (s *fakeSettingsStore) ByTenant(_ context.Context, tenantID string) (*models.TenantAiSettingModel, error) {
	return s.settings[tenantID], nil
}

// countingGateway wraps another gateway and counts provider calls, or
// fails every call when err is set.
type countingGateway struct {
	inner Gateway
	err   error
	calls int
}

func (g *countingGateway) Provider() models.AiProvider { return g.inner.Provider() }
func (g *countingGateway) Model() string               { return g.inner.Model() }

func (g *countingGateway) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.inner.Summarize(ctx, req)
}

type staticResolver struct {
	gateway Gateway
	err     error
}

func (r *staticResolver) ForSetting(context.Context, *models.TenantAiSettingModel) (Gateway, error) {
	return r.gateway, r.err
}
