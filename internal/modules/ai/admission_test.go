package ai

import (
	"context"
	"testing"
	"time"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

func enabledSetting(tenantID string) *models.TenantAiSettingModel {
	return &models.TenantAiSettingModel{
		TenantID: tenantID,
		Provider: models.ProviderOpenAI,
		Enabled:  true,
	}
}

func newTestAdmission(runs RunStore) (*AdmissionController, *CircuitBreaker) {
	breaker := NewCircuitBreaker(NewMemoryBreakerStore(), 3, 10*time.Minute)
	return NewAdmissionController(runs, breaker), breaker
}

func queuedRun(tenant string) *models.AiRunModel {
	return &models.AiRunModel{
		Base:              models.Base{ID: "run-1", CreatedAt: time.Now().UTC()},
		TenantID:          tenant,
		Task:              models.TaskSummarize,
		Status:            models.RunQueued,
		DocumentVersionID: "ver-1",
	}
}

func TestAdmissionDisabledTenant(t *testing.T) {
	ctrl, _ := newTestAdmission(newFakeRunStore())

	setting := enabledSetting("t1")
	setting.Enabled = false

	decision, err := ctrl.Evaluate(context.Background(), queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeSkipped || decision.Reason != ReasonDisabled {
		t.Fatalf("got %+v, want skipped %q", decision, ReasonDisabled)
	}
}

func TestAdmissionProviderNoneIsDisabled(t *testing.T) {
	ctrl, _ := newTestAdmission(newFakeRunStore())

	setting := enabledSetting("t1")
	setting.Provider = models.ProviderNone

	decision, err := ctrl.Evaluate(context.Background(), queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonDisabled {
		t.Fatalf("got reason %q, want %q", decision.Reason, ReasonDisabled)
	}
}

func TestAdmissionBreakerGate(t *testing.T) {
	ctrl, breaker := newTestAdmission(newFakeRunStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := breaker.RecordFailure(ctx, "t1", "openai"); err != nil {
			t.Fatal(err)
		}
	}

	decision, err := ctrl.Evaluate(ctx, queuedRun("t1"), enabledSetting("t1"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonBreakerOpen {
		t.Fatalf("got reason %q, want %q", decision.Reason, ReasonBreakerOpen)
	}

	// Another tenant's breaker state is separate.
	decision, err = ctrl.Evaluate(ctx, queuedRun("t2"), enabledSetting("t2"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("tenant t2 blocked by t1's breaker: %+v", decision)
	}
}

func TestAdmissionDailyLimit(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, _ := newTestAdmission(runs)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		runs.add(&models.AiRunModel{
			Base:     models.Base{CreatedAt: now},
			TenantID: "t1",
			Task:     models.TaskSummarize,
			Status:   models.RunSuccess,
		})
	}
	// Other-tenant and failed runs never count.
	runs.add(&models.AiRunModel{
		Base:     models.Base{CreatedAt: now},
		TenantID: "t2",
		Task:     models.TaskSummarize,
		Status:   models.RunSuccess,
	})
	runs.add(&models.AiRunModel{
		Base:     models.Base{CreatedAt: now},
		TenantID: "t1",
		Task:     models.TaskSummarize,
		Status:   models.RunFailed,
	})

	setting := enabledSetting("t1")
	setting.DailyDocLimit = 2

	decision, err := ctrl.Evaluate(ctx, queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonDailyLimit {
		t.Fatalf("got reason %q, want %q", decision.Reason, ReasonDailyLimit)
	}

	setting.DailyDocLimit = 3
	decision, err = ctrl.Evaluate(ctx, queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("under the limit should admit, got %+v", decision)
	}
}

func TestAdmissionZeroLimitMeansUnlimited(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, _ := newTestAdmission(runs)

	now := time.Now().UTC()
	for i := 0; i < 50; i++ {
		runs.add(&models.AiRunModel{
			Base:     models.Base{CreatedAt: now},
			TenantID: "t1",
			Task:     models.TaskSummarize,
			Status:   models.RunSuccess,
		})
	}

	setting := enabledSetting("t1")
	setting.DailyDocLimit = 0
	setting.MaxPagesPerDoc = 0
	setting.MonthlyBudgetCents = nil

	decision, err := ctrl.Evaluate(context.Background(), queuedRun("t1"), setting, 10_000)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("zero limits must admit, got %+v", decision)
	}
}

func TestAdmissionExcludesEvaluatedRun(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, _ := newTestAdmission(runs)

	run := queuedRun("t1")
	runs.add(run)

	setting := enabledSetting("t1")
	setting.DailyDocLimit = 1

	decision, err := ctrl.Evaluate(context.Background(), run, setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("run blocked by itself: %+v", decision)
	}
}

func TestAdmissionMonthlyBudgetBoundary(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, _ := newTestAdmission(runs)
	ctx := context.Background()

	cost := 999
	runs.add(&models.AiRunModel{
		Base:      models.Base{CreatedAt: time.Now().UTC()},
		TenantID:  "t1",
		Task:      models.TaskSummarize,
		Status:    models.RunSuccess,
		CostCents: &cost,
	})

	budget := 1000
	setting := enabledSetting("t1")
	setting.MonthlyBudgetCents = &budget

	decision, err := ctrl.Evaluate(ctx, queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("spend 999 of 1000 should admit, got %+v", decision)
	}

	extra := 1
	runs.add(&models.AiRunModel{
		Base:      models.Base{CreatedAt: time.Now().UTC()},
		TenantID:  "t1",
		Task:      models.TaskSummarize,
		Status:    models.RunSuccess,
		CostCents: &extra,
	})

	decision, err = ctrl.Evaluate(ctx, queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonMonthlyBudget {
		t.Fatalf("spend 1000 of 1000 should block, got %+v", decision)
	}
}

func TestAdmissionBudgetIgnoresOtherTenants(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, _ := newTestAdmission(runs)

	cost := 100_000
	runs.add(&models.AiRunModel{
		Base:      models.Base{CreatedAt: time.Now().UTC()},
		TenantID:  "t2",
		Task:      models.TaskSummarize,
		Status:    models.RunSuccess,
		CostCents: &cost,
	})

	budget := 1000
	setting := enabledSetting("t1")
	setting.MonthlyBudgetCents = &budget

	decision, err := ctrl.Evaluate(context.Background(), queuedRun("t1"), setting, 1)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("other tenant's spend blocked t1: %+v", decision)
	}
}

func TestAdmissionPageLimitBoundary(t *testing.T) {
	ctrl, _ := newTestAdmission(newFakeRunStore())
	ctx := context.Background()

	setting := enabledSetting("t1")
	setting.MaxPagesPerDoc = 50

	decision, err := ctrl.Evaluate(ctx, queuedRun("t1"), setting, 50)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Outcome != OutcomeAdmitted {
		t.Fatalf("50 pages at limit 50 should admit, got %+v", decision)
	}

	decision, err = ctrl.Evaluate(ctx, queuedRun("t1"), setting, 51)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonPageLimit {
		t.Fatalf("51 pages at limit 50 should block, got %+v", decision)
	}
}

func TestAdmissionGateOrder(t *testing.T) {
	runs := newFakeRunStore()
	ctrl, breaker := newTestAdmission(runs)
	ctx := context.Background()

	// Everything would block, but disabled must win.
	for i := 0; i < 5; i++ {
		if err := breaker.RecordFailure(ctx, "t1", "openai"); err != nil {
			t.Fatal(err)
		}
	}
	setting := enabledSetting("t1")
	setting.Enabled = false
	setting.DailyDocLimit = 1
	setting.MaxPagesPerDoc = 1

	decision, err := ctrl.Evaluate(ctx, queuedRun("t1"), setting, 100)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonDisabled {
		t.Fatalf("disabled gate must run first, got %q", decision.Reason)
	}

	// With the tenant enabled, the breaker is next.
	setting.Enabled = true
	decision, err = ctrl.Evaluate(ctx, queuedRun("t1"), setting, 100)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Reason != ReasonBreakerOpen {
		t.Fatalf("breaker gate must run before limits, got %q", decision.Reason)
	}
}
