package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// AdmissionController decides whether a queued run may proceed to a
// provider call. Gates run in a fixed order and the first one that trips
// wins: enabled, circuit breaker, daily document limit, monthly budget,
// page limit. All usage lookups exclude the run under evaluation, so a
// redelivered message never counts itself against a limit.
type AdmissionController struct {
	runs    RunStore
	breaker *CircuitBreaker

	clock func() time.Time
}

func NewAdmissionController(runs RunStore, breaker *CircuitBreaker) *AdmissionController {
	return &AdmissionController{runs: runs, breaker: breaker, clock: time.Now}
}

// Evaluate applies the gates for run against the tenant's effective
// settings. pageCount is the resolved page count of the target document
// version.
func (a *AdmissionController) Evaluate(ctx context.Context, run *models.AiRunModel, setting *models.TenantAiSettingModel, pageCount int) (Decision, error) {
	if !setting.Enabled || setting.Provider == models.ProviderNone {
		return Skipped(ReasonDisabled), nil
	}

	open, err := a.breaker.Open(ctx, run.TenantID, string(setting.Provider))
	if err != nil {
		return Decision{}, fmt.Errorf("breaker state: %w", err)
	}
	if open {
		return Skipped(ReasonBreakerOpen), nil
	}

	now := a.clock()

	if setting.DailyDocLimit > 0 {
		n, err := a.runs.CountActiveToday(ctx, run.TenantID, run.Task, now, run.ID)
		if err != nil {
			return Decision{}, fmt.Errorf("daily usage: %w", err)
		}
		if n >= int64(setting.DailyDocLimit) {
			return Skipped(ReasonDailyLimit), nil
		}
	}

	if setting.MonthlyBudgetCents != nil {
		spent, err := a.runs.SumMonthlyCost(ctx, run.TenantID, run.Task, now, run.ID)
		if err != nil {
			return Decision{}, fmt.Errorf("monthly spend: %w", err)
		}
		if spent >= int64(*setting.MonthlyBudgetCents) {
			return Skipped(ReasonMonthlyBudget), nil
		}
	}

	if setting.MaxPagesPerDoc > 0 && pageCount > setting.MaxPagesPerDoc {
		return Skipped(ReasonPageLimit), nil
	}

	return Admitted(), nil
}
