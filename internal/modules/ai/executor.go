package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/korozcolt/archive-master-app-sub004/internal/config"
	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

// Executor drives one queued run to a terminal state. It is the only
// writer of run status. Transitions are monotonic: once a run leaves
// queued it never returns, and terminal runs are never touched again, so
// queue redeliveries are harmless.
type Executor struct {
	runs      RunStore
	outputs   OutputStore
	documents DocumentStore
	settings  *SettingsResolver
	admission *AdmissionController
	breaker   *CircuitBreaker
	gateways  GatewayResolver
	cfg       config.AIConfig
	logger    *zap.Logger
}

func NewExecutor(
	runs RunStore,
	outputs OutputStore,
	documents DocumentStore,
	settings *SettingsResolver,
	admission *AdmissionController,
	breaker *CircuitBreaker,
	gateways GatewayResolver,
	cfg config.AIConfig,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		runs:      runs,
		outputs:   outputs,
		documents: documents,
		settings:  settings,
		admission: admission,
		breaker:   breaker,
		gateways:  gateways,
		cfg:       cfg,
		logger:    logger,
	}
}

// Execute processes the run with the given id. A returned error means the
// execution never reached a decision (infrastructure trouble) and the
// message should be redelivered; every domain outcome, including failure,
// returns nil after persisting a terminal state.
func (e *Executor) Execute(ctx context.Context, runID string) error {
	run, err := e.runs.Get(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if run == nil {
		e.logger.Warn("dropping message for unknown run", zap.String("run_id", runID))
		return nil
	}
	if run.Status.Terminal() {
		e.logger.Debug("run already terminal, ignoring redelivery",
			zap.String("run_id", run.ID), zap.String("status", string(run.Status)))
		return nil
	}

	if run.Task != models.TaskSummarize {
		return e.fail(ctx, run, fmt.Errorf("task %q is not supported", run.Task))
	}

	setting, err := e.settings.Resolve(ctx, run.TenantID)
	if err != nil {
		return err
	}

	version, err := e.documents.Version(ctx, run.DocumentVersionID)
	if err != nil {
		return fmt.Errorf("load version %s: %w", run.DocumentVersionID, err)
	}
	if version == nil {
		return e.fail(ctx, run, errors.New("document version not found"))
	}
	doc, err := e.documents.Document(ctx, version.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", version.DocumentID, err)
	}

	decision, err := e.admission.Evaluate(ctx, run, setting, models.PageCount(version, doc))
	if err != nil {
		return fmt.Errorf("admission for run %s: %w", run.ID, err)
	}
	if decision.Outcome == OutcomeSkipped {
		return e.skip(ctx, run, decision.Reason)
	}

	gateway, err := e.gateways.ForSetting(ctx, setting)
	if err != nil {
		return e.fail(ctx, run, err)
	}

	req := SummarizeRequest{
		Content:       version.Content,
		PromptVersion: e.cfg.PromptVersion(string(run.Task)),
		RedactPII:     setting.RedactPII,
	}
	if doc != nil {
		req.Title = doc.Title
		req.Description = doc.Description
	}
	if setting.RedactPII {
		req.Content = redactPII(req.Content)
		req.Title = redactPII(req.Title)
		req.Description = redactPII(req.Description)
	}

	hash := Fingerprint(fingerprintInput{
		Content:       req.Content,
		Title:         req.Title,
		Description:   req.Description,
		Provider:      gateway.Provider(),
		Model:         gateway.Model(),
		PromptVersion: req.PromptVersion,
		RedactPII:     setting.RedactPII,
	})

	run.InputHash = &hash
	run.PromptVersion = req.PromptVersion
	run.Provider = gateway.Provider()
	run.Model = gateway.Model()

	prior, err := e.runs.FindReusable(ctx, run.TenantID, run.DocumentVersionID, run.Task, hash, req.PromptVersion, run.ID)
	if err != nil {
		return fmt.Errorf("dedup lookup for run %s: %w", run.ID, err)
	}
	if prior != nil {
		e.logger.Info("reusing prior result",
			zap.String("run_id", run.ID), zap.String("prior_run_id", prior.ID))
		return e.skip(ctx, run, ReasonReused)
	}

	run.Status = models.RunRunning
	run.ErrorMessage = ""
	if err := e.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run %s running: %w", run.ID, err)
	}

	// The provider call holds no database state. Timeouts surface as plain
	// gateway errors.
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout())
	result, callErr := gateway.Summarize(callCtx, req)
	cancel()

	if callErr != nil {
		if berr := e.breaker.RecordFailure(ctx, run.TenantID, string(gateway.Provider())); berr != nil {
			e.logger.Error("record breaker failure", zap.Error(berr))
		}
		return e.fail(ctx, run, callErr)
	}

	if berr := e.breaker.RecordSuccess(ctx, run.TenantID, string(gateway.Provider())); berr != nil {
		e.logger.Error("reset breaker", zap.Error(berr))
	}

	cost := costCents(gateway.Model(), result.TokensIn, result.TokensOut)
	run.Status = models.RunSuccess
	run.TokensIn = &result.TokensIn
	run.TokensOut = &result.TokensOut
	run.CostCents = &cost
	if err := e.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run %s success: %w", run.ID, err)
	}

	if setting.StoreOutputs {
		out := &models.AiOutputModel{
			RunID:           run.ID,
			TenantID:        run.TenantID,
			SummaryMarkdown: result.SummaryMarkdown,
			Bullets:         result.Bullets,
			SuggestedTags:   result.SuggestedTags,
			Entities:        result.Entities,
			Confidence:      result.Confidence,
		}
		if err := e.outputs.Upsert(ctx, out); err != nil {
			return fmt.Errorf("store output for run %s: %w", run.ID, err)
		}
	}

	e.logger.Info("run succeeded",
		zap.String("run_id", run.ID),
		zap.String("tenant_id", run.TenantID),
		zap.Int("tokens_in", result.TokensIn),
		zap.Int("tokens_out", result.TokensOut),
		zap.Int("cost_cents", cost))
	return nil
}

func (e *Executor) skip(ctx context.Context, run *models.AiRunModel, reason string) error {
	run.Status = models.RunSkipped
	run.SkipReason = reason
	if err := e.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run %s skipped: %w", run.ID, err)
	}
	e.logger.Info("run skipped",
		zap.String("run_id", run.ID),
		zap.String("tenant_id", run.TenantID),
		zap.String("reason", reason))
	return nil
}

func (e *Executor) fail(ctx context.Context, run *models.AiRunModel, cause error) error {
	run.Status = models.RunFailed
	run.ErrorMessage = truncateError(cause)
	if err := e.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run %s failed: %w", run.ID, err)
	}
	e.logger.Warn("run failed",
		zap.String("run_id", run.ID),
		zap.String("tenant_id", run.TenantID),
		zap.String("error", run.ErrorMessage))
	return nil
}
