package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/korozcolt/archive-master-app-sub004/internal/config"
	"github.com/korozcolt/archive-master-app-sub004/internal/models"
)

type executorFixture struct {
	executor *Executor
	runs     *fakeRunStore
	outputs  *fakeOutputStore
	docs     *fakeDocumentStore
	settings *fakeSettingsStore
	breaker  *CircuitBreaker
	gateway  *countingGateway
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()

	runs := newFakeRunStore()
	outputs := newFakeOutputStore()
	docs := newFakeDocumentStore()
	settings := newFakeSettingsStore()
	breaker := NewCircuitBreaker(NewMemoryBreakerStore(), 2, 10*time.Minute)
	gateway := &countingGateway{inner: NewMockGateway("mock-model")}

	cfg := config.AIConfig{
		RequestTimeoutSeconds: 5,
		PromptVersions:        map[string]string{"summarize": "summarize-v1"},
	}

	executor := NewExecutor(
		runs, outputs, docs,
		NewSettingsResolver(settings),
		NewAdmissionController(runs, breaker),
		breaker,
		&staticResolver{gateway: gateway},
		cfg,
		zap.NewNop(),
	)
	return &executorFixture{
		executor: executor,
		runs:     runs,
		outputs:  outputs,
		docs:     docs,
		settings: settings,
		breaker:  breaker,
		gateway:  gateway,
	}
}

func (f *executorFixture) seedDocument(tenant string) {
	f.docs.documents["doc-1"] = &models.DocumentModel{
		Base:        models.Base{ID: "doc-1"},
		TenantID:    tenant,
		Title:       "Q2 Report",
		Description: "quarterly figures",
	}
	f.docs.versions["ver-1"] = &models.DocumentVersionModel{
		Base:       models.Base{ID: "ver-1"},
		TenantID:   tenant,
		DocumentID: "doc-1",
		Number:     1,
		Content:    "Revenue grew across all regions this quarter.",
	}
}

func (f *executorFixture) seedRun(tenant string) *models.AiRunModel {
	run := &models.AiRunModel{
		TenantID:          tenant,
		DocumentID:        "doc-1",
		DocumentVersionID: "ver-1",
		Task:              models.TaskSummarize,
		Status:            models.RunQueued,
	}
	run.CreatedAt = time.Now().UTC()
	f.runs.add(run)
	return run
}

func (f *executorFixture) enable(tenant string) *models.TenantAiSettingModel {
	setting := &models.TenantAiSettingModel{
		TenantID:     tenant,
		Provider:     models.ProviderMock,
		Enabled:      true,
		StoreOutputs: true,
	}
	f.settings.settings[tenant] = setting
	return setting
}

func TestExecutorSuccessPath(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunSuccess {
		t.Fatalf("status = %s, want success (error=%q)", got.Status, got.ErrorMessage)
	}
	if got.TokensIn == nil || got.TokensOut == nil || got.CostCents == nil {
		t.Fatal("usage fields must be set on success")
	}
	if got.InputHash == nil || len(*got.InputHash) != 64 {
		t.Fatal("input hash must be persisted")
	}
	if got.PromptVersion != "summarize-v1" {
		t.Fatalf("prompt version = %q", got.PromptVersion)
	}
	if got.Provider != models.ProviderMock || got.Model != "mock-model" {
		t.Fatalf("provider/model not persisted: %s/%s", got.Provider, got.Model)
	}

	out, _ := f.outputs.ByRunID(context.Background(), run.ID)
	if out == nil {
		t.Fatal("output row missing")
	}
	if out.SummaryMarkdown == "" || out.TenantID != "t1" {
		t.Fatalf("bad output: %+v", out)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("gateway called %d times, want 1", f.gateway.calls)
	}
}

func TestExecutorRespectsStoreOutputsOff(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1").StoreOutputs = false
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunSuccess {
		t.Fatalf("status = %s, want success", got.Status)
	}
	if out, _ := f.outputs.ByRunID(context.Background(), run.ID); out != nil {
		t.Fatal("output stored despite store_outputs=false")
	}
}

func TestExecutorSkipsDisabledTenant(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	// No settings row at all: conservative default is disabled.
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunSkipped || got.SkipReason != ReasonDisabled {
		t.Fatalf("got %s/%q, want skipped/%q", got.Status, got.SkipReason, ReasonDisabled)
	}
	if f.gateway.calls != 0 {
		t.Fatal("gateway must not be called for a skipped run")
	}
}

func TestExecutorFailsOnMissingVersion(t *testing.T) {
	f := newExecutorFixture(t)
	f.enable("t1")
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Fatal("failed run must carry an error message")
	}
}

func TestExecutorGatewayFailure(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")
	f.gateway.err = errors.New("provider unavailable")
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ErrorMessage != "provider unavailable" {
		t.Fatalf("error message = %q", got.ErrorMessage)
	}
	if got.CostCents != nil || got.TokensIn != nil {
		t.Fatal("usage must not be set on failure")
	}

	// A second failure reaches the threshold and opens the breaker.
	run2 := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), run2.ID); err != nil {
		t.Fatal(err)
	}
	open, err := f.breaker.Open(context.Background(), "t1", string(models.ProviderMock))
	if err != nil {
		t.Fatal(err)
	}
	if !open {
		t.Fatal("breaker should open after repeated gateway failures")
	}

	// The third run is skipped by the breaker gate without a provider call.
	calls := f.gateway.calls
	run3 := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), run3.ID); err != nil {
		t.Fatal(err)
	}
	got3, _ := f.runs.Get(context.Background(), run3.ID)
	if got3.Status != models.RunSkipped || got3.SkipReason != ReasonBreakerOpen {
		t.Fatalf("got %s/%q, want skipped/%q", got3.Status, got3.SkipReason, ReasonBreakerOpen)
	}
	if f.gateway.calls != calls {
		t.Fatal("breaker-skipped run must not reach the gateway")
	}
}

func TestExecutorSuccessClearsBreaker(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")

	if err := f.breaker.RecordFailure(context.Background(), "t1", string(models.ProviderMock)); err != nil {
		t.Fatal(err)
	}

	run := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	open, err := f.breaker.Open(context.Background(), "t1", string(models.ProviderMock))
	if err != nil {
		t.Fatal(err)
	}
	if open {
		t.Fatal("success must clear the breaker counter")
	}
}

func TestExecutorDedupShortCircuit(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")

	first := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), first.ID); err != nil {
		t.Fatal(err)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("gateway called %d times after first run", f.gateway.calls)
	}

	second := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), second.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), second.ID)
	if got.Status != models.RunSkipped || got.SkipReason != ReasonReused {
		t.Fatalf("got %s/%q, want skipped/%q", got.Status, got.SkipReason, ReasonReused)
	}
	if got.InputHash == nil || got.PromptVersion == "" || got.Model == "" {
		t.Fatal("audit fields must be persisted on a reused run")
	}
	if f.gateway.calls != 1 {
		t.Fatalf("dedup must not call the gateway again, calls=%d", f.gateway.calls)
	}
	if out, _ := f.outputs.ByRunID(context.Background(), second.ID); out != nil {
		t.Fatal("no output may be written for a reused run")
	}
}

func TestExecutorDedupMissesAcrossTenants(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")
	f.enable("t2")

	first := f.seedRun("t1")
	if err := f.executor.Execute(context.Background(), first.ID); err != nil {
		t.Fatal(err)
	}

	other := f.seedRun("t2")
	if err := f.executor.Execute(context.Background(), other.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), other.ID)
	if got.Status != models.RunSuccess {
		t.Fatalf("another tenant's result was reused: %s/%q", got.Status, got.SkipReason)
	}
	if f.gateway.calls != 2 {
		t.Fatalf("expected a fresh provider call per tenant, calls=%d", f.gateway.calls)
	}
}

func TestExecutorIdempotentRedelivery(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.enable("t1")
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}
	afterFirst, _ := f.runs.Get(context.Background(), run.ID)

	// Redelivery of the same run id must be a pure no-op.
	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}
	afterSecond, _ := f.runs.Get(context.Background(), run.ID)

	if f.gateway.calls != 1 {
		t.Fatalf("redelivery re-invoked the gateway, calls=%d", f.gateway.calls)
	}
	if afterSecond.Status != afterFirst.Status || *afterSecond.CostCents != *afterFirst.CostCents {
		t.Fatal("redelivery mutated a terminal run")
	}
}

func TestExecutorDropsUnknownRun(t *testing.T) {
	f := newExecutorFixture(t)
	if err := f.executor.Execute(context.Background(), "does-not-exist"); err != nil {
		t.Fatalf("unknown run must be dropped silently, got %v", err)
	}
}

func TestExecutorRedactsBeforeFingerprintAndCall(t *testing.T) {
	f := newExecutorFixture(t)
	f.seedDocument("t1")
	f.docs.versions["ver-1"].Content = "Contact alice@example.com about revenue."
	f.enable("t1").RedactPII = true
	run := f.seedRun("t1")

	if err := f.executor.Execute(context.Background(), run.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.runs.Get(context.Background(), run.ID)
	if got.Status != models.RunSuccess {
		t.Fatalf("status = %s", got.Status)
	}

	// The mock echoes the content lead; the address must be gone.
	out, _ := f.outputs.ByRunID(context.Background(), run.ID)
	if out == nil {
		t.Fatal("output missing")
	}
	if strings.Contains(out.SummaryMarkdown, "alice@example.com") {
		t.Fatalf("summary leaked unredacted PII: %q", out.SummaryMarkdown)
	}
}
