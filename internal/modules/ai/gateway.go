package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/korozcolt/archive-master-app-sub004/internal/config"
	"github.com/korozcolt/archive-master-app-sub004/internal/models"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/secret"
)

// Gateway is one AI backend. Implementations hold no mutable state and are
// safe for concurrent use; the caller owns timeouts via ctx.
type Gateway interface {
	Provider() models.AiProvider
	Model() string
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error)
}

// GatewayResolver yields the gateway matching a tenant's settings.
type GatewayResolver interface {
	ForSetting(ctx context.Context, setting *models.TenantAiSettingModel) (Gateway, error)
}

// GatewayFactory builds the gateway matching a tenant's settings. In mock
// mode every tenant gets the mock gateway, so no credential or network is
// needed.
//
// The Gemini gateway wraps a gRPC client, so it is built once and reused
// for the life of the factory instead of dialing per call.
type GatewayFactory struct {
	cfg config.AIConfig
	box *secret.Box

	mu        sync.Mutex
	gemini    Gateway
	newGemini func(ctx context.Context, projectID, region, model string) (Gateway, error)
}

func NewGatewayFactory(cfg config.AIConfig, box *secret.Box) *GatewayFactory {
	return &GatewayFactory{
		cfg: cfg,
		box: box,
		newGemini: func(ctx context.Context, projectID, region, model string) (Gateway, error) {
			return newGeminiGateway(ctx, projectID, region, model)
		},
	}
}

// ForSetting resolves the gateway for one tenant. The stored credential is
// opened here and lives only in the returned gateway.
func (f *GatewayFactory) ForSetting(ctx context.Context, setting *models.TenantAiSettingModel) (Gateway, error) {
	if f.cfg.MockMode {
		return NewMockGateway(f.cfg.DefaultModel(string(models.ProviderMock))), nil
	}

	credential := ""
	if setting.APICredential != "" {
		opened, err := f.box.Open(setting.APICredential)
		if err != nil {
			return nil, fmt.Errorf("open credential for tenant %s: %w", setting.TenantID, err)
		}
		credential = opened
	}

	model := f.cfg.DefaultModel(string(setting.Provider))

	switch setting.Provider {
	case models.ProviderOpenAI:
		return newOpenAIGateway(credential, model), nil
	case models.ProviderAnthropic:
		return newAnthropicGateway(credential, model), nil
	case models.ProviderGemini:
		return f.sharedGemini(ctx, model)
	case models.ProviderCompatible:
		return newCompatGateway(credential, setting.Endpoint, model), nil
	case models.ProviderMock:
		return NewMockGateway(model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", setting.Provider)
	}
}

// sharedGemini returns the shared Vertex AI gateway, dialing it on first
// use. A failed dial is not cached, so the next call retries.
func (f *GatewayFactory) sharedGemini(ctx context.Context, model string) (Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gemini != nil {
		return f.gemini, nil
	}
	gw, err := f.newGemini(ctx, f.cfg.GeminiProject, f.cfg.GeminiRegion, model)
	if err != nil {
		return nil, err
	}
	f.gemini = gw
	return gw, nil
}
