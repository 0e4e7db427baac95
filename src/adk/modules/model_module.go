package modules

import (
	"context"
	"fmt"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/adk"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/models"
)

// ModelModule wires a model provider into the kit.
type ModelModule struct {
	name     string
	provider adk.ModelProvider
}

// NewModelModule creates a module that registers the supplied model provider.
// If name is empty the module will expose "model".
func NewModelModule(name string, provider adk.ModelProvider) *ModelModule {
	if name == "" {
		name = "model"
	}
	return &ModelModule{name: name, provider: provider}
}

func (m *ModelModule) Name() string { return m.name }

func (m *ModelModule) Provision(_ context.Context, kitInstance *adk.AgentDevelopmentKit) error {
	if m.provider == nil {
		return fmt.Errorf("model provider is nil")
	}
	kitInstance.UseModelProvider(m.provider)
	return nil
}

// StaticModelProvider hands the same generator to every role.
func StaticModelProvider(gen models.Generator) adk.ModelProvider {
	return func(context.Context, research.Role, float64) (models.Generator, error) {
		if gen == nil {
			return nil, fmt.Errorf("static model is nil")
		}
		return gen, nil
	}
}

// LLMProvider builds one provider-backed generator per role with the role's
// temperature, wrapped in the completion cache when configured.
func LLMProvider(llm config.LLMConfig, cacheCfg config.CacheConfig) adk.ModelProvider {
	var shared *models.CachedLLM
	return func(ctx context.Context, role research.Role, temperature float64) (models.Generator, error) {
		gen, err := models.NewLLMProvider(ctx, llm.Provider, llm.Model, temperature)
		if err != nil {
			return nil, fmt.Errorf("%s model: %w", role, err)
		}
		if cacheCfg.Size <= 0 {
			return models.TryCreateCachedLLM(gen), nil
		}
		// Roles share one cache file; keys include the system prompt, so
		// entries never collide across roles.
		if shared == nil {
			shared = models.NewCachedLLM(nil, cacheCfg.Size, cacheCfg.TTL, cacheCfg.Path)
		}
		return &models.CachedLLM{Generator: gen, Cache: shared.Cache, FilePath: shared.FilePath}, nil
	}
}
