package modules

import (
	"context"
	"fmt"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/adk"
	"github.com/Protocol-Lattice/research-agent/src/agents"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/models"
)

// answerTemperature is used by the retrieval answer synthesizer.
const answerTemperature = 0.3

// FromConfig returns the modules and system defaults described by cfg.
func FromConfig(ctx context.Context, cfg *config.Config) ([]adk.Option, error) {
	var answerGen models.Generator
	if cfg.Retrieval.Synthesize {
		gen, err := models.NewLLMProvider(ctx, cfg.LLM.Provider, cfg.LLM.Model, answerTemperature)
		if err != nil {
			return nil, fmt.Errorf("retrieval answer model: %w", err)
		}
		answerGen = gen
	}

	mods := []adk.Module{
		NewModelModule("model:"+cfg.LLM.Provider, LLMProvider(cfg.LLM, cfg.Cache)),
		StoreRetrieval(cfg.Retrieval, answerGen),
	}
	if cfg.History.Enabled {
		mods = append(mods, SQLiteHistory(cfg.History.Path))
	}

	temps := make(map[research.Role]float64, len(agents.Roles))
	k := make(map[research.Role]int)
	for _, role := range agents.Roles {
		temps[role] = cfg.Temperature(string(role), research.DefaultTemperatures[role])
		if v, ok := cfg.K(string(role)); ok {
			k[role] = v
		}
	}

	return []adk.Option{
		adk.WithModules(mods...),
		adk.WithTemperatures(temps),
		adk.WithRetrievalDepth(k),
	}, nil
}
