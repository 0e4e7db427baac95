package adk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/history"
	"github.com/Protocol-Lattice/research-agent/src/models"
)

// AgentDevelopmentKit wires the research workflow from modules that
// provision models, retrieval and run history. It acts as a lightweight
// dependency injection container for CLI and service deployments.
type AgentDevelopmentKit struct {
	mu sync.RWMutex

	modules      []Module
	bootstrapped bool

	modelProvider     ModelProvider
	retrievalProvider RetrievalProvider
	historyProvider   HistoryProvider
	systemOptions     []SystemOption

	retrieval *RetrievalBundle
	history   *history.Store
}

// New constructs a kit, applies the provided options and bootstraps registered
// modules.
func New(ctx context.Context, opts ...Option) (*AgentDevelopmentKit, error) {
	kit := &AgentDevelopmentKit{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(kit); err != nil {
			return nil, err
		}
	}
	if err := kit.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return kit, nil
}

// Bootstrap executes all registered modules in registration order. It is
// idempotent until a new module is registered.
func (k *AgentDevelopmentKit) Bootstrap(ctx context.Context) error {
	k.mu.Lock()
	if k.bootstrapped {
		k.mu.Unlock()
		return nil
	}
	modules := append([]Module(nil), k.modules...)
	k.mu.Unlock()

	for _, module := range modules {
		if module == nil {
			continue
		}
		if err := module.Provision(ctx, k); err != nil {
			name := "<unnamed module>"
			if module.Name() != "" {
				name = module.Name()
			}
			return fmt.Errorf("kit module %s: %w", name, err)
		}
	}

	k.mu.Lock()
	k.bootstrapped = true
	k.mu.Unlock()
	return nil
}

// RegisterModule appends a module to the bootstrapping sequence.
func (k *AgentDevelopmentKit) RegisterModule(module Module) error {
	if module == nil {
		return fmt.Errorf("kit module cannot be nil")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.modules = append(k.modules, module)
	k.bootstrapped = false
	return nil
}

// Modules returns a copy of the registered modules in registration order.
func (k *AgentDevelopmentKit) Modules() []Module {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]Module, len(k.modules))
	copy(out, k.modules)
	return out
}

func (k *AgentDevelopmentKit) UseModelProvider(provider ModelProvider) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.modelProvider = provider
}

func (k *AgentDevelopmentKit) UseRetrievalProvider(provider RetrievalProvider) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.retrievalProvider = provider
	k.retrieval = nil
}

func (k *AgentDevelopmentKit) UseHistoryProvider(provider HistoryProvider) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.historyProvider = provider
	k.history = nil
}

// UseSystemOption appends a default applied before each System is built.
func (k *AgentDevelopmentKit) UseSystemOption(opt SystemOption) {
	if opt == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.systemOptions = append(k.systemOptions, opt)
}

// Retrieval returns the provisioned retrieval bundle. The provider runs
// once; later calls share its result.
func (k *AgentDevelopmentKit) Retrieval(ctx context.Context) (RetrievalBundle, error) {
	if err := k.Bootstrap(ctx); err != nil {
		return RetrievalBundle{}, err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.retrieval != nil {
		return *k.retrieval, nil
	}
	if k.retrievalProvider == nil {
		return RetrievalBundle{}, fmt.Errorf("kit requires a retrieval provider")
	}
	bundle, err := k.retrievalProvider(ctx)
	if err != nil {
		return RetrievalBundle{}, fmt.Errorf("retrieval provider: %w", err)
	}
	if bundle.Retriever == nil {
		return RetrievalBundle{}, fmt.Errorf("retrieval provider: retriever is nil")
	}
	k.retrieval = &bundle
	return bundle, nil
}

// History returns the run history store, or nil when no history module is
// registered.
func (k *AgentDevelopmentKit) History(ctx context.Context) (*history.Store, error) {
	if err := k.Bootstrap(ctx); err != nil {
		return nil, err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.history != nil || k.historyProvider == nil {
		return k.history, nil
	}
	store, err := k.historyProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("history provider: %w", err)
	}
	k.history = store
	return store, nil
}

// BuildSystem constructs the research workflow from the registered
// providers and optional overrides.
func (k *AgentDevelopmentKit) BuildSystem(ctx context.Context, opts ...SystemOption) (*research.System, error) {
	bundle, err := k.Retrieval(ctx)
	if err != nil {
		return nil, err
	}

	k.mu.RLock()
	modelProvider := k.modelProvider
	defaults := append([]SystemOption(nil), k.systemOptions...)
	k.mu.RUnlock()

	if modelProvider == nil {
		return nil, fmt.Errorf("kit requires a model provider")
	}

	sysOpts := research.Options{
		Retriever: bundle.Retriever,
		GeneratorFactory: func(role research.Role, temperature float64) (models.Generator, error) {
			return modelProvider(ctx, role, temperature)
		},
	}
	for _, opt := range defaults {
		opt(&sysOpts)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&sysOpts)
		}
	}
	return research.New(sysOpts)
}

// Close releases the retrieval store and the history database.
func (k *AgentDevelopmentKit) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var errs []error
	if k.retrieval != nil && k.retrieval.Close != nil {
		errs = append(errs, k.retrieval.Close(ctx))
	}
	if k.history != nil {
		errs = append(errs, k.history.Close())
	}
	k.retrieval, k.history = nil, nil
	return errors.Join(errs...)
}
