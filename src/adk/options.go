package adk

import (
	"log/slog"

	research "github.com/Protocol-Lattice/research-agent"
)

// Option configures the AgentDevelopmentKit during construction.
type Option func(*AgentDevelopmentKit) error

// WithModule registers a single module with the kit.
func WithModule(module Module) Option {
	return func(kit *AgentDevelopmentKit) error {
		return kit.RegisterModule(module)
	}
}

// WithModules registers multiple modules using a single option invocation.
func WithModules(modules ...Module) Option {
	return func(kit *AgentDevelopmentKit) error {
		for _, module := range modules {
			if err := kit.RegisterModule(module); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithSystemOptions registers defaults applied to every System the kit builds.
func WithSystemOptions(opts ...SystemOption) Option {
	return func(kit *AgentDevelopmentKit) error {
		for _, opt := range opts {
			kit.UseSystemOption(opt)
		}
		return nil
	}
}

// WithLogger sets the logger handed to the workflow and its agents.
func WithLogger(logger *slog.Logger) Option {
	return WithSystemOptions(func(o *research.Options) { o.Logger = logger })
}

// WithTemperatures overrides per-role sampling temperatures.
func WithTemperatures(temps map[research.Role]float64) Option {
	return WithSystemOptions(func(o *research.Options) {
		if o.Temperatures == nil {
			o.Temperatures = make(map[research.Role]float64, len(temps))
		}
		for role, t := range temps {
			o.Temperatures[role] = t
		}
	})
}

// WithRetrievalDepth overrides per-role retrieval k.
func WithRetrievalDepth(k map[research.Role]int) Option {
	return WithSystemOptions(func(o *research.Options) {
		if o.K == nil {
			o.K = make(map[research.Role]int, len(k))
		}
		for role, v := range k {
			o.K[role] = v
		}
	})
}

// WithObserver registers a stage progress callback.
func WithObserver(obs research.Observer) Option {
	return WithSystemOptions(func(o *research.Options) { o.Observer = obs })
}
