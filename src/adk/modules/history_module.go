package modules

import (
	"context"
	"fmt"

	"github.com/Protocol-Lattice/research-agent/src/adk"
	"github.com/Protocol-Lattice/research-agent/src/history"
)

// HistoryModule registers a run history provider with the kit.
type HistoryModule struct {
	name     string
	provider adk.HistoryProvider
}

func NewHistoryModule(name string, provider adk.HistoryProvider) *HistoryModule {
	if name == "" {
		name = "history"
	}
	return &HistoryModule{name: name, provider: provider}
}

func (m *HistoryModule) Name() string { return m.name }

func (m *HistoryModule) Provision(_ context.Context, kitInstance *adk.AgentDevelopmentKit) error {
	if m.provider == nil {
		return fmt.Errorf("history provider is nil")
	}
	kitInstance.UseHistoryProvider(m.provider)
	return nil
}

// SQLiteHistory stores finished runs in the SQLite database at path.
func SQLiteHistory(path string) *HistoryModule {
	return NewHistoryModule("history:sqlite", func(context.Context) (*history.Store, error) {
		return history.Open(path)
	})
}
