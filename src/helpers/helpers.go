package helpers

import (
	"strconv"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/agents"
)

// ParseRoleFloats parses "reviewer=0.1,synthesizer=0.6" into per-role values.
// Unknown roles and malformed pairs are skipped.
func ParseRoleFloats(raw string) map[agents.Role]float64 {
	out := make(map[agents.Role]float64)
	for key, value := range rolePairs(raw) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		out[key] = f
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseRoleInts parses "researcher=12,questioner=3" into per-role values.
func ParseRoleInts(raw string) map[agents.Role]int {
	out := make(map[agents.Role]int)
	for key, value := range rolePairs(raw) {
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		out[key] = n
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rolePairs(raw string) map[agents.Role]string {
	pairs := make(map[agents.Role]string)
	for _, pair := range ParseCSVList(raw) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		role := agents.Role(strings.ToLower(strings.TrimSpace(key)))
		if !isRole(role) {
			continue
		}
		pairs[role] = strings.TrimSpace(value)
	}
	return pairs
}

func isRole(role agents.Role) bool {
	for _, r := range agents.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AgentNames lists agent names in execution order.
func AgentNames(list []agents.Agent) string {
	if len(list) == 0 {
		return "<none>"
	}
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Name()
	}
	return strings.Join(names, " -> ")
}

func ParseCSVList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
