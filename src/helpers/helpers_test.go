package helpers

import (
	"context"
	"reflect"
	"testing"

	"github.com/Protocol-Lattice/research-agent/src/agents"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

func TestParseRoleFloats(t *testing.T) {
	got := ParseRoleFloats(" Reviewer=0.1, synthesizer = 0.6 ,bogus=1,formatter=x,questioner")
	want := map[agents.Role]float64{agents.RoleReviewer: 0.1, agents.RoleSynthesizer: 0.6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if ParseRoleFloats("") != nil || ParseRoleFloats("bogus=1") != nil {
		t.Fatalf("expected nil for empty or unusable input")
	}
}

func TestParseRoleInts(t *testing.T) {
	got := ParseRoleInts("researcher=12,questioner=3,reviewer=1.5")
	want := map[agents.Role]int{agents.RoleResearcher: 12, agents.RoleQuestioner: 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseCSVList(t *testing.T) {
	got := ParseCSVList(" .txt, ,md,")
	if !reflect.DeepEqual(got, []string{".txt", "md"}) {
		t.Fatalf("unexpected list %v", got)
	}
	if ParseCSVList("   ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestAgentNames(t *testing.T) {
	if AgentNames(nil) != "<none>" {
		t.Fatalf("expected placeholder for empty list")
	}
	r, err := agents.NewResearcher(agents.Config{Retriever: nopRetriever{}, Generator: nopGenerator{}})
	if err != nil {
		t.Fatal(err)
	}
	f, err := agents.NewFormatter(agents.Config{Retriever: nopRetriever{}, Generator: nopGenerator{}})
	if err != nil {
		t.Fatal(err)
	}
	if got := AgentNames([]agents.Agent{r, f}); got != "RESEARCHER -> FORMATTER" {
		t.Fatalf("unexpected names %q", got)
	}
}

type nopRetriever struct{}

func (nopRetriever) Retrieve(context.Context, string, int) (retrieval.Answer, error) {
	return retrieval.Answer{}, nil
}

type nopGenerator struct{}

func (nopGenerator) Generate(context.Context, string, string) (string, error) { return "ok", nil }
