package research

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/agents"
)

// DefaultReportPath is where the CLI writes reports unless told otherwise.
const DefaultReportPath = "research_report.txt"

var rule = strings.Repeat("=", 70)

// Summarize renders a short status overview of a finished run.
func Summarize(rec *Record) string {
	if rec == nil {
		return "Workflow failed: no record"
	}
	if rec.Status != StatusSuccess {
		msg := rec.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return "Workflow failed: " + msg
	}

	status := func(role Role) string {
		if res, ok := rec.Result(role); ok && res.Status != "" {
			return string(res.Status)
		}
		return "N/A"
	}
	researcher, _ := rec.Result(agents.RoleResearcher)
	synthesizer, _ := rec.Result(agents.RoleSynthesizer)
	questioner, _ := rec.Result(agents.RoleQuestioner)

	var b strings.Builder
	b.WriteString("WORKFLOW SUMMARY\n================\n")
	fmt.Fprintf(&b, "Query: %s\n", rec.Query)
	fmt.Fprintf(&b, "Status: %s\n\n", rec.Status)
	b.WriteString("Agent Results:\n")
	fmt.Fprintf(&b, "- RESEARCHER: %s (%d sources)\n", status(agents.RoleResearcher), researcher.NumSources)
	fmt.Fprintf(&b, "- REVIEWER: %s\n", status(agents.RoleReviewer))
	fmt.Fprintf(&b, "- SYNTHESIZER: %s (%d hypotheses)\n", status(agents.RoleSynthesizer), len(synthesizer.Hypotheses))
	fmt.Fprintf(&b, "- QUESTIONER: %s (%d questions)\n", status(agents.RoleQuestioner), len(questioner.Questions))
	fmt.Fprintf(&b, "- FORMATTER: %s\n", status(agents.RoleFormatter))
	return b.String()
}

// RenderReport formats the report file body for a successful run.
func RenderReport(rec *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRESEARCH REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Research Query: %s\n\n%s\n\n", rec.Query, rule)
	b.WriteString(rec.Report)
	fmt.Fprintf(&b, "\n\n%s\nSOURCES\n%s\n\n", rule, rule)
	for i, src := range rec.Sources {
		name := src.Source
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		if src.Page != "" {
			fmt.Fprintf(&b, "   Page: %s\n", src.Page)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SaveReport writes the report of a successful run to path. Failed runs and
// empty reports are skipped with a warning and no file is written.
func SaveReport(rec *Record, path string) error {
	if rec == nil || rec.Status != StatusSuccess {
		slog.Warn("cannot save report: workflow did not complete successfully")
		return nil
	}
	if strings.TrimSpace(rec.Report) == "" {
		slog.Warn("no report to save", "run", rec.ID)
		return nil
	}
	if path == "" {
		path = DefaultReportPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(RenderReport(rec)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("report saved", "path", path, "run", rec.ID)
	return nil
}
