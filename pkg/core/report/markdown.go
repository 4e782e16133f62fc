package report

import (
	"fmt"
	"strings"
	"time"
)

// Markdown formats the run as a Markdown document.
func Markdown(r *Run) string {
	var sb strings.Builder

	verdict := "PASSED"
	if !r.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&sb, "## %s\n\n", r.Name)
	fmt.Fprintf(&sb, "Run `%s`: **%s**, %d scenarios in %s\n\n", r.ID, verdict, len(r.Scenarios), round(r.Duration))

	sb.WriteString("| Status | Scenarios |\n|---|---|\n")
	for _, status := range statusOrder {
		fmt.Fprintf(&sb, "| %s | %d |\n", status, r.Count(status))
	}

	if len(r.Scenarios) > 0 {
		sb.WriteString("\n### Scenarios\n\n")
		sb.WriteString("| Feature | Scenario | Status | Duration |\n|---|---|---|---|\n")
		for _, s := range r.Scenarios {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", cell(s.Feature), cell(s.Name), s.Status, round(s.Duration))
		}
	}

	if failures := r.Failures(); len(failures) > 0 {
		sb.WriteString("\n### Failures\n")
		for _, f := range failures {
			fmt.Fprintf(&sb, "\n#### %s / %s\n\n", f.Feature, f.Name)
			if f.FailedStep != "" {
				fmt.Fprintf(&sb, "Step: `%s` (%s)\n", strings.TrimSpace(f.FailedStep), f.Status)
			}
			if f.Error != "" {
				fmt.Fprintf(&sb, "\n```\n%s\n```\n", strings.TrimRight(f.Error, "\n"))
			}
		}
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
